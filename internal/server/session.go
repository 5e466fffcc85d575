package server

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/LugersVoucherService/balltd/internal/catalog"
	"github.com/LugersVoucherService/balltd/internal/dispatch"
)

// session is one trade being edited. It outlives its websocket connections
// until it has been idle for the session TTL.
type session struct {
	id     string
	cat    *catalog.Catalog
	disp   *dispatch.Dispatcher
	cancel context.CancelFunc
	closed atomic.Bool

	mu   sync.Mutex
	out  chan []byte
	kick context.CancelFunc
}

func newSession(parent context.Context, id string, cat *catalog.Catalog, debounce time.Duration) *session {
	ctx, cancel := context.WithCancel(parent)
	s := &session{id: id, cat: cat, cancel: cancel}
	s.disp = dispatch.New(cat, dispatch.Config{SearchDebounce: debounce}, s.publish)
	s.disp.OnError(func(_ dispatch.Intent, err error) {
		s.send(errorFrame(err))
	})
	go s.disp.Run(ctx)
	return s
}

func (s *session) publish(snap dispatch.Snapshot) {
	s.send(outbound{Type: TypeSnapshot, Snapshot: &snap})
}

// send forwards a frame to the attached connection, if any. A full queue
// drops the frame; the next snapshot supersedes it.
func (s *session) send(frame outbound) {
	b, err := json.Marshal(frame)
	if err != nil {
		log.Error().Err(err).Str("session", s.id).Msg("Failed to encode frame")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out == nil {
		return
	}
	select {
	case s.out <- b:
	default:
		log.Warn().Str("session", s.id).Str("type", frame.Type).Msg("Outbound queue full, dropping frame")
	}
}

// attach makes out the session's connection. A previously attached
// connection is closed.
func (s *session) attach(out chan []byte, kick context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kick != nil {
		s.kick()
	}
	s.out = out
	s.kick = kick
}

func (s *session) detach(out chan []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out == out {
		s.out = nil
		s.kick = nil
	}
}

func (s *session) close() {
	if s.closed.Swap(true) {
		return
	}
	s.cancel()
	s.mu.Lock()
	if s.kick != nil {
		s.kick()
	}
	s.mu.Unlock()
}

// sessionStore keeps sessions until they have been idle for the TTL.
// Evicted sessions have their dispatcher stopped.
type sessionStore struct {
	ctx      context.Context
	debounce time.Duration
	catalogs CatalogProvider

	mu    sync.Mutex
	cache *cache.Cache
}

func newSessionStore(ctx context.Context, ttl, debounce time.Duration, catalogs CatalogProvider) *sessionStore {
	cleanup := ttl / 2
	if cleanup < 10*time.Millisecond {
		cleanup = 10 * time.Millisecond
	}
	st := &sessionStore{
		ctx:      ctx,
		debounce: debounce,
		catalogs: catalogs,
		cache:    cache.New(ttl, cleanup),
	}
	st.cache.OnEvicted(func(id string, v interface{}) {
		if sess, ok := v.(*session); ok {
			sess.close()
			log.Info().Str("session", id).Msg("Session expired")
		}
	})
	return st
}

// normalizeSessionID returns id when it is a valid UUID, otherwise a new one.
func normalizeSessionID(id string) string {
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed.String()
	}
	return uuid.NewString()
}

// get returns the live session for id, creating one over the current
// catalog when none exists.
func (st *sessionStore) get(id string) *session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if v, ok := st.cache.Get(id); ok {
		if sess := v.(*session); !sess.closed.Load() {
			st.cache.SetDefault(id, sess)
			return sess
		}
	}
	// Drops an expired entry the janitor has not reached yet.
	st.cache.Delete(id)

	cat := st.catalogs.Current()
	sess := newSession(st.ctx, id, cat, st.debounce)
	st.cache.SetDefault(id, sess)
	log.Info().Str("session", id).Int("catalog_items", cat.Len()).Msg("Session created")
	return sess
}

// touch restarts the idle clock of a live session.
func (st *sessionStore) touch(sess *session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if sess.closed.Load() {
		return
	}
	st.cache.SetDefault(sess.id, sess)
}

func (st *sessionStore) count() int {
	return st.cache.ItemCount()
}

// closeAll stops every session.
func (st *sessionStore) closeAll() {
	st.mu.Lock()
	defer st.mu.Unlock()
	for id := range st.cache.Items() {
		st.cache.Delete(id)
	}
}
