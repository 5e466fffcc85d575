package dispatch

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/LugersVoucherService/balltd/internal/catalog"
)

const (
	DefaultSearchDebounce = 150 * time.Millisecond
	DefaultQueueSize      = 64
)

// Config tunes a Dispatcher. Zero values fall back to the defaults; a
// negative SearchDebounce applies search terms immediately.
type Config struct {
	SearchDebounce time.Duration
	QueueSize      int
}

// Dispatcher serialises intents for one session.
type Dispatcher struct {
	cfg     Config
	intents chan Intent
	done    chan struct{}
	sink    func(Snapshot)
	onError func(Intent, error)

	// state and seq belong to the Run goroutine.
	state State
	seq   uint64

	last atomic.Pointer[Snapshot]
}

// New returns a dispatcher over an empty trade. sink receives a snapshot
// after every applied intent, on the Run goroutine.
func New(cat *catalog.Catalog, cfg Config, sink func(Snapshot)) *Dispatcher {
	if cfg.SearchDebounce == 0 {
		cfg.SearchDebounce = DefaultSearchDebounce
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	d := &Dispatcher{
		cfg:     cfg,
		intents: make(chan Intent, cfg.QueueSize),
		done:    make(chan struct{}),
		sink:    sink,
		state:   NewState(cat),
	}
	snap := Summarize(d.state)
	d.last.Store(&snap)
	return d
}

// OnError registers a hook for rejected intents. Call it before Run.
func (d *Dispatcher) OnError(fn func(Intent, error)) {
	d.onError = fn
}

// Dispatch queues an intent. Selections without an instance id get a fresh
// one here so that Reduce stays deterministic.
func (d *Dispatcher) Dispatch(ctx context.Context, in Intent) error {
	if sel, ok := in.(SelectItem); ok && sel.InstanceID == "" {
		sel.InstanceID = uuid.NewString()
		in = sel
	}
	select {
	case <-d.done:
		return ErrDispatcherStopped
	default:
	}
	select {
	case d.intents <- in:
		return nil
	case <-d.done:
		return ErrDispatcherStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Last returns the most recently published snapshot.
func (d *Dispatcher) Last() Snapshot {
	return *d.last.Load()
}

// Done is closed once Run has returned.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

// Run applies intents until ctx is cancelled. Search terms are held until
// no newer term has arrived for the debounce window; everything else is
// applied as it arrives.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending *SetSearchTerm
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Uint64("sequence", d.seq).Msg("Dispatcher stopped")
			return

		case in := <-d.intents:
			term, isSearch := in.(SetSearchTerm)
			if !isSearch || d.cfg.SearchDebounce < 0 {
				d.apply(in)
				continue
			}
			pending = &term
			if timer == nil {
				timer = time.NewTimer(d.cfg.SearchDebounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(d.cfg.SearchDebounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			if pending != nil {
				d.apply(*pending)
				pending = nil
			}
		}
	}
}

// apply reduces one intent. A panic while reducing or summarizing is
// reported like a rejected intent and the state is left unchanged.
func (d *Dispatcher) apply(in Intent) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("intent", intentName(in)).Msg("Recovered from panic applying intent")
			d.reject(in, fmt.Errorf("%w: %v", ErrIntentFailed, r))
		}
	}()

	next, err := Reduce(d.state, in)
	if err != nil {
		log.Warn().Err(err).Str("intent", intentName(in)).Msg("Intent rejected")
		d.reject(in, err)
		return
	}
	snap := Summarize(next)
	snap.Sequence = d.seq + 1
	d.state = next
	d.seq++
	d.last.Store(&snap)
	if d.sink != nil {
		d.sink(snap)
	}
}

func (d *Dispatcher) reject(in Intent, err error) {
	if d.onError != nil {
		d.onError(in, err)
	}
}

func intentName(in Intent) string {
	switch in.(type) {
	case SelectItem:
		return "select_item"
	case RemoveItem:
		return "remove_item"
	case SetCurrency:
		return "set_currency"
	case SetSearchTerm:
		return "set_search"
	case RequestSnapshot:
		return "sync"
	default:
		return "unknown"
	}
}
