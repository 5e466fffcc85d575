package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/LugersVoucherService/balltd/internal/dispatch"
)

const (
	maxMessageSize = 8 * 1024
	outboundQueue  = 32
)

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := normalizeSessionID(r.URL.Query().Get("session"))

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	sess := s.sessions.get(id)
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	out := make(chan []byte, outboundQueue)
	last := sess.disp.Last()
	enqueue(out, outbound{Type: TypeHello, Session: sess.id, CatalogSize: sess.cat.Len()})
	enqueue(out, outbound{Type: TypeSnapshot, Snapshot: &last})

	sess.attach(out, cancel)
	defer sess.detach(out)
	defer s.sessions.touch(sess)

	log.Info().Str("session", sess.id).Str("remote", r.RemoteAddr).Msg("Websocket connected")

	go s.writeLoop(ctx, conn, sess, out)
	s.readLoop(ctx, cancel, conn, sess, out)

	log.Info().Str("session", sess.id).Msg("Websocket disconnected")
}

func enqueue(out chan []byte, frame outbound) {
	b, err := json.Marshal(frame)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode frame")
		return
	}
	select {
	case out <- b:
	default:
		log.Warn().Str("type", frame.Type).Msg("Outbound queue full, dropping frame")
	}
}

func (s *Server) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, sess *session, out chan []byte) {
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(s.cfg.IntentRate), s.cfg.IntentBurst)
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("session", sess.id).Msg("Websocket read failed")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		s.sessions.touch(sess)

		if !limiter.Allow() {
			log.Warn().Str("session", sess.id).Msg("Intent rate exceeded, dropping message")
			enqueue(out, errorFrame(errRateLimited))
			continue
		}

		var m inbound
		if err := json.Unmarshal(msg, &m); err != nil {
			enqueue(out, errorFrame(fmt.Errorf("%w: %v", errMalformed, err)))
			continue
		}
		in, err := m.intent()
		if err != nil {
			log.Debug().Err(err).Str("session", sess.id).Str("type", m.Type).Msg("Rejected message")
			enqueue(out, errorFrame(err))
			continue
		}

		if err := sess.disp.Dispatch(ctx, in); err != nil {
			if errors.Is(err, dispatch.ErrDispatcherStopped) {
				log.Info().Str("session", sess.id).Msg("Session closed while connected")
			}
			return
		}
	}
}

func (s *Server) writeLoop(ctx context.Context, conn *websocket.Conn, sess *session, out chan []byte) {
	pingPeriod := s.cfg.ReadTimeout * 9 / 10
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
				time.Now().Add(time.Second))
			return
		case <-sess.disp.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "session expired"),
				time.Now().Add(time.Second))
			return
		case b := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				log.Debug().Err(err).Str("session", sess.id).Msg("Websocket write failed")
				return
			}
		case <-ticker.C:
			s.sessions.touch(sess)
			_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
