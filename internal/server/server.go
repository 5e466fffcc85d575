// Package server exposes the calculator over HTTP. Stateless JSON routes
// live under /api; /ws carries a long-lived trade session.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog/log"

	"github.com/LugersVoucherService/balltd/internal/catalog"
	"github.com/LugersVoucherService/balltd/internal/config"
)

const shutdownTimeout = 10 * time.Second

// CatalogProvider returns the catalog new requests and sessions should use.
type CatalogProvider interface {
	Current() *catalog.Catalog
}

type Server struct {
	cfg      config.ServerConfig
	catalogs CatalogProvider
	sessions *sessionStore
	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a server. Zero limits in cfg take the config defaults.
func New(cfg config.ServerConfig, catalogs CatalogProvider) *Server {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = config.DefaultSessionTTL
	}
	if cfg.IntentRate <= 0 {
		cfg.IntentRate = config.DefaultIntentRate
	}
	if cfg.IntentBurst <= 0 {
		cfg.IntentBurst = config.DefaultIntentBurst
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = config.DefaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = config.DefaultWriteTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:      cfg,
		catalogs: catalogs,
		sessions: newSessionStore(ctx, cfg.SessionTTL, cfg.SearchDebounce, catalogs),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(gzipMiddleware)
		r.Get("/catalog", s.handleCatalog)
		r.Get("/catalog/{id}", s.handleItem)
		r.Get("/rates", s.handleRates)
		r.Post("/quote", s.handleQuote)
	})

	return r
}

func gzipMiddleware(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}

// ListenAndServe serves until ctx is cancelled, then shuts down and stops
// every session.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.Addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// Close stops every session and closes their connections.
func (s *Server) Close() {
	s.sessions.closeAll()
	s.cancel()
}
