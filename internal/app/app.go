// Package app wires configuration, the catalog loader and the published
// catalog together.
package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/LugersVoucherService/balltd/internal/catalog"
	"github.com/LugersVoucherService/balltd/internal/config"
)

// App holds the process-wide state: the loader and the catalog currently
// published to new sessions.
type App struct {
	cfg     *config.Config
	source  catalog.Source
	loader  *catalog.Loader
	current atomic.Pointer[catalog.Catalog]
}

func New(cfg *config.Config) (*App, error) {
	return NewWithSource(cfg, NewSource(cfg.Catalog))
}

// NewWithSource is New with an explicit catalog source.
func NewWithSource(cfg *config.Config, source catalog.Source) (*App, error) {
	categories, err := cfg.Catalog.ParsedCategories()
	if err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	loader, err := catalog.NewLoader(source, categories)
	if err != nil {
		return nil, fmt.Errorf("create loader: %w", err)
	}
	a := &App{cfg: cfg, source: source, loader: loader}
	a.current.Store(catalog.New(nil))
	return a, nil
}

// Current returns the published catalog. It is never nil.
func (a *App) Current() *catalog.Catalog {
	return a.current.Load()
}

// LoadCatalog builds a catalog and publishes it. A load that yields no
// items does not replace a non-empty catalog.
func (a *App) LoadCatalog(ctx context.Context) *catalog.Catalog {
	counter, counted := a.source.(*catalog.HTTPSource)
	if counted {
		counter.ResetFetchCount()
	}

	start := time.Now()
	cat := a.loader.Load(ctx)

	ev := log.Info().Int("items", cat.Len()).Dur("elapsed", time.Since(start))
	if counted {
		ev = ev.Int64("fetches", counter.FetchCount())
	}

	if prev := a.current.Load(); cat.Len() == 0 && prev.Len() > 0 {
		ev.Int("kept_items", prev.Len()).Msg("Catalog load returned nothing; keeping previous catalog")
		return prev
	}
	a.current.Store(cat)
	ev.Msg("Catalog published")
	return cat
}

// RunRefresh reloads the catalog on the configured interval until ctx is
// cancelled. A zero interval disables refreshing.
func (a *App) RunRefresh(ctx context.Context) {
	interval := a.cfg.Catalog.RefreshInterval
	if interval <= 0 {
		log.Debug().Msg("Catalog refresh disabled")
		return
	}

	log.Info().Dur("interval", interval).Msg("Starting catalog refresh")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.LoadCatalog(ctx)
		}
	}
}
