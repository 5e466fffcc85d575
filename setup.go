package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/LugersVoucherService/balltd/internal/config"
)

// loadConfig reads the config file, falling back to defaults when it does
// not exist, and applies command-line overrides.
func loadConfig(path, addr string) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	log.Info().
		Str("source", cfg.Catalog.Source).
		Strs("categories", cfg.Catalog.Categories).
		Dur("refresh_interval", cfg.Catalog.RefreshInterval).
		Str("addr", cfg.Server.Addr).
		Msg("Configuration loaded")
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}
