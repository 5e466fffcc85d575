package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/LugersVoucherService/balltd/internal/app"
	"github.com/LugersVoucherService/balltd/internal/config"
	"github.com/LugersVoucherService/balltd/internal/server"
	"github.com/LugersVoucherService/balltd/internal/version"
)

func main() {
	app.SetupEnvironment()

	configPath := flag.String("config", app.GetEnvWithDefault("BALLTD_CONFIG", "config.yaml"), "path to config file")
	addr := flag.String("addr", "", "listen address (overrides server.addr)")
	flag.Parse()

	log.Info().
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("config", *configPath).
		Msg("Starting Ball TD trade calculator")

	cfg, err := loadConfig(*configPath, *addr)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("Shutdown complete")
}

func run(ctx context.Context, cfg *config.Config) error {
	a, err := app.New(cfg)
	if err != nil {
		return err
	}

	// The first catalog is published before the listener opens.
	a.LoadCatalog(ctx)
	go a.RunRefresh(ctx)

	return server.New(cfg.Server, a).ListenAndServe(ctx)
}
