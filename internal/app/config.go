package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/LugersVoucherService/balltd/internal/catalog"
	"github.com/LugersVoucherService/balltd/internal/config"
)

// SetupEnvironment loads .env file and configures zerolog output and log level.
func SetupEnvironment() {
	// Load .env file if it exists
	err := godotenv.Load()

	// Configure logging
	if os.Getenv("ENV") == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	zerolog.SetGlobalLevel(ParseLevel(os.Getenv("LOGLEVEL"), os.Getenv("ENV") == "production"))

	// wait until now to report on the .env file so we have the chance to set up logging first
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found or error loading .env file; proceeding with existing environment variables.")
	}
}

// ParseLevel maps a LOGLEVEL value to a zerolog level. An empty value means
// warn in production and info elsewhere.
func ParseLevel(value string, production bool) zerolog.Level {
	levelStr := strings.ToLower(strings.TrimSpace(value))
	switch levelStr {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled":
		return zerolog.Disabled
	case "":
		if production {
			return zerolog.WarnLevel
		}
		return zerolog.InfoLevel
	default:
		log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
		return zerolog.InfoLevel
	}
}

// GetEnvWithDefault fetches an environment variable with a default fallback.
func GetEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// NewSource picks the catalog source for the configuration: HTTP for a
// URL, the local directory otherwise.
func NewSource(cfg config.CatalogConfig) catalog.Source {
	if cfg.Remote() {
		log.Debug().
			Str("base_url", cfg.Source).
			Str("data_path", cfg.DataPath).
			Dur("timeout", cfg.FetchTimeout).
			Msg("Using HTTP catalog source")
		return catalog.NewHTTPSource(cfg.Source, cfg.DataPath, cfg.FetchTimeout)
	}
	log.Debug().Str("dir", cfg.Dir()).Msg("Using directory catalog source")
	return catalog.NewDirSource(cfg.Dir())
}
