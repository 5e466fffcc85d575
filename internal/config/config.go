// Package config loads the calculator's YAML configuration.
package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/LugersVoucherService/balltd/internal/catalog"
)

// Config is the root configuration.
type Config struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Server  ServerConfig  `yaml:"server"`
}

// CatalogConfig controls where category files come from.
type CatalogConfig struct {
	// Source is a base URL (http or https) or a local directory.
	Source          string        `yaml:"source"`
	DataPath        string        `yaml:"data_path"`
	Categories      []string      `yaml:"categories"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	RefreshInterval time.Duration `yaml:"refresh_interval"` // 0 disables refresh
}

// ServerConfig holds the HTTP and websocket settings.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	SearchDebounce time.Duration `yaml:"search_debounce"` // negative applies search terms immediately
	IntentRate     float64       `yaml:"intent_rate"` // intents per second per connection
	IntentBurst    int           `yaml:"intent_burst"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

// Remote reports whether the source is fetched over HTTP.
func (c CatalogConfig) Remote() bool {
	return strings.HasPrefix(c.Source, "http://") || strings.HasPrefix(c.Source, "https://")
}

// Dir is the directory a local source reads from.
func (c CatalogConfig) Dir() string {
	return filepath.Join(c.Source, c.DataPath)
}

// ParsedCategories converts the configured names. An empty list means every
// category.
func (c CatalogConfig) ParsedCategories() ([]catalog.Category, error) {
	if len(c.Categories) == 0 {
		return append([]catalog.Category(nil), catalog.AllCategories...), nil
	}
	out := make([]catalog.Category, 0, len(c.Categories))
	for _, name := range c.Categories {
		cat, err := catalog.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		out = append(out, cat)
	}
	return out, nil
}
