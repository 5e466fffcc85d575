package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultSource         = "."
	DefaultDataPath       = "data"
	DefaultFetchTimeout   = 10 * time.Second
	DefaultAddr           = ":8080"
	DefaultSessionTTL     = 30 * time.Minute
	DefaultSearchDebounce = 150 * time.Millisecond
	DefaultIntentRate     = 20.0
	DefaultIntentBurst    = 40
	DefaultReadTimeout    = 15 * time.Second
	DefaultWriteTimeout   = 15 * time.Second
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	// Catalog defaults
	if c.Catalog.Source == "" {
		c.Catalog.Source = DefaultSource
	}
	if c.Catalog.DataPath == "" {
		c.Catalog.DataPath = DefaultDataPath
	}
	if c.Catalog.FetchTimeout == 0 {
		c.Catalog.FetchTimeout = DefaultFetchTimeout
	}

	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.SessionTTL == 0 {
		c.Server.SessionTTL = DefaultSessionTTL
	}
	if c.Server.SearchDebounce == 0 {
		c.Server.SearchDebounce = DefaultSearchDebounce
	}
	if c.Server.IntentRate == 0 {
		c.Server.IntentRate = DefaultIntentRate
	}
	if c.Server.IntentBurst == 0 {
		c.Server.IntentBurst = DefaultIntentBurst
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
}
