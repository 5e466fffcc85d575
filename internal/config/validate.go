package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Catalog.Source == "" {
		return errors.New("catalog.source is required")
	}
	if _, err := c.Catalog.ParsedCategories(); err != nil {
		return fmt.Errorf("catalog.categories: %w", err)
	}
	if c.Catalog.FetchTimeout <= 0 {
		return errors.New("catalog.fetch_timeout must be > 0")
	}
	if c.Catalog.RefreshInterval < 0 {
		return errors.New("catalog.refresh_interval must be >= 0")
	}

	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.SessionTTL <= 0 {
		return errors.New("server.session_ttl must be > 0")
	}
	if c.Server.IntentRate <= 0 {
		return fmt.Errorf("server.intent_rate must be > 0, got %v", c.Server.IntentRate)
	}
	if c.Server.IntentBurst < 1 {
		return errors.New("server.intent_burst must be >= 1")
	}
	if c.Server.ReadTimeout <= 0 {
		return errors.New("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return errors.New("server.write_timeout must be > 0")
	}
	return nil
}
