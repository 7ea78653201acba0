package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent exemplar configuration stored as
// config.toml in the .exemplar/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version   int             `toml:"version"`
	Store     StoreConfig     `toml:"store"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Index     IndexConfig     `toml:"index"`
	Ledger    LedgerConfig    `toml:"ledger"`
	Cleanup   CleanupConfig   `toml:"cleanup"`
}

// StoreConfig holds record store settings.
type StoreConfig struct {
	// Dir overrides the store data directory. Empty means the resolved
	// .exemplar/ directory.
	Dir string `toml:"dir,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	APIKey     string `toml:"api_key,omitempty"`
	Dimensions int    `toml:"dimensions,omitempty"`
}

// IndexConfig holds similarity index settings.
type IndexConfig struct {
	Provider string `toml:"provider,omitempty"`

	// Path is the index artifact location. Empty means a provider-specific
	// file inside the store directory.
	Path string `toml:"path,omitempty"`
}

// LedgerConfig holds feedback ledger watcher settings.
type LedgerConfig struct {
	Path        string `toml:"path,omitempty"`
	PollSeconds int    `toml:"poll_seconds,omitempty"`
}

// CleanupConfig holds age-based cleanup settings.
type CleanupConfig struct {
	MaxAgeDays int `toml:"max_age_days,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"store.dir": {
		get: func(c *Config) string { return c.Store.Dir },
		set: func(c *Config, v string) error { c.Store.Dir = v; return nil },
	},
	"embedding.provider": {
		get: func(c *Config) string { return c.Embedding.Provider },
		set: func(c *Config, v string) error { c.Embedding.Provider = v; return nil },
	},
	"embedding.target": {
		get: func(c *Config) string { return c.Embedding.Target },
		set: func(c *Config, v string) error { c.Embedding.Target = v; return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"embedding.api_key": {
		get: func(c *Config) string { return c.Embedding.APIKey },
		set: func(c *Config, v string) error { c.Embedding.APIKey = v; return nil },
	},
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.Itoa(c.Embedding.Dimensions)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = n
			return nil
		},
	},
	"index.provider": {
		get: func(c *Config) string { return c.Index.Provider },
		set: func(c *Config, v string) error { c.Index.Provider = v; return nil },
	},
	"index.path": {
		get: func(c *Config) string { return c.Index.Path },
		set: func(c *Config, v string) error { c.Index.Path = v; return nil },
	},
	"ledger.path": {
		get: func(c *Config) string { return c.Ledger.Path },
		set: func(c *Config, v string) error { c.Ledger.Path = v; return nil },
	},
	"ledger.poll_seconds": {
		get: func(c *Config) string {
			if c.Ledger.PollSeconds == 0 {
				return ""
			}
			return strconv.Itoa(c.Ledger.PollSeconds)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for ledger.poll_seconds: %w", err)
			}
			c.Ledger.PollSeconds = n
			return nil
		},
	},
	"cleanup.max_age_days": {
		get: func(c *Config) string {
			if c.Cleanup.MaxAgeDays == 0 {
				return ""
			}
			return strconv.Itoa(c.Cleanup.MaxAgeDays)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for cleanup.max_age_days: %w", err)
			}
			c.Cleanup.MaxAgeDays = n
			return nil
		},
	},
}
