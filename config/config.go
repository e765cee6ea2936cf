// Package config loads the papertrader configuration from a YAML or JSON
// file, with validation and sensible defaults for a demo session.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Account Account `json:"account" yaml:"account"`
	Store   Store   `json:"store" yaml:"store"`
	Journal Journal `json:"journal" yaml:"journal"`
	Pricing Pricing `json:"pricing" yaml:"pricing"`
	Refresh Refresh `json:"refresh" yaml:"refresh"`
	Server  Server  `json:"server" yaml:"server"`
}

// Account holds the session identity and seed balance.
type Account struct {
	ID          string  `json:"id" yaml:"id"`
	Currency    string  `json:"currency" yaml:"currency"`
	SeedBalance float64 `json:"seed_balance" yaml:"seed_balance"`
}

// Store selects the key-value persistence backend.
type Store struct {
	Type   string `json:"type" yaml:"type"` // "memory", "file" or "dynamo"
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	Region string `json:"region,omitempty" yaml:"region,omitempty"`
	Table  string `json:"table,omitempty" yaml:"table,omitempty"`
}

// Journal selects the trade history backend.
type Journal struct {
	Type   string `json:"type" yaml:"type"` // "memory" or "sqlite"
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Pricing selects the price source and its parameters.
type Pricing struct {
	Source     string             `json:"source" yaml:"source"` // "sim" or "alpaca"
	Timeout    string             `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Volatility float64            `json:"volatility,omitempty" yaml:"volatility,omitempty"`
	Seed       int64              `json:"seed,omitempty" yaml:"seed,omitempty"`
	BasePrices map[string]float64 `json:"base_prices,omitempty" yaml:"base_prices,omitempty"`
}

// ParseTimeout converts the timeout string to a duration; zero when unset.
func (p Pricing) ParseTimeout() (time.Duration, error) {
	if p.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(p.Timeout)
}

// Refresh configures the periodic price refresh loop.
type Refresh struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Spec    string `json:"spec,omitempty" yaml:"spec,omitempty"` // cron spec with seconds, e.g. "@every 5s"
}

type Server struct {
	Addr string `json:"addr" yaml:"addr"`
}

// LoadFromFile loads configuration from a file (YAML or JSON by content).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration (YAML for .yaml/.yml, else JSON).
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.SeedBalance <= 0 {
		return fmt.Errorf("account.seed_balance must be positive")
	}
	switch c.Store.Type {
	case "memory":
	case "file":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path required for file store")
		}
	case "dynamo":
		if c.Store.Region == "" || c.Store.Table == "" {
			return fmt.Errorf("store.region and store.table required for dynamo store")
		}
	default:
		return fmt.Errorf("store.type must be 'memory', 'file' or 'dynamo'")
	}
	switch c.Journal.Type {
	case "memory":
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for sqlite journal")
		}
	default:
		return fmt.Errorf("journal.type must be 'memory' or 'sqlite'")
	}
	switch c.Pricing.Source {
	case "sim", "alpaca":
	default:
		return fmt.Errorf("pricing.source must be 'sim' or 'alpaca'")
	}
	if _, err := c.Pricing.ParseTimeout(); err != nil {
		return fmt.Errorf("pricing.timeout: %w", err)
	}
	if c.Refresh.Enabled && c.Refresh.Spec == "" {
		return fmt.Errorf("refresh.spec required when refresh is enabled")
	}
	return nil
}

// Default returns a configuration for a self-contained demo session.
func Default() *Config {
	return &Config{
		Account: Account{
			Currency:    "USD",
			SeedBalance: 100000,
		},
		Store:   Store{Type: "memory"},
		Journal: Journal{Type: "memory"},
		Pricing: Pricing{
			Source:     "sim",
			Timeout:    "3s",
			Volatility: 0.002,
			BasePrices: map[string]float64{
				"AAPL": 190,
				"SPY":  520,
				"BTC":  64000,
			},
		},
		Refresh: Refresh{Enabled: true, Spec: "@every 5s"},
		Server:  Server{Addr: ":8080"},
	}
}
