package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "USD", cfg.Account.Currency)
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, "sim", cfg.Pricing.Source)
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing currency", func(c *Config) { c.Account.Currency = "" }},
		{"zero seed balance", func(c *Config) { c.Account.SeedBalance = 0 }},
		{"unknown store type", func(c *Config) { c.Store.Type = "redis" }},
		{"file store without path", func(c *Config) { c.Store.Type = "file" }},
		{"dynamo store without table", func(c *Config) { c.Store.Type = "dynamo"; c.Store.Region = "us-east-1" }},
		{"unknown journal type", func(c *Config) { c.Journal.Type = "postgres" }},
		{"sqlite journal without path", func(c *Config) { c.Journal.Type = "sqlite" }},
		{"unknown pricing source", func(c *Config) { c.Pricing.Source = "yahoo" }},
		{"bad timeout", func(c *Config) { c.Pricing.Timeout = "fast" }},
		{"refresh enabled without spec", func(c *Config) { c.Refresh.Spec = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseTimeout(t *testing.T) {
	t.Parallel()

	p := Pricing{Timeout: "250ms"}
	d, err := p.ParseTimeout()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	p.Timeout = ""
	d, err = p.ParseTimeout()
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestLoadFromYAMLFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
account:
  id: acct-42
  currency: EUR
  seed_balance: 5000
store:
  type: file
  path: ./state.json
journal:
  type: sqlite
  db_path: ./journal.sqlite
pricing:
  source: sim
  volatility: 0.01
  base_prices:
    AAPL: 200
refresh:
  enabled: false
server:
  addr: ":9090"
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "acct-42", cfg.Account.ID)
	assert.Equal(t, "EUR", cfg.Account.Currency)
	assert.Equal(t, float64(5000), cfg.Account.SeedBalance)
	assert.Equal(t, "file", cfg.Store.Type)
	assert.Equal(t, "sqlite", cfg.Journal.Type)
	assert.Equal(t, float64(200), cfg.Pricing.BasePrices["AAPL"])
	assert.False(t, cfg.Refresh.Enabled)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoadAppliesDefaultsForOmittedSections(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  currency: USD\n  seed_balance: 1000\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, "sim", cfg.Pricing.Source)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  type: redis\n"), 0o644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Account.ID = "acct-7"
	cfg.Server.Addr = ":7000"

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "acct-7", loaded.Account.ID)
	assert.Equal(t, ":7000", loaded.Server.Addr)
}
