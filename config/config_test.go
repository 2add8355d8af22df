package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/tradebook/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadFromFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tbk.yaml")
	content := `
journal:
  file: trades.jsonl
account:
  currency: EUR
  starting_balance: 10000
  start: "2025-01-01"
equity:
  window: 3M
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "trades.jsonl", cfg.Journal.File)
	assert.Equal(t, "EUR", cfg.Account.Currency)
	assert.Equal(t, 10000.0, cfg.Account.StartingBalance)
	assert.Equal(t, "3M", cfg.Equity.Window)
	// not in the file: default kept.
	assert.Equal(t, "$.{ticker}", cfg.Quote.Path)

	start, ok := cfg.StartDate()
	require.True(t, ok)
	assert.Equal(t, date.New(2025, 1, 1), start)
}

func TestLoadFromFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tbk.json")
	content := `{"journal": {"file": "j.jsonl"}, "account": {"currency": "USD", "starting_balance": 500}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "j.jsonl", cfg.Journal.File)
	assert.Equal(t, 500.0, cfg.Account.StartingBalance)
	assert.Equal(t, "ALL", cfg.Equity.Window)
}

func TestLoadFromFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("account:\n  currency: dollars\n  starting_balance: -1\n"), 0644))
	_, err = LoadFromFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account.currency")
	assert.Contains(t, err.Error(), "account.starting_balance")
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveToFileRoundTrip(t *testing.T) {
	for _, name := range []string{"tbk.yaml", "tbk.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := Default()
			cfg.Account.Currency = "GBP"
			cfg.Quote = QuoteConfig{File: "quotes.json", Path: "$.quotes.{ticker}.last"}
			require.NoError(t, cfg.SaveToFile(path))

			got, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, got)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"no journal", func(c *Config) { c.Journal.File = "" }, false},
		{"lowercase currency", func(c *Config) { c.Account.Currency = "usd" }, false},
		{"bad start", func(c *Config) { c.Account.Start = "yesterday" }, false},
		{"bad window", func(c *Config) { c.Equity.Window = "2W" }, false},
		{"ytd window", func(c *Config) { c.Equity.Window = "ytd" }, true},
		{"calendar quarter", func(c *Config) { c.Equity.Window = "quarter" }, true},
		{"quote without path", func(c *Config) { c.Quote = QuoteConfig{File: "q.json", Path: "quotes"} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestQuotePath(t *testing.T) {
	cfg := Default()
	cfg.Quote.Path = "$.quotes.{ticker}.last"
	assert.Equal(t, "$.quotes.AAPL.last", cfg.QuotePath("AAPL"))
}
