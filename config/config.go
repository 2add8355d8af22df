// Package config reads and writes the tbk configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/tradebook/date"
	"gopkg.in/yaml.v3"
)

// Config is the complete tbk configuration.
type Config struct {
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Account AccountConfig `json:"account" yaml:"account"`
	Quote   QuoteConfig   `json:"quote" yaml:"quote"`
	Equity  EquityConfig  `json:"equity" yaml:"equity"`
}

// JournalConfig locates the JSONL journal.
type JournalConfig struct {
	File string `json:"file" yaml:"file"`
}

// AccountConfig describes the trading account.
type AccountConfig struct {
	Currency        string  `json:"currency" yaml:"currency"`
	StartingBalance float64 `json:"starting_balance" yaml:"starting_balance"`
	Start           string  `json:"start,omitempty" yaml:"start,omitempty"` // first day of the equity curve, optional
}

// QuoteConfig tells where current prices are read from. Path is a JSONPath
// expression where "{ticker}" is replaced by the ticker.
type QuoteConfig struct {
	File string `json:"file,omitempty" yaml:"file,omitempty"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// EquityConfig holds the defaults of the equity report.
type EquityConfig struct {
	Window string `json:"window" yaml:"window"` // ALL, 1M, 3M, 6M, YTD, 1Y, or a calendar period: week, month, quarter, year
}

// Default returns the configuration used when there is no file.
func Default() *Config {
	return &Config{
		Journal: JournalConfig{File: "journal.jsonl"},
		Account: AccountConfig{Currency: "USD"},
		Quote:   QuoteConfig{Path: "$.{ticker}"},
		Equity:  EquityConfig{Window: "ALL"},
	}
}

// LoadFromFile loads configuration from a YAML file (JSON being valid YAML,
// JSON files work too). Missing fields keep their default value.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", errors.Join(err, jerr))
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads the file, or returns the default configuration when it
// does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadFromFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// SaveToFile saves configuration to a file, JSON for a .json extension and
// YAML otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid. All problems are reported.
func (c *Config) Validate() error {
	var errs []error
	if c.Journal.File == "" {
		errs = append(errs, errors.New("journal.file is required"))
	}
	if len(c.Account.Currency) != 3 || strings.ToUpper(c.Account.Currency) != c.Account.Currency {
		errs = append(errs, fmt.Errorf("account.currency must be a 3-letter uppercase code, got %q", c.Account.Currency))
	}
	if c.Account.StartingBalance < 0 {
		errs = append(errs, errors.New("account.starting_balance must not be negative"))
	}
	if c.Account.Start != "" {
		if _, err := date.Parse(c.Account.Start); err != nil {
			errs = append(errs, fmt.Errorf("account.start: %w", err))
		}
	}
	if _, err := date.ParseSpan(c.Equity.Window); err != nil {
		errs = append(errs, fmt.Errorf("equity.window: %w", err))
	}
	if c.Quote.File != "" && !strings.HasPrefix(c.Quote.Path, "$") {
		errs = append(errs, fmt.Errorf("quote.path must be a JSONPath expression starting with '$', got %q", c.Quote.Path))
	}
	return errors.Join(errs...)
}

// QuotePath returns the JSONPath of the quote of a ticker.
func (c *Config) QuotePath(ticker string) string {
	return strings.ReplaceAll(c.Quote.Path, "{ticker}", ticker)
}

// StartDate returns the configured first day of the equity curve.
func (c *Config) StartDate() (date.Date, bool) {
	if c.Account.Start == "" {
		return date.Date{}, false
	}
	on, err := date.Parse(c.Account.Start)
	return on, err == nil
}
