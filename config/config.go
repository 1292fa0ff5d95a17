// Package config loads and validates simulation configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/trendsim/logger"
	"github.com/rustyeddy/trendsim/market"
)

// Config represents the complete simulation configuration.
type Config struct {
	Engine     EngineConfig     `json:"engine" yaml:"engine"`
	Backtest   BacktestConfig   `json:"backtest" yaml:"backtest"`
	Store      StoreConfig      `json:"store" yaml:"store"`
	Strategies []StrategyConfig `json:"strategies" yaml:"strategies"`
}

// EngineConfig contains the simulated exchange parameters.
type EngineConfig struct {
	InitialBalance  float64 `json:"initial_balance" yaml:"initial_balance"`
	FeeRate         float64 `json:"fee_rate,omitempty" yaml:"fee_rate,omitempty"`
	FundingRate     float64 `json:"funding_rate,omitempty" yaml:"funding_rate,omitempty"`
	FundingInterval string  `json:"funding_interval,omitempty" yaml:"funding_interval,omitempty"`
}

// ParseFundingInterval converts the funding interval to a duration; empty
// means the engine default.
func (e EngineConfig) ParseFundingInterval() (time.Duration, error) {
	if e.FundingInterval == "" {
		return 0, nil
	}
	return time.ParseDuration(e.FundingInterval)
}

// BacktestConfig contains replay parameters.
type BacktestConfig struct {
	Warmup   int    `json:"warmup,omitempty" yaml:"warmup,omitempty"`
	DataFile string `json:"data_file,omitempty" yaml:"data_file,omitempty"`
}

// StoreConfig selects where position state and orders are persisted.
type StoreConfig struct {
	Type string `json:"type,omitempty" yaml:"type,omitempty"` // "memory" or "sqlite"
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// StrategyConfig contains the parameters for one strategy instance.
type StrategyConfig struct {
	ID        string `json:"id" yaml:"id"`
	Strategy  string `json:"strategy" yaml:"strategy"`
	Symbol    string `json:"symbol" yaml:"symbol"`
	Timeframe string `json:"timeframe" yaml:"timeframe"`

	Leverage  float64 `json:"leverage,omitempty" yaml:"leverage,omitempty"`
	SizeMode  string  `json:"size_mode,omitempty" yaml:"size_mode,omitempty"`
	SizeValue float64 `json:"size_value,omitempty" yaml:"size_value,omitempty"`
	MaxAdds   int     `json:"max_adds,omitempty" yaml:"max_adds,omitempty"`

	FastPeriod int `json:"fast_period,omitempty" yaml:"fast_period,omitempty"`
	SlowPeriod int `json:"slow_period,omitempty" yaml:"slow_period,omitempty"`

	SettleDelay string `json:"settle_delay,omitempty" yaml:"settle_delay,omitempty"`
}

// ConfigError marks one malformed strategy entry. It excludes that entry
// only; the rest of the file keeps loading.
type ConfigError struct {
	ID     string
	Reason string
}

func (e *ConfigError) Error() string {
	id := e.ID
	if id == "" {
		id = "(no id)"
	}
	return fmt.Sprintf("config: strategy %s: %s", id, e.Reason)
}

// Validate checks one strategy entry.
func (s StrategyConfig) Validate() error {
	if s.ID == "" {
		return &ConfigError{Reason: "id is required"}
	}
	if s.Symbol == "" {
		return &ConfigError{ID: s.ID, Reason: "symbol is required"}
	}
	if s.Timeframe == "" {
		return &ConfigError{ID: s.ID, Reason: "timeframe is required"}
	}
	if _, err := market.ParseTimeframe(s.Timeframe); err != nil {
		return &ConfigError{ID: s.ID, Reason: err.Error()}
	}
	switch strings.ToUpper(s.SizeMode) {
	case "", "PERCENT_BALANCE", "FIXED_MARGIN":
	default:
		return &ConfigError{ID: s.ID, Reason: fmt.Sprintf("unknown size_mode %q", s.SizeMode)}
	}
	if s.SettleDelay != "" {
		if _, err := time.ParseDuration(s.SettleDelay); err != nil {
			return &ConfigError{ID: s.ID, Reason: err.Error()}
		}
	}
	return nil
}

// ParseSettleDelay converts the settle delay to a duration; empty means
// no delay.
func (s StrategyConfig) ParseSettleDelay() (time.Duration, error) {
	if s.SettleDelay == "" {
		return 0, nil
	}
	return time.ParseDuration(s.SettleDelay)
}

// Default returns a working configuration for a single 4h BTCUSDT
// crossover strategy.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			InitialBalance: 10000,
		},
		Backtest: BacktestConfig{
			Warmup: 110,
		},
		Store: StoreConfig{
			Type: "memory",
		},
		Strategies: []StrategyConfig{
			{
				ID:          "double-ma-btc-4h",
				Strategy:    "double-ma",
				Symbol:      "BTCUSDT",
				Timeframe:   "4h",
				Leverage:    1,
				SizeMode:    "PERCENT_BALANCE",
				SizeValue:   0.1,
				MaxAdds:     1,
				FastPeriod:  21,
				SlowPeriod:  55,
				SettleDelay: "2s",
			},
		},
	}
}

// LoadFromFile loads configuration from a YAML or JSON file. Malformed
// strategy entries are dropped with a warning; everything else must be
// valid.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the global sections and filters out malformed strategy
// entries.
func (c *Config) Validate() error {
	if c.Engine.InitialBalance <= 0 {
		return fmt.Errorf("engine.initial_balance must be positive")
	}
	if c.Engine.FeeRate < 0 {
		return fmt.Errorf("engine.fee_rate must not be negative")
	}
	if _, err := c.Engine.ParseFundingInterval(); err != nil {
		return fmt.Errorf("engine.funding_interval: %w", err)
	}
	switch c.Store.Type {
	case "", "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("store.type must be 'memory' or 'sqlite'")
	}

	valid := c.Strategies[:0]
	for _, s := range c.Strategies {
		if err := s.Validate(); err != nil {
			logger.Warnf("%v, skipping", err)
			continue
		}
		valid = append(valid, s)
	}
	c.Strategies = valid
	if len(c.Strategies) == 0 {
		return fmt.Errorf("no valid strategies configured")
	}
	return nil
}

// SaveToFile writes the configuration, YAML for .yaml/.yml and JSON
// otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
