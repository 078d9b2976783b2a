// Package config loads the rsrank YAML configuration and applies
// environment variable overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for rsrank.
type Config struct {
	Data     Data           `yaml:"data"`
	Calendar CalendarConfig `yaml:"calendar"`
	Alpaca   Alpaca         `yaml:"alpaca"`
	RSR      RSRConfig      `yaml:"rsr"`
	Sim      SimConfig      `yaml:"sim"`
	Logging  Logging        `yaml:"logging"`
}

// Data holds paths for price data persistence.
type Data struct {
	CloseCSV   string `yaml:"close_csv"`
	SQLitePath string `yaml:"sqlite_path"`
	DataDir    string `yaml:"data_dir"`
}

// CalendarConfig selects and parameterizes the trading-calendar source.
type CalendarConfig struct {
	// Name is the exchange calendar identifier, e.g. "XTKS" or "XNYS".
	Name string `yaml:"name"`

	// Source selects the session source: "csv" reads an exported session
	// table, "alpaca" queries the Alpaca calendar API.
	Source string `yaml:"source"`

	// SessionsCSV is the session table path for the csv source.
	SessionsCSV string `yaml:"sessions_csv"`

	// LookbackDays bounds the prev-or-same session search window.
	LookbackDays int `yaml:"lookback_days"`

	// RateLimitPerMin paces calls to the remote calendar API.
	RateLimitPerMin int `yaml:"rate_limit_per_min"`
}

// Alpaca holds credentials for the Alpaca API, used only by the alpaca
// calendar source.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
}

// Weights are the momentum composite weights. They must describe the four
// historical anchors and are expected to sum to 1.0.
type Weights struct {
	Q1 float64 `yaml:"q1"` // 3 months back
	Q2 float64 `yaml:"q2"` // 6 months back
	Q3 float64 `yaml:"q3"` // 9 months back
	Y1 float64 `yaml:"y1"` // 1 year back
}

// RSRConfig parameterizes scoring and ranking.
type RSRConfig struct {
	Weights   Weights `yaml:"weights"`
	TopN      int     `yaml:"top_n"`
	Benchmark string  `yaml:"benchmark"`
}

// SimConfig holds simulation defaults, overridable per run by flags.
type SimConfig struct {
	Invest float64 `yaml:"invest"`
	Mode   string  `yaml:"mode"`
	Lot    int     `yaml:"lot"`
	SortBy string  `yaml:"sort_by"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, applies
// defaults for unset fields, and then applies environment variable
// overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// Default returns a configuration with all defaults applied and no file
// read. Used by CLIs when no config file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Data.CloseCSV == "" {
		cfg.Data.CloseCSV = "prices_close_wide.csv"
	}

	if cfg.Calendar.Name == "" {
		cfg.Calendar.Name = "XTKS"
	}
	if cfg.Calendar.Source == "" {
		cfg.Calendar.Source = "csv"
	}
	if cfg.Calendar.SessionsCSV == "" {
		cfg.Calendar.SessionsCSV = "sessions_" + cfg.Calendar.Name + ".csv"
	}
	if cfg.Calendar.LookbackDays == 0 {
		cfg.Calendar.LookbackDays = 40
	}
	if cfg.Calendar.RateLimitPerMin == 0 {
		cfg.Calendar.RateLimitPerMin = 120
	}

	w := &cfg.RSR.Weights
	if w.Q1 == 0 && w.Q2 == 0 && w.Q3 == 0 && w.Y1 == 0 {
		*w = Weights{Q1: 0.4, Q2: 0.2, Q3: 0.2, Y1: 0.2}
	}
	if cfg.RSR.TopN == 0 {
		cfg.RSR.TopN = 40
	}
	if cfg.RSR.Benchmark == "" {
		cfg.RSR.Benchmark = "^N225"
	}

	if cfg.Sim.Invest == 0 {
		cfg.Sim.Invest = 100_000
	}
	if cfg.Sim.Mode == "" {
		cfg.Sim.Mode = "1share"
	}
	if cfg.Sim.Lot == 0 {
		cfg.Sim.Lot = 100
	}
	if cfg.Sim.SortBy == "" {
		cfg.Sim.SortBy = "pct"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CLOSE_CSV"); v != "" {
		cfg.Data.CloseCSV = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Data.SQLitePath = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Data.DataDir = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Canonical Alpaca env vars used by the SDK.
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}
