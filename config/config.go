package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	Search  SearchConfig  `mapstructure:"search"`
	Player  PlayerConfig  `mapstructure:"player"`
	UI      UIConfig      `mapstructure:"ui"`
	Log     LogConfig     `mapstructure:"log"`
}

// CatalogConfig contains Saavn API connection settings
type CatalogConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Timeout        int    `mapstructure:"timeout"` // in seconds
	PageSize       int    `mapstructure:"page_size"`
	MaxRetries     int    `mapstructure:"max_retries"`
	RetryBackoffMs int    `mapstructure:"retry_backoff_ms"`
}

// SearchConfig contains search-as-you-type settings
type SearchConfig struct {
	DebounceMs  int `mapstructure:"debounce_ms"`
	ResultLimit int `mapstructure:"result_limit"`
}

// PlayerConfig contains media transport settings
type PlayerConfig struct {
	Backend        string `mapstructure:"backend"` // mpv or beep
	PollIntervalMs int    `mapstructure:"poll_interval_ms"`
	ConnectTimeout int    `mapstructure:"connect_timeout"` // in seconds
}

// UIConfig contains user interface settings
type UIConfig struct {
	ProgressBarWidth int `mapstructure:"progress_bar_width"`
	MaxColumnWidth   int `mapstructure:"max_column_width"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

const (
	BackendMPV  = "mpv"
	BackendBeep = "beep"
)

// GetTimeout returns the HTTP timeout as a time.Duration
func (c *CatalogConfig) GetTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// GetRetryBackoff returns the base retry backoff
func (c *CatalogConfig) GetRetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMs) * time.Millisecond
}

// GetDebounce returns the keystroke debounce window
func (s *SearchConfig) GetDebounce() time.Duration {
	return time.Duration(s.DebounceMs) * time.Millisecond
}

// GetPollInterval returns the position refresh interval
func (p *PlayerConfig) GetPollInterval() time.Duration {
	return time.Duration(p.PollIntervalMs) * time.Millisecond
}

// GetConnectTimeout returns how long transport binding may take
func (p *PlayerConfig) GetConnectTimeout() time.Duration {
	return time.Duration(p.ConnectTimeout) * time.Second
}

// Validate checks the values a running client depends on
func (c *Config) Validate() error {
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url must not be empty")
	}
	if c.Catalog.PageSize <= 0 {
		return fmt.Errorf("catalog.page_size must be positive, got %d", c.Catalog.PageSize)
	}
	if c.Catalog.Timeout < 0 || c.Catalog.MaxRetries < 0 || c.Catalog.RetryBackoffMs < 0 {
		return fmt.Errorf("catalog timeouts and retries must not be negative")
	}
	if c.Search.DebounceMs < 0 {
		return fmt.Errorf("search.debounce_ms must not be negative")
	}
	if c.Player.PollIntervalMs <= 0 {
		return fmt.Errorf("player.poll_interval_ms must be positive, got %d", c.Player.PollIntervalMs)
	}
	switch c.Player.Backend {
	case BackendMPV, BackendBeep:
	default:
		return fmt.Errorf("player.backend must be %q or %q, got %q", BackendMPV, BackendBeep, c.Player.Backend)
	}
	return nil
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			BaseURL:        "https://saavn.sumit.co",
			Timeout:        15,
			PageSize:       20,
			MaxRetries:     3,
			RetryBackoffMs: 500,
		},
		Search: SearchConfig{
			DebounceMs:  450,
			ResultLimit: 40,
		},
		Player: PlayerConfig{
			Backend:        BackendMPV,
			PollIntervalMs: 500,
			ConnectTimeout: 10,
		},
		UI: UIConfig{
			ProgressBarWidth: 30,
			MaxColumnWidth:   40,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
