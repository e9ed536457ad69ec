package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/yhkl-dev/SaavnCLI/logger"
)

// EnvPrefix is prepended to environment overrides, e.g. SAAVNCLI_LOG_LEVEL.
const EnvPrefix = "SAAVNCLI"

// Loader reads config.toml, .env files, environment variables and command
// line flags, in increasing order of precedence.
type Loader struct {
	v        *viper.Viper
	envFiles []string
}

// NewLoader creates a Loader reading config files from fs.
func NewLoader(fs afero.Fs, envFiles ...string) *Loader {
	v := viper.New()
	v.SetFs(fs)
	return &Loader{v: v, envFiles: envFiles}
}

// Load reads the configuration from the default locations using the OS
// filesystem, with args parsed as command line flags.
func Load(args []string) (*Config, *Loader, error) {
	l := NewLoader(afero.NewOsFs())
	cfg, err := l.Load(args)
	if err != nil {
		return nil, nil, err
	}
	return cfg, l, nil
}

// Load parses args and returns the merged configuration.
func (l *Loader) Load(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("saavncli", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", "", "path to config.toml")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "write logs to this file")
	flags.StringP("backend", "b", "", "media transport backend (mpv, beep)")
	flags.String("base-url", "", "catalog API base URL")
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := godotenv.Load(l.envFiles...); err != nil {
		logger.Debug("no .env file loaded: %v", err)
	}

	// Set defaults from DefaultConfig
	defaults := DefaultConfig()
	l.v.SetDefault("catalog.base_url", defaults.Catalog.BaseURL)
	l.v.SetDefault("catalog.timeout", defaults.Catalog.Timeout)
	l.v.SetDefault("catalog.page_size", defaults.Catalog.PageSize)
	l.v.SetDefault("catalog.max_retries", defaults.Catalog.MaxRetries)
	l.v.SetDefault("catalog.retry_backoff_ms", defaults.Catalog.RetryBackoffMs)
	l.v.SetDefault("search.debounce_ms", defaults.Search.DebounceMs)
	l.v.SetDefault("search.result_limit", defaults.Search.ResultLimit)
	l.v.SetDefault("player.backend", defaults.Player.Backend)
	l.v.SetDefault("player.poll_interval_ms", defaults.Player.PollIntervalMs)
	l.v.SetDefault("player.connect_timeout", defaults.Player.ConnectTimeout)
	l.v.SetDefault("ui.progress_bar_width", defaults.UI.ProgressBarWidth)
	l.v.SetDefault("ui.max_column_width", defaults.UI.MaxColumnWidth)
	l.v.SetDefault("log.level", defaults.Log.Level)
	l.v.SetDefault("log.file", defaults.Log.File)

	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	bindings := map[string]string{
		"log.level":        "log-level",
		"log.file":         "log-file",
		"player.backend":   "backend",
		"catalog.base_url": "base-url",
	}
	for key, flag := range bindings {
		if err := l.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	// Set config file properties
	if *configPath != "" {
		l.v.SetConfigFile(*configPath)
	} else {
		l.v.SetConfigName("config")
		l.v.SetConfigType("toml")
		l.v.AddConfigPath("$HOME/.config/saavncli/")
		l.v.AddConfigPath("$HOME/.config/")
		l.v.AddConfigPath(".")
	}

	// Every key has a default, so a missing file in the search path is fine.
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if *configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		logger.Debug("no config file found, using defaults")
	}

	cfg, err := l.decode()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Watch re-reads the config file whenever it changes and passes valid
// configurations to fn. Invalid edits are logged and ignored.
func (l *Loader) Watch(fn func(*Config)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := l.decode()
		if err != nil {
			logger.Warn("ignoring config change in %s: %v", e.Name, err)
			return
		}
		logger.Info("config reloaded (%s %s)", e.Op, e.Name)
		fn(cfg)
	})
	l.v.WatchConfig()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
