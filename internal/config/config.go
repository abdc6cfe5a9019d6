// Package config loads service settings from .env files, DINEMENU_*
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "DINEMENU"

// Keys.
const (
	KeyPort               = "port"
	KeyDBPath             = "db_path"
	KeyLogLevel           = "log_level"
	KeyLogFormat          = "log_format"
	KeyMenuAPIURL         = "menu_api_url"
	KeyAssetBaseURL       = "asset_base_url"
	KeyFetchTimeout       = "fetch_timeout"
	KeyScrollDebounce     = "scroll_debounce"
	KeySettleDelay        = "settle_delay"
	KeyHeaderHeight       = "header_height"
	KeyTabBarHeight       = "tab_bar_height"
	KeyFilterBarThreshold = "filter_bar_threshold"
	KeySessionTTL         = "session_ttl"
	KeyRateLimit          = "rate_limit"
)

type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string

	MenuAPIURL   string
	AssetBaseURL string
	FetchTimeout time.Duration

	ScrollDebounce     time.Duration
	SettleDelay        time.Duration
	HeaderHeight       float64
	TabBarHeight       float64
	FilterBarThreshold float64

	SessionTTL time.Duration
	RateLimit  string
}

// New returns a viper instance with defaults set and environment lookup
// enabled. A .env file in the working directory is loaded first if present;
// it never overrides variables already set.
func New() *viper.Viper {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyDBPath, "dinemenu.db")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyMenuAPIURL, "")
	v.SetDefault(KeyAssetBaseURL, "")
	v.SetDefault(KeyFetchTimeout, 10*time.Second)
	v.SetDefault(KeyScrollDebounce, 0)
	v.SetDefault(KeySettleDelay, time.Second)
	v.SetDefault(KeyHeaderHeight, 64.0)
	v.SetDefault(KeyTabBarHeight, 48.0)
	v.SetDefault(KeyFilterBarThreshold, 240.0)
	v.SetDefault(KeySessionTTL, 30*time.Minute)
	v.SetDefault(KeyRateLimit, "120-M")
}

// Load reads the settings from v.
func Load(v *viper.Viper) Config {
	return Config{
		Port:               v.GetString(KeyPort),
		DBPath:             v.GetString(KeyDBPath),
		LogLevel:           v.GetString(KeyLogLevel),
		LogFormat:          v.GetString(KeyLogFormat),
		MenuAPIURL:         strings.TrimSpace(v.GetString(KeyMenuAPIURL)),
		AssetBaseURL:       strings.TrimSpace(v.GetString(KeyAssetBaseURL)),
		FetchTimeout:       v.GetDuration(KeyFetchTimeout),
		ScrollDebounce:     v.GetDuration(KeyScrollDebounce),
		SettleDelay:        v.GetDuration(KeySettleDelay),
		HeaderHeight:       v.GetFloat64(KeyHeaderHeight),
		TabBarHeight:       v.GetFloat64(KeyTabBarHeight),
		FilterBarThreshold: v.GetFloat64(KeyFilterBarThreshold),
		SessionTTL:         v.GetDuration(KeySessionTTL),
		RateLimit:          v.GetString(KeyRateLimit),
	}
}

// Validate checks the settings needed to fetch menus.
func (c Config) Validate() error {
	var errs []error
	if c.MenuAPIURL == "" {
		errs = append(errs, fmt.Errorf("%s is required", KeyMenuAPIURL))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", KeyFetchTimeout))
	}
	if c.ScrollDebounce < 0 || c.ScrollDebounce > 2*time.Second {
		errs = append(errs, fmt.Errorf("%s must be between 0 and 2s", KeyScrollDebounce))
	}
	if c.SettleDelay <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", KeySettleDelay))
	}
	if c.HeaderHeight < 0 || c.TabBarHeight < 0 {
		errs = append(errs, errors.New("header and tab bar heights must not be negative"))
	}
	return errors.Join(errs...)
}
