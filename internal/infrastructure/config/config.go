// Package config loads service settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Port            string
	LogLevel        string
	CBRBaseURL      string
	CBRTimeout      time.Duration
	DefaultCurrency string
	DataDir         string
	Location        *time.Location
	ShutdownTimeout time.Duration
}

// Load reads configuration. Environment variables override .env values, which override defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CBR_BASE_URL", "http://www.cbr.ru/scripts/XML_dynamic.asp")
	v.SetDefault("CBR_TIMEOUT", "10s")
	v.SetDefault("DEFAULT_CURRENCY", "R01235")
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("TIMEZONE", "Local")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:            v.GetString("PORT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		CBRBaseURL:      v.GetString("CBR_BASE_URL"),
		DefaultCurrency: v.GetString("DEFAULT_CURRENCY"),
		DataDir:         v.GetString("DATA_DIR"),
	}

	var err error
	if cfg.CBRTimeout, err = parseDuration(v, "CBR_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = parseDuration(v, "SHUTDOWN_TIMEOUT"); err != nil {
		return nil, err
	}

	cfg.Location, err = time.LoadLocation(v.GetString("TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", v.GetString("TIMEZONE"), err)
	}

	if cfg.Port == "" {
		return nil, fmt.Errorf("PORT must not be empty")
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}
