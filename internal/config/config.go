// Package config layers cleancheck settings from defaults, an optional config
// file, CLEANCHECK_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/potooio/cleancheck/internal/correlator"
	"github.com/potooio/cleancheck/internal/normalizer"
	"github.com/potooio/cleancheck/internal/types"
)

// EnvPrefix is prepended to every environment variable, e.g. CLEANCHECK_WINDOW.
const EnvPrefix = "CLEANCHECK"

// Setting keys. Flags use the same names.
const (
	KeyWindow             = "window"
	KeyRepeatSuppression  = "repeat-suppression"
	KeyStatusKeyword      = "status-keyword"
	KeyTimezone           = "timezone"
	KeyLocation           = "location"
	KeyMaxEvents          = "max-events"
	KeySensorColumns      = "sensor-columns"
	KeyMaintenanceColumns = "maintenance-columns"
	KeyLogLevel           = "log-level"
)

// Config is the validated evaluation configuration.
type Config struct {
	Window            time.Duration
	RepeatSuppression time.Duration
	StatusKeyword     string
	Timezone          *time.Location
	Location          types.Location
	MaxEvents         int
	LogLevel          string

	// Header overrides keyed by ingest field name (e.g. "timestamp").
	SensorColumns      map[string]string
	MaintenanceColumns map[string]string
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyWindow, correlator.DefaultWindow)
	v.SetDefault(KeyRepeatSuppression, normalizer.DefaultRepeatSuppression)
	v.SetDefault(KeyStatusKeyword, normalizer.DefaultStatusKeyword)
	v.SetDefault(KeyTimezone, "UTC")
	v.SetDefault(KeyLocation, "")
	v.SetDefault(KeyMaxEvents, 0)
	v.SetDefault(KeyLogLevel, "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile (if set) into v and returns the validated Config.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	cfg := Config{
		Window:             v.GetDuration(KeyWindow),
		RepeatSuppression:  v.GetDuration(KeyRepeatSuppression),
		StatusKeyword:      strings.TrimSpace(v.GetString(KeyStatusKeyword)),
		MaxEvents:          v.GetInt(KeyMaxEvents),
		LogLevel:           strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		SensorColumns:      v.GetStringMapString(KeySensorColumns),
		MaintenanceColumns: v.GetStringMapString(KeyMaintenanceColumns),
	}

	var errs []error
	if cfg.Window <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", KeyWindow, cfg.Window))
	}
	if cfg.RepeatSuppression <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", KeyRepeatSuppression, cfg.RepeatSuppression))
	}
	if cfg.StatusKeyword == "" {
		errs = append(errs, fmt.Errorf("%s must not be empty", KeyStatusKeyword))
	}
	if cfg.MaxEvents < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %d", KeyMaxEvents, cfg.MaxEvents))
	}

	tz, err := time.LoadLocation(v.GetString(KeyTimezone))
	if err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", KeyTimezone, err))
	}
	cfg.Timezone = tz

	if raw := v.GetString(KeyLocation); raw != "" {
		loc, err := types.ParseLocation(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", KeyLocation, err))
		}
		cfg.Location = loc
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
