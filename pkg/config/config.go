// Package config loads runtime settings for the modal subsystem from
// defaults, an optional YAML file and FORMMODAL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-formmodal/pkg/imageintake"
	"github.com/goliatone/go-formmodal/pkg/notify"
)

// EnvPrefix namespaces environment overrides, e.g. FORMMODAL_DEBOUNCE=500ms.
const EnvPrefix = "FORMMODAL"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// ErrInvalid wraps every validation failure returned by Config.Validate.
var ErrInvalid = errors.New("config: invalid")

// Config is the full set of tunables.
type Config struct {
	Debounce    time.Duration      `mapstructure:"debounce" yaml:"debounce"`
	FormsDir    string             `mapstructure:"forms_dir" yaml:"forms_dir"`
	Images      imageintake.Limits `mapstructure:"images" yaml:"images"`
	Compression Compression        `mapstructure:"compression" yaml:"compression"`
	Notify      notify.Durations   `mapstructure:"notify" yaml:"notify"`
	Store       Store              `mapstructure:"store" yaml:"store"`
	Log         Log                `mapstructure:"log" yaml:"log"`
}

// Compression configures the image compressor.
type Compression struct {
	Target int64              `mapstructure:"target" yaml:"target"`
	Tiers  []imageintake.Tier `mapstructure:"tiers" yaml:"tiers"`
}

// Store selects the record store.
type Store struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Debounce: 300 * time.Millisecond,
		Images:   imageintake.DefaultLimits(),
		Compression: Compression{
			Target: imageintake.DefaultTarget,
			Tiers:  imageintake.DefaultTiers(),
		},
		Notify: notify.DefaultDurations(),
		Store: Store{
			Driver: DriverMemory,
			DSN:    "file:formmodal.db",
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path (when non-empty) over the defaults and applies environment
// overrides. A missing path is an error; an empty path only reads the
// environment.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("debounce", cfg.Debounce)
	v.SetDefault("forms_dir", cfg.FormsDir)
	v.SetDefault("images.max_bytes", cfg.Images.MaxBytes)
	v.SetDefault("images.min_bytes", cfg.Images.MinBytes)
	v.SetDefault("images.allowed", cfg.Images.Allowed)
	v.SetDefault("compression.target", cfg.Compression.Target)
	v.SetDefault("compression.tiers", tiersToMaps(cfg.Compression.Tiers))
	v.SetDefault("notify.success", cfg.Notify.Success)
	v.SetDefault("notify.error", cfg.Notify.Error)
	v.SetDefault("notify.warning", cfg.Notify.Warning)
	v.SetDefault("notify.info", cfg.Notify.Info)
	v.SetDefault("store.driver", cfg.Store.Driver)
	v.SetDefault("store.dsn", cfg.Store.DSN)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.development", cfg.Log.Development)
}

func tiersToMaps(tiers []imageintake.Tier) []map[string]any {
	out := make([]map[string]any, 0, len(tiers))
	for _, tier := range tiers {
		out = append(out, map[string]any{
			"min_bytes":     tier.MinBytes,
			"quality":       tier.Quality,
			"max_dimension": tier.MaxDimension,
		})
	}
	return out
}

// Validate reports settings the subsystem cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce must not be negative, got %s", c.Debounce))
	}
	if c.Images.MaxBytes > 0 && c.Images.MinBytes > c.Images.MaxBytes {
		errs = append(errs, fmt.Errorf("images.min_bytes %d exceeds images.max_bytes %d", c.Images.MinBytes, c.Images.MaxBytes))
	}
	if c.Compression.Target < 0 {
		errs = append(errs, fmt.Errorf("compression.target must not be negative"))
	}
	for i, tier := range c.Compression.Tiers {
		if tier.Quality <= 0 || tier.Quality > 1 {
			errs = append(errs, fmt.Errorf("compression.tiers[%d].quality %v outside (0, 1]", i, tier.Quality))
		}
		if tier.MaxDimension <= 0 {
			errs = append(errs, fmt.Errorf("compression.tiers[%d].max_dimension must be positive", i))
		}
		if i > 0 && tier.MinBytes > c.Compression.Tiers[i-1].MinBytes {
			errs = append(errs, fmt.Errorf("compression.tiers must be ordered largest first (index %d)", i))
		}
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if strings.TrimSpace(c.Store.DSN) == "" {
			errs = append(errs, fmt.Errorf("store.dsn is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// Logger builds the zap logger described by c.Log.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("config: log level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	if c.Log.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
