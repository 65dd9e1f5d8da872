package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jlux98/SchachMotor-sub001/pkg/engine"
)

// ErrInvalidConfig is returned when a loaded value is out of range
var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix is prepended to every environment override, e.g. SCHACHMOTOR_DEPTH
const EnvPrefix = "SCHACHMOTOR"

type Config struct {
	Depth          int    `mapstructure:"depth"`
	Strategy       string `mapstructure:"strategy"`
	SafetyMarginMS int    `mapstructure:"safety_margin_ms"`
	OpeningBook    bool   `mapstructure:"opening_book"`
	EvalCache      bool   `mapstructure:"eval_cache"`
	LogLevel       string `mapstructure:"log_level"`
	HTTPAddr       string `mapstructure:"http_addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("depth", engine.DefaultDepth)
	v.SetDefault("strategy", engine.StrategyRepetition)
	v.SetDefault("safety_margin_ms", 50)
	v.SetDefault("opening_book", true)
	v.SetDefault("eval_cache", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", ":8080")
}

// Setup will load the configuration. cfgPath is optional, environment variables override
// both the file and the defaults.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", cfgPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded values
func (c *Config) Validate() error {
	if c.Depth < 1 {
		return fmt.Errorf("%w: depth must be at least 1, got %d", ErrInvalidConfig, c.Depth)
	}
	if c.SafetyMarginMS < 0 {
		return fmt.Errorf("%w: negative safety margin %d", ErrInvalidConfig, c.SafetyMarginMS)
	}
	if _, err := engine.NewStrategy(c.Strategy, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// SafetyMargin is the time kept back from every search budget
func (c *Config) SafetyMargin() time.Duration {
	return time.Duration(c.SafetyMarginMS) * time.Millisecond
}

// EngineOptions converts the configuration into engine options
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		Strategy:           c.Strategy,
		SafetyMargin:       c.SafetyMargin(),
		UseOpeningBook:     c.OpeningBook,
		UseEvalCache:       c.EvalCache,
		IterativeDeepening: true,
	}
}
