// Package config loads the configuration surface recognized by the
// prediction core, backtest engine, and ticket simulators.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// RetrainCadence is the configured retraining interval for the backtest
// engine.
type RetrainCadence string

const (
	CadenceDaily   RetrainCadence = "daily"
	CadenceWeekly  RetrainCadence = "weekly"
	CadenceMonthly RetrainCadence = "monthly"
)

// Config is the full configuration surface. Unmarshalled from environment
// variables (and an optional .env file) via viper, matching the shape the
// rest of this codebase's services use for their own Config structs.
type Config struct {
	// Persistence
	DatabasePath string `mapstructure:"DATABASE_PATH"`
	ModelDir     string `mapstructure:"MODEL_DIR"`
	ModelPath    string `mapstructure:"MODEL_PATH"`

	// Backtest / training
	RetrainInterval        RetrainCadence `mapstructure:"RETRAIN_INTERVAL"`
	MinTrainingSamples     int            `mapstructure:"MIN_TRAINING_SAMPLES"`
	MaxPastResultsPerHorse int            `mapstructure:"MAX_PAST_RESULTS_PER_HORSE"`
	LightweightTraining    bool           `mapstructure:"LIGHTWEIGHT_TRAINING"`

	// Simulators
	TopN   int      `mapstructure:"TOP_N"`
	Venues []string `mapstructure:"VENUES"`

	// Fetcher
	PayoutBaseURL       string  `mapstructure:"PAYOUT_BASE_URL"`
	RequestDelaySeconds float64 `mapstructure:"REQUEST_DELAY"`

	// Ambient
	LogLevel string `mapstructure:"LOG_LEVEL"`
	Env      string `mapstructure:"ENV"`
}

// Load reads defaults, an optional .env file, and environment overrides
// into a Config.
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	viper.SetDefault("DATABASE_PATH", "keiba.db")
	viper.SetDefault("MODEL_DIR", "models")
	viper.SetDefault("MODEL_PATH", "")

	viper.SetDefault("RETRAIN_INTERVAL", "weekly")
	viper.SetDefault("MIN_TRAINING_SAMPLES", 100)
	viper.SetDefault("MAX_PAST_RESULTS_PER_HORSE", 20)
	viper.SetDefault("LIGHTWEIGHT_TRAINING", true)

	viper.SetDefault("TOP_N", 3)
	viper.SetDefault("VENUES", "")

	viper.SetDefault("PAYOUT_BASE_URL", "https://results.example-racing-authority.jp/api")
	viper.SetDefault("REQUEST_DELAY", 1.0)

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("ENV", "development")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if venues := viper.GetString("VENUES"); venues != "" {
		cfg.Venues = strings.Split(venues, ",")
	}

	switch cfg.RetrainInterval {
	case CadenceDaily, CadenceWeekly, CadenceMonthly:
	default:
		return nil, fmt.Errorf("invalid RETRAIN_INTERVAL %q", cfg.RetrainInterval)
	}

	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
