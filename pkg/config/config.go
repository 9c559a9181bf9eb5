package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Redis. Empty disables caching and falls back to in-memory overrides.
	RedisURL string `mapstructure:"REDIS_URL"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// RobotEvents API
	RobotEventsAPIKey  string `mapstructure:"ROBOTEVENTS_API_KEY"`
	RobotEventsBaseURL string `mapstructure:"ROBOTEVENTS_BASE_URL"`

	// Classifier model server. Empty uses the built-in logistic fallback.
	ClassifierURL string `mapstructure:"CLASSIFIER_URL"`

	// Caching and background refresh
	CacheTTL        time.Duration `mapstructure:"CACHE_TTL"`
	RefreshInterval time.Duration `mapstructure:"REFRESH_INTERVAL"`

	// Engine tuning. Zero keeps the calibrated default.
	FraudThresholdTop5 int     `mapstructure:"FRAUD_THRESHOLD_TOP5"`
	FraudThreshold     int     `mapstructure:"FRAUD_THRESHOLD"`
	SleeperThreshold   int     `mapstructure:"SLEEPER_THRESHOLD"`
	ManualBlendWeight  float64 `mapstructure:"MANUAL_BLEND_WEIGHT"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("ROBOTEVENTS_API_KEY", "")
	viper.SetDefault("ROBOTEVENTS_BASE_URL", "")
	viper.SetDefault("CLASSIFIER_URL", "")
	viper.SetDefault("CACHE_TTL", "5m")
	viper.SetDefault("REFRESH_INTERVAL", "10m")
	viper.SetDefault("FRAUD_THRESHOLD_TOP5", 0)
	viper.SetDefault("FRAUD_THRESHOLD", 0)
	viper.SetDefault("SLEEPER_THRESHOLD", 0)
	viper.SetDefault("MANUAL_BLEND_WEIGHT", 0.0)

	// Read from environment
	viper.AutomaticEnv()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse CORS origins from comma-separated string
	if corsStr := viper.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
