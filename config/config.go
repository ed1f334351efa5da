package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	SerpAPI  SerpAPIConfig `mapstructure:"serpapi"`
	Pricing  PricingConfig
	Research ResearchConfig
	Logging  LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SerpAPIConfig holds shopping-search provider configuration
type SerpAPIConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Engine       string        `mapstructure:"engine"`
	GoogleDomain string        `mapstructure:"google_domain"`
	Country      string        `mapstructure:"gl"`
	Language     string        `mapstructure:"hl"`
	ResultHint   int           `mapstructure:"result_hint"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// PricingConfig holds the cost model rates
type PricingConfig struct {
	BufferRate   float64 `mapstructure:"buffer_rate"`
	ReferralRate float64 `mapstructure:"referral_rate"`
}

// ResearchConfig holds batch and ranking settings
type ResearchConfig struct {
	TopN              int           `mapstructure:"top_n"`
	PacingDelay       time.Duration `mapstructure:"pacing_delay"`
	ExcludedMerchants []string      `mapstructure:"excluded_merchants"`
	MaxSessions       int           `mapstructure:"max_sessions"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	// A missing .env is normal outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/arbilens/")

	v.SetEnvPrefix("ARBILENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional - env vars and defaults are enough
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// SerpApi defaults. api_key has an empty default so AutomaticEnv can see it on Unmarshal.
	v.SetDefault("serpapi.api_key", "")
	v.SetDefault("serpapi.base_url", "https://serpapi.com")
	v.SetDefault("serpapi.engine", "google_shopping")
	v.SetDefault("serpapi.google_domain", "google.com")
	v.SetDefault("serpapi.gl", "us")
	v.SetDefault("serpapi.hl", "en")
	v.SetDefault("serpapi.result_hint", 5)
	v.SetDefault("serpapi.timeout", "30s")

	// Pricing defaults
	v.SetDefault("pricing.buffer_rate", 0.05)
	v.SetDefault("pricing.referral_rate", 0.15)

	// Research defaults
	v.SetDefault("research.top_n", 2)
	v.SetDefault("research.pacing_delay", "500ms")
	v.SetDefault("research.excluded_merchants", []string{"ebay", "mercari", "poshmark", "amazon", "etsy"})
	v.SetDefault("research.max_sessions", 32)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 3)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.SerpAPI.BaseURL == "" {
		return fmt.Errorf("SerpApi base URL is required")
	}

	if config.SerpAPI.Timeout <= 0 {
		return fmt.Errorf("SerpApi timeout must be positive, got: %s", config.SerpAPI.Timeout)
	}

	if config.SerpAPI.ResultHint < 1 || config.SerpAPI.ResultHint > 20 {
		return fmt.Errorf("SerpApi result hint must be between 1 and 20, got: %d", config.SerpAPI.ResultHint)
	}

	if config.Pricing.BufferRate < 0 || config.Pricing.BufferRate >= 1 {
		return fmt.Errorf("buffer rate must be in [0, 1), got: %v", config.Pricing.BufferRate)
	}

	if config.Pricing.ReferralRate < 0 || config.Pricing.ReferralRate >= 1 {
		return fmt.Errorf("referral rate must be in [0, 1), got: %v", config.Pricing.ReferralRate)
	}

	if config.Research.TopN < 1 || config.Research.TopN > 10 {
		return fmt.Errorf("top_n must be between 1 and 10, got: %d", config.Research.TopN)
	}

	if config.Research.PacingDelay < 0 {
		return fmt.Errorf("pacing delay cannot be negative, got: %s", config.Research.PacingDelay)
	}

	if config.Research.MaxSessions < 1 {
		return fmt.Errorf("max_sessions must be at least 1, got: %d", config.Research.MaxSessions)
	}

	if config.Logging.Format != "json" && config.Logging.Format != "text" {
		return fmt.Errorf("log format must be 'json' or 'text', got: %s", config.Logging.Format)
	}

	return nil
}
