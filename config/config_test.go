package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

var configEnvVars = []string{
	"ARBILENS_SERVER_PORT",
	"ARBILENS_SERVER_ENVIRONMENT",
	"ARBILENS_SERPAPI_API_KEY",
	"ARBILENS_SERPAPI_BASE_URL",
	"ARBILENS_SERPAPI_RESULT_HINT",
	"ARBILENS_SERPAPI_TIMEOUT",
	"ARBILENS_PRICING_BUFFER_RATE",
	"ARBILENS_PRICING_REFERRAL_RATE",
	"ARBILENS_RESEARCH_TOP_N",
	"ARBILENS_RESEARCH_PACING_DELAY",
	"ARBILENS_RESEARCH_EXCLUDED_MERCHANTS",
	"ARBILENS_LOGGING_FORMAT",
}

func cleanupEnv() {
	for _, key := range configEnvVars {
		os.Unsetenv(key)
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.SerpAPI.BaseURL != "https://serpapi.com" {
			t.Errorf("SerpAPI.BaseURL = %s, want https://serpapi.com", cfg.SerpAPI.BaseURL)
		}
		if cfg.SerpAPI.Engine != "google_shopping" {
			t.Errorf("SerpAPI.Engine = %s, want google_shopping", cfg.SerpAPI.Engine)
		}
		if cfg.SerpAPI.ResultHint != 5 {
			t.Errorf("SerpAPI.ResultHint = %d, want 5", cfg.SerpAPI.ResultHint)
		}
		if cfg.SerpAPI.Timeout != 30*time.Second {
			t.Errorf("SerpAPI.Timeout = %v, want 30s", cfg.SerpAPI.Timeout)
		}
		if cfg.Pricing.BufferRate != 0.05 {
			t.Errorf("Pricing.BufferRate = %v, want 0.05", cfg.Pricing.BufferRate)
		}
		if cfg.Pricing.ReferralRate != 0.15 {
			t.Errorf("Pricing.ReferralRate = %v, want 0.15", cfg.Pricing.ReferralRate)
		}
		if cfg.Research.TopN != 2 {
			t.Errorf("Research.TopN = %d, want 2", cfg.Research.TopN)
		}
		if cfg.Research.PacingDelay != 500*time.Millisecond {
			t.Errorf("Research.PacingDelay = %v, want 500ms", cfg.Research.PacingDelay)
		}
		want := []string{"ebay", "mercari", "poshmark", "amazon", "etsy"}
		if !reflect.DeepEqual(cfg.Research.ExcludedMerchants, want) {
			t.Errorf("Research.ExcludedMerchants = %v, want %v", cfg.Research.ExcludedMerchants, want)
		}
		if cfg.SerpAPI.APIKey != "" {
			t.Errorf("SerpAPI.APIKey = %q, want empty", cfg.SerpAPI.APIKey)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("ARBILENS_SERVER_PORT", "9090")
		os.Setenv("ARBILENS_SERVER_ENVIRONMENT", "production")
		os.Setenv("ARBILENS_SERPAPI_API_KEY", "custom-api-key")
		os.Setenv("ARBILENS_SERPAPI_BASE_URL", "https://custom.api.com")
		os.Setenv("ARBILENS_SERPAPI_TIMEOUT", "10s")
		os.Setenv("ARBILENS_PRICING_BUFFER_RATE", "0.1")
		os.Setenv("ARBILENS_PRICING_REFERRAL_RATE", "0.08")
		os.Setenv("ARBILENS_RESEARCH_TOP_N", "4")
		os.Setenv("ARBILENS_RESEARCH_PACING_DELAY", "250ms")
		os.Setenv("ARBILENS_RESEARCH_EXCLUDED_MERCHANTS", "walmart,target")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.SerpAPI.APIKey != "custom-api-key" {
			t.Errorf("SerpAPI.APIKey = %s, want custom-api-key", cfg.SerpAPI.APIKey)
		}
		if cfg.SerpAPI.BaseURL != "https://custom.api.com" {
			t.Errorf("SerpAPI.BaseURL = %s, want https://custom.api.com", cfg.SerpAPI.BaseURL)
		}
		if cfg.SerpAPI.Timeout != 10*time.Second {
			t.Errorf("SerpAPI.Timeout = %v, want 10s", cfg.SerpAPI.Timeout)
		}
		if cfg.Pricing.BufferRate != 0.1 {
			t.Errorf("Pricing.BufferRate = %v, want 0.1", cfg.Pricing.BufferRate)
		}
		if cfg.Pricing.ReferralRate != 0.08 {
			t.Errorf("Pricing.ReferralRate = %v, want 0.08", cfg.Pricing.ReferralRate)
		}
		if cfg.Research.TopN != 4 {
			t.Errorf("Research.TopN = %d, want 4", cfg.Research.TopN)
		}
		if cfg.Research.PacingDelay != 250*time.Millisecond {
			t.Errorf("Research.PacingDelay = %v, want 250ms", cfg.Research.PacingDelay)
		}
		if !reflect.DeepEqual(cfg.Research.ExcludedMerchants, []string{"walmart", "target"}) {
			t.Errorf("Research.ExcludedMerchants = %v, want [walmart target]", cfg.Research.ExcludedMerchants)
		}
	})

	t.Run("fails validation for out of range top_n", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("ARBILENS_RESEARCH_TOP_N", "0")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want error for top_n = 0")
		}
		if !strings.Contains(err.Error(), "top_n") {
			t.Errorf("Load() error = %v, want top_n error", err)
		}
	})

	t.Run("fails validation for referral rate of 100%", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("ARBILENS_PRICING_REFERRAL_RATE", "1")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for referral rate 1")
		}
	})
}

func TestValidate(t *testing.T) {
	validConfig := func() *Config {
		return &Config{
			SerpAPI: SerpAPIConfig{
				BaseURL:    "https://serpapi.com",
				ResultHint: 5,
				Timeout:    30 * time.Second,
			},
			Pricing: PricingConfig{
				BufferRate:   0.05,
				ReferralRate: 0.15,
			},
			Research: ResearchConfig{
				TopN:        2,
				PacingDelay: 500 * time.Millisecond,
				MaxSessions: 32,
			},
			Logging: LoggingConfig{Format: "json"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}, wantErr: false},
		{name: "missing API key is allowed", mutate: func(c *Config) { c.SerpAPI.APIKey = "" }, wantErr: false},
		{name: "zero pacing delay is allowed", mutate: func(c *Config) { c.Research.PacingDelay = 0 }, wantErr: false},
		{name: "empty base URL", mutate: func(c *Config) { c.SerpAPI.BaseURL = "" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.SerpAPI.Timeout = 0 }, wantErr: true},
		{name: "result hint too large", mutate: func(c *Config) { c.SerpAPI.ResultHint = 50 }, wantErr: true},
		{name: "negative buffer rate", mutate: func(c *Config) { c.Pricing.BufferRate = -0.01 }, wantErr: true},
		{name: "top_n too large", mutate: func(c *Config) { c.Research.TopN = 11 }, wantErr: true},
		{name: "negative pacing delay", mutate: func(c *Config) { c.Research.PacingDelay = -time.Second }, wantErr: true},
		{name: "zero max sessions", mutate: func(c *Config) { c.Research.MaxSessions = 0 }, wantErr: true},
		{name: "unknown log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
