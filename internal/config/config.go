package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Redis
	RedisURL string `mapstructure:"REDIS_URL"`

	// Upstream FPL API
	FPLBaseURL         string        `mapstructure:"FPL_BASE_URL"`
	ExternalAPITimeout time.Duration `mapstructure:"EXTERNAL_API_TIMEOUT"`

	// Cache freshness
	CacheTTLSeconds int `mapstructure:"CACHE_TTL_SECONDS"`

	// Scheduled refresh
	EnableBackgroundJobs bool   `mapstructure:"ENABLE_BACKGROUND_JOBS"`
	RefreshSchedule      string `mapstructure:"REFRESH_SCHEDULE"`

	// Rate limiting
	RateLimitMax           int `mapstructure:"RATE_LIMIT_MAX"`
	RateLimitWindowSeconds int `mapstructure:"RATE_LIMIT_WINDOW_SECONDS"`

	// Circuit breaker
	CircuitBreakerThreshold int `mapstructure:"CIRCUIT_BREAKER_THRESHOLD"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`
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
	viper.SetDefault("FPL_BASE_URL", "https://fantasy.premierleague.com/api")
	viper.SetDefault("EXTERNAL_API_TIMEOUT", "30s")
	viper.SetDefault("CACHE_TTL_SECONDS", 3600)
	viper.SetDefault("ENABLE_BACKGROUND_JOBS", true)
	viper.SetDefault("REFRESH_SCHEDULE", "0 * * * *")
	viper.SetDefault("RATE_LIMIT_MAX", 60)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("CIRCUIT_BREAKER_THRESHOLD", 3)
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")

	viper.AutomaticEnv()

	// Read config file if present (environment wins)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal's default decode hooks split comma-separated strings into
	// slices and parse duration strings
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.CacheTTLSeconds <= 0 {
		return nil, fmt.Errorf("CACHE_TTL_SECONDS must be positive, got %d", cfg.CacheTTLSeconds)
	}

	return &cfg, nil
}

// CacheTTL returns the freshness window as a duration
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// RateLimitWindow returns the rate limit window as a duration
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
