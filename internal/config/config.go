package config

import (
	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`

	// SessionToken authenticates outbound fetches to the source site.
	// Absent token means degraded mode: fetches still go out, success
	// rates drop.
	SessionToken string `mapstructure:"SESSION_TOKEN"`

	FetchTimeout   int `mapstructure:"FETCH_TIMEOUT"`   // seconds, per variant
	CascadeTimeout int `mapstructure:"CASCADE_TIMEOUT"` // seconds, whole request

	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	CacheTTLMinutes int    `mapstructure:"CACHE_TTL_MINUTES"`

	PostgresURL string `mapstructure:"POSTGRES_URL"`

	// RenderFallback enables the headless-browser fetch when every plain
	// variant comes up empty.
	RenderFallback bool `mapstructure:"RENDER_FALLBACK"`
	RenderTimeout  int  `mapstructure:"RENDER_TIMEOUT"` // seconds
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present
	// This allows configuration purely through environment variables in production
	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("FETCH_TIMEOUT", 10)
	viper.SetDefault("CASCADE_TIMEOUT", 45)
	viper.SetDefault("CACHE_TTL_MINUTES", 15)
	viper.SetDefault("RENDER_FALLBACK", false)
	viper.SetDefault("RENDER_TIMEOUT", 20)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
