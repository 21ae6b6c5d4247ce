package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingAPIKey = errors.New("serpapi api key is not configured")

type Config struct {
	Server  Server  `mapstructure:"server"`
	Redis   Redis   `mapstructure:"redis"`
	SerpAPI SerpAPI `mapstructure:"serpapi"`
	Search  Search  `mapstructure:"search"`
	Tracing Tracing `mapstructure:"tracing"`
}

type Server struct {
	Addr string `mapstructure:"addr"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SerpAPI struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RateLimitInterval time.Duration `mapstructure:"rate_limit_interval"`
	MaxRetries        uint          `mapstructure:"max_retries"`
}

type Search struct {
	ResultTTL    time.Duration `mapstructure:"result_ttl"`
	ItineraryTTL time.Duration `mapstructure:"itinerary_ttl"`
}

type Tracing struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// Load reads the YAML config at path (optional) and applies TP_* environment
// overrides, e.g. TP_SERPAPI_API_KEY or TP_REDIS_ADDR.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	// The empty default registers the key so the env override is seen.
	v.SetDefault("serpapi.api_key", "")
	v.SetDefault("serpapi.base_url", "https://serpapi.com/search")
	v.SetDefault("serpapi.timeout", 15*time.Second)
	v.SetDefault("serpapi.rate_limit_interval", 200*time.Millisecond)
	v.SetDefault("serpapi.max_retries", 3)
	v.SetDefault("search.result_ttl", 30*time.Minute)
	v.SetDefault("search.itinerary_ttl", 24*time.Hour)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4318")

	v.SetEnvPrefix("TP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings a worker cannot run without. The API service
// only needs Redis, so it skips this.
func (c Config) Validate() error {
	if strings.TrimSpace(c.SerpAPI.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}
