package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Catalog   CatalogConfig   `yaml:"catalog" mapstructure:"catalog"`
	Meteo     MeteoConfig     `yaml:"meteo" mapstructure:"meteo"`
	Routing   RoutingConfig   `yaml:"routing" mapstructure:"routing"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Notion    NotionConfig    `yaml:"notion" mapstructure:"notion"`
	Judge     JudgeConfig     `yaml:"judge" mapstructure:"judge"`
	Enrich    EnrichConfig    `yaml:"enrich" mapstructure:"enrich"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Origin    OriginConfig    `yaml:"origin" mapstructure:"origin"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// CatalogConfig configures the mountain catalog store.
type CatalogConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite or postgres
	Path        string `yaml:"path" mapstructure:"path"`     // sqlite file path
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// MeteoConfig holds Open-Meteo forecast API settings.
type MeteoConfig struct {
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	Timezone     string  `yaml:"timezone" mapstructure:"timezone"`
	ForecastDays int     `yaml:"forecast_days" mapstructure:"forecast_days"`
	RateLimit    float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // req/s
}

// RoutingConfig holds OpenRouteService settings.
type RoutingConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// AnthropicConfig holds Anthropic API settings for the judgment stage.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// NotionConfig holds Notion API credentials for the trip-log export.
type NotionConfig struct {
	Token     string `yaml:"token" mapstructure:"token"`
	TripLogDB string `yaml:"trip_log_db" mapstructure:"trip_log_db"`
}

// JudgeConfig configures the optional pluggable scoring backend. When
// disabled (the default), scoring is fully deterministic and replayable.
type JudgeConfig struct {
	Enabled  bool    `yaml:"enabled" mapstructure:"enabled"`
	MaxDelta float64 `yaml:"max_delta" mapstructure:"max_delta"`
}

// EnrichConfig configures the per-candidate enrichment fan-out.
type EnrichConfig struct {
	Concurrency    int    `yaml:"concurrency" mapstructure:"concurrency"`
	TimeoutSecs    int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Retries        int    `yaml:"retries" mapstructure:"retries"`
	DegradedPolicy string `yaml:"degraded_policy" mapstructure:"degraded_policy"` // exclude or penalize
}

// ScoringConfig points at the weight/threshold profile used by the engine.
type ScoringConfig struct {
	ProfilePath string `yaml:"profile_path" mapstructure:"profile_path"` // empty = built-in defaults
}

// OriginConfig is the default query origin when none is supplied.
type OriginConfig struct {
	Name string  `yaml:"name" mapstructure:"name"`
	Lat  float64 `yaml:"lat" mapstructure:"lat"`
	Lon  float64 `yaml:"lon" mapstructure:"lon"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("POWDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("catalog.driver", "sqlite")
	v.SetDefault("catalog.path", "mountains.db")
	v.SetDefault("meteo.base_url", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("meteo.timezone", "America/New_York")
	v.SetDefault("meteo.forecast_days", 7)
	v.SetDefault("meteo.rate_limit", 5)
	v.SetDefault("routing.base_url", "https://api.openrouteservice.org/v2/directions/driving-car")
	v.SetDefault("routing.rate_limit", 2)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("judge.enabled", false)
	v.SetDefault("judge.max_delta", 10.0)
	v.SetDefault("enrich.concurrency", 5)
	v.SetDefault("enrich.timeout_secs", 10)
	v.SetDefault("enrich.retries", 1)
	v.SetDefault("enrich.degraded_policy", "penalize")
	v.SetDefault("origin.name", "Boston, MA")
	v.SetDefault("origin.lat", 42.3601)
	v.SetDefault("origin.lon", -71.0589)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
