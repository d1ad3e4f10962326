package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port             string        `mapstructure:"PORT"`
	Env              string        `mapstructure:"ENV"`
	DatabaseURL      string        `mapstructure:"DATABASE_URL"`
	DBMaxConns       int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns       int32         `mapstructure:"DB_MIN_CONNS"`
	RedisURL         string        `mapstructure:"REDIS_URL"`
	CORSOrigins      []string      `mapstructure:"CORS_ORIGINS"`
	MLServiceURL     string        `mapstructure:"ML_SERVICE_URL"`
	MLServiceTimeout time.Duration `mapstructure:"ML_SERVICE_TIMEOUT"`
	AnalysisCacheTTL time.Duration `mapstructure:"ANALYSIS_CACHE_TTL"`
	OTLPEndpoint     string        `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	RequestTimeout   time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BodyLimit        string        `mapstructure:"BODY_LIMIT"`
	MigrationsDir    string        `mapstructure:"MIGRATIONS_DIR"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("ML_SERVICE_TIMEOUT", "10s")
	v.SetDefault("ANALYSIS_CACHE_TTL", "24h")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("MIGRATIONS_DIR", "./migrations")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "REDIS_URL",
		"CORS_ORIGINS", "ML_SERVICE_URL", "ML_SERVICE_TIMEOUT", "ANALYSIS_CACHE_TTL",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "REQUEST_TIMEOUT", "BODY_LIMIT", "MIGRATIONS_DIR",
	} {
		_ = v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Viper splits the env value on commas but keeps surrounding spaces.
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsDev selects human-readable console logging.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks values that viper cannot check while decoding.
func (c *Config) Validate() error {
	if c.DBMinConns < 0 || c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive and DB_MIN_CONNS non-negative")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.MLServiceURL != "" {
		u, err := url.Parse(c.MLServiceURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("ML_SERVICE_URL must be an absolute URL, got %q", c.MLServiceURL)
		}
	}
	if c.MLServiceTimeout <= 0 {
		return fmt.Errorf("ML_SERVICE_TIMEOUT must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.AnalysisCacheTTL < 0 {
		return fmt.Errorf("ANALYSIS_CACHE_TTL must not be negative")
	}
	return nil
}
