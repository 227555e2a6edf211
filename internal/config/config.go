package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Database    DatabaseConfig  `yaml:"database"`
	Auth        AuthConfig      `yaml:"auth"`
	Logging     LoggingConfig   `yaml:"logging"`
	CORS        CORSConfig      `yaml:"cors"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	Tracing     TracingConfig   `yaml:"tracing"`
	Environment string          `yaml:"environment"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	URL            string `yaml:"url"`
	MaxConnections int    `yaml:"max_connections"`
	MinConnections int    `yaml:"min_connections"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
	SeedOnStart    bool   `yaml:"seed_on_start"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	JWTExpiry time.Duration `yaml:"jwt_expiry"`
	JWTIssuer string        `yaml:"jwt_issuer"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type CORSConfig struct {
	AllowAllOrigins bool     `yaml:"allow_all_origins"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

type RateLimitConfig struct {
	PublicPerMinute   int      `yaml:"public_per_minute"`
	AuthPerMinute     int      `yaml:"auth_per_minute"`
	TrustedProxyCIDRs []string `yaml:"trusted_proxy_cidrs"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	ServiceName  string  `yaml:"service_name"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
}

// Defaults returns the configuration used when neither a file nor the
// environment sets a value.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		Database: DatabaseConfig{
			MaxConnections: 25,
			MinConnections: 2,
			MigrateOnStart: false,
			SeedOnStart:    true,
		},
		Auth: AuthConfig{
			JWTExpiry: 24 * time.Hour,
			JWTIssuer: "eventos",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute: 120,
			AuthPerMinute:   10,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "stdout",
			ServiceName:  "eventos",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Environment: "development",
	}
}

// Load reads configuration from environment variables on top of Defaults.
func Load() (Config, error) {
	return fromEnv(Defaults())
}

// LoadFile reads a YAML file on top of Defaults, then applies environment
// variables, which win over the file.
func LoadFile(path string) (Config, error) {
	base := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &base); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fromEnv(base)
}

func fromEnv(base Config) (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", base.Server.Host),
			Port: getEnvInt("SERVER_PORT", base.Server.Port),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", base.Database.URL),
			MaxConnections: getEnvInt("DATABASE_MAX_CONNECTIONS", base.Database.MaxConnections),
			MinConnections: getEnvInt("DATABASE_MIN_CONNECTIONS", base.Database.MinConnections),
			MigrateOnStart: getEnvBool("MIGRATE_ON_START", base.Database.MigrateOnStart),
			SeedOnStart:    getEnvBool("SEED_ON_START", base.Database.SeedOnStart),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", base.Auth.JWTSecret),
			JWTExpiry: getEnvHours("JWT_EXPIRY_HOURS", base.Auth.JWTExpiry),
			JWTIssuer: getEnv("JWT_ISSUER", base.Auth.JWTIssuer),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", base.Logging.Level),
			Format: getEnv("LOG_FORMAT", base.Logging.Format),
		},
		CORS: CORSConfig{
			AllowAllOrigins: getEnvBool("CORS_ALLOW_ALL", base.CORS.AllowAllOrigins),
			AllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", base.CORS.AllowedOrigins),
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute:   getEnvInt("RATE_LIMIT_PUBLIC", base.RateLimit.PublicPerMinute),
			AuthPerMinute:     getEnvInt("RATE_LIMIT_AUTH", base.RateLimit.AuthPerMinute),
			TrustedProxyCIDRs: getEnvList("TRUSTED_PROXY_CIDRS", base.RateLimit.TrustedProxyCIDRs),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvBool("TRACING_ENABLED", base.Tracing.Enabled),
			Exporter:     getEnv("TRACING_EXPORTER", base.Tracing.Exporter),
			ServiceName:  getEnv("TRACING_SERVICE_NAME", base.Tracing.ServiceName),
			OTLPEndpoint: getEnv("TRACING_OTLP_ENDPOINT", base.Tracing.OTLPEndpoint),
			SampleRate:   getEnvFloat("TRACING_SAMPLE_RATE", base.Tracing.SampleRate),
		},
		Environment: getEnv("ENVIRONMENT", base.Environment),
	}

	// Outside production the mobile client runs from arbitrary dev origins.
	if cfg.Environment == "development" || cfg.Environment == "test" {
		cfg.CORS.AllowAllOrigins = true
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Environment == "production" {
		if len(c.Auth.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
		if !c.CORS.AllowAllOrigins && len(c.CORS.AllowedOrigins) == 0 {
			return fmt.Errorf("CORS_ALLOWED_ORIGINS is required in production")
		}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT %d is out of range", c.Server.Port)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvHours(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	hours, err := strconv.Atoi(value)
	if err != nil || hours <= 0 {
		return fallback
	}
	return time.Duration(hours) * time.Hour
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
