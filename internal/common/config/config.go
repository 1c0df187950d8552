// Package config provides configuration management for DevBoard.
// It supports loading configuration from environment variables, .env files,
// config files, and defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Data source drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverRemote   = "remote"
)

// Config holds all configuration sections for DevBoard.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Source   SourceConfig   `mapstructure:"source"`
	Database DatabaseConfig `mapstructure:"database"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	Cache    CacheConfig    `mapstructure:"cache"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Drag     DragConfig     `mapstructure:"drag"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"readTimeout"`  // in seconds
	WriteTimeout int    `mapstructure:"writeTimeout"` // in seconds
}

// SourceConfig selects the board data source.
type SourceConfig struct {
	Driver   string        `mapstructure:"driver"`   // memory, sqlite, postgres, mongo, remote
	Fixtures string        `mapstructure:"fixtures"` // seed file (json, yaml, toml); empty uses the embedded set
	Seed     bool          `mapstructure:"seed"`     // seed persistent drivers when empty
	Latency  time.Duration `mapstructure:"latency"`  // simulated latency for the memory driver
}

// DatabaseConfig holds SQL connection configuration.
type DatabaseConfig struct {
	Path     string `mapstructure:"path"` // sqlite file
	DSN      string `mapstructure:"dsn"`  // postgres connection string
	MaxConns int    `mapstructure:"maxConns"`
	MinConns int    `mapstructure:"minConns"`
}

// MongoConfig holds MongoDB connection configuration.
type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// RemoteConfig holds the low-code backend client configuration.
type RemoteConfig struct {
	BaseURL         string        `mapstructure:"baseURL"`
	APIKey          string        `mapstructure:"apiKey"`
	Timeout         time.Duration `mapstructure:"timeout"`
	BreakerTimeout  time.Duration `mapstructure:"breakerTimeout"`
	BreakerFailures uint32        `mapstructure:"breakerFailures"`
}

// CacheConfig holds the optional Redis read cache configuration.
type CacheConfig struct {
	RedisURL string        `mapstructure:"redisURL"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// NATSConfig holds NATS messaging configuration.
type NATSConfig struct {
	URL           string `mapstructure:"url"`
	ClientID      string `mapstructure:"clientId"`
	MaxReconnects int    `mapstructure:"maxReconnects"`
	// SubjectPrefix namespaces every subject so several deployments can
	// share one NATS server.
	SubjectPrefix string `mapstructure:"subjectPrefix"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"outputPath"`
	MaxSizeMB  int    `mapstructure:"maxSizeMB"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAgeDays"`
	Compress   bool   `mapstructure:"compress"`
}

// DragConfig holds drag controller settings.
type DragConfig struct {
	PersistTimeout time.Duration `mapstructure:"persistTimeout"`
}

// CORSConfig holds allowed origins for browser clients.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// ReadTimeoutDuration returns the read timeout as a time.Duration.
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns the write timeout as a time.Duration.
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// Addr returns host:port for the HTTP listener.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func detectDefaultLogFormat() string {
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return "json"
	}
	if env := os.Getenv("DEVBOARD_ENV"); env == "production" || env == "prod" {
		return "json"
	}
	return "text"
}

// setDefaults configures default values for all configuration options.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)

	v.SetDefault("source.driver", DriverMemory)
	v.SetDefault("source.fixtures", "")
	v.SetDefault("source.seed", true)
	v.SetDefault("source.latency", 0)

	v.SetDefault("database.path", "./devboard.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.maxConns", 25)
	v.SetDefault("database.minConns", 5)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "devboard")

	v.SetDefault("remote.baseURL", "")
	v.SetDefault("remote.apiKey", "")
	v.SetDefault("remote.timeout", 10*time.Second)
	v.SetDefault("remote.breakerTimeout", 5*time.Second)
	v.SetDefault("remote.breakerFailures", 3)

	// Empty URL disables the cache.
	v.SetDefault("cache.redisURL", "")
	v.SetDefault("cache.ttl", 30*time.Second)

	// Empty URL means use in-memory event bus
	v.SetDefault("nats.url", "")
	v.SetDefault("nats.clientId", "devboard")
	v.SetDefault("nats.maxReconnects", 10)
	v.SetDefault("nats.subjectPrefix", "devboard")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", detectDefaultLogFormat())
	v.SetDefault("logging.outputPath", "stdout")
	v.SetDefault("logging.maxSizeMB", 50)
	v.SetDefault("logging.maxBackups", 3)
	v.SetDefault("logging.maxAgeDays", 14)
	v.SetDefault("logging.compress", false)

	v.SetDefault("drag.persistTimeout", 10*time.Second)

	v.SetDefault("cors.allowedOrigins", []string{"*"})
}

// Load reads configuration from environment variables, config file, and defaults.
// Environment variables use the prefix DEVBOARD_ with snake_case naming.
func Load() (*Config, error) {
	return LoadWithPath("")
}

// LoadWithPath reads configuration from the specified path or default locations.
func LoadWithPath(configPath string) (*Config, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DEVBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv does not map camelCase keys to SNAKE_CASE env vars.
	_ = v.BindEnv("database.maxConns", "DEVBOARD_DATABASE_MAX_CONNS")
	_ = v.BindEnv("database.minConns", "DEVBOARD_DATABASE_MIN_CONNS")
	_ = v.BindEnv("remote.baseURL", "DEVBOARD_REMOTE_BASE_URL")
	_ = v.BindEnv("remote.apiKey", "DEVBOARD_REMOTE_API_KEY")
	_ = v.BindEnv("cache.redisURL", "DEVBOARD_CACHE_REDIS_URL", "REDIS_URL")
	_ = v.BindEnv("mongo.uri", "DEVBOARD_MONGO_URI", "MONGO_URI")
	_ = v.BindEnv("drag.persistTimeout", "DEVBOARD_DRAG_PERSIST_TIMEOUT")

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/devboard/")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validate checks that required configuration values are set and valid.
func validate(cfg *Config) error {
	var errs []string

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}

	switch cfg.Source.Driver {
	case DriverMemory:
	case DriverSQLite:
		if cfg.Database.Path == "" {
			errs = append(errs, "database.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if cfg.Database.DSN == "" {
			errs = append(errs, "database.dsn is required for the postgres driver")
		}
	case DriverMongo:
		if cfg.Mongo.URI == "" || cfg.Mongo.Database == "" {
			errs = append(errs, "mongo.uri and mongo.database are required for the mongo driver")
		}
	case DriverRemote:
		if cfg.Remote.BaseURL == "" {
			errs = append(errs, "remote.baseURL is required for the remote driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("source.driver must be one of memory, sqlite, postgres, mongo, remote (got %q)", cfg.Source.Driver))
	}

	if cfg.Source.Latency < 0 {
		errs = append(errs, "source.latency must not be negative")
	}
	if cfg.Drag.PersistTimeout < 0 {
		errs = append(errs, "drag.persistTimeout must not be negative")
	}
	if cfg.Cache.RedisURL != "" && cfg.Cache.TTL <= 0 {
		errs = append(errs, "cache.ttl must be positive when the cache is enabled")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, "logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{"json": true, "console": true, "text": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, "logging.format must be one of: json, text, console")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}

	return nil
}
