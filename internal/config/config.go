// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	Server   ServerConfig
	Mongo    MongoConfig
	Auth     AuthConfig
	Media    MediaConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Logging  LoggingConfig
}

// ServerConfig contains HTTP server configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	CookieSecure    bool
	TempDir         string
	MaxUploadSize   int64
}

// MongoConfig contains document store connection configuration.
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
}

// AuthConfig contains token signing configuration.
type AuthConfig struct {
	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenSecret string
	RefreshTokenExpiry time.Duration
	BcryptCost         int
}

// MediaConfig contains media host (S3-compatible object storage) configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type MediaConfig struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Bucket       string
	UseSSL       bool
	PublicURL    string
	ProbeTimeout time.Duration
}

// RedisConfig contains Redis configuration. An empty Addr disables view de-duplication.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	ViewWindow time.Duration
}

// RabbitMQConfig contains RabbitMQ connection and exchange configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type RabbitMQConfig struct {
	Enabled  bool
	Host     string
	User     string
	Password string
	Exchange string
	Port     int
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Mongo.URI == "" {
		errs = append(errs, errors.New("mongo.uri is required"))
	}
	if c.Auth.AccessTokenSecret == "" {
		errs = append(errs, errors.New("auth.accesstokensecret is required"))
	}
	if c.Auth.RefreshTokenSecret == "" {
		errs = append(errs, errors.New("auth.refreshtokensecret is required"))
	}
	if c.Auth.AccessTokenSecret != "" && c.Auth.AccessTokenSecret == c.Auth.RefreshTokenSecret {
		errs = append(errs, errors.New("access and refresh token secrets must differ"))
	}
	if c.Media.Bucket == "" {
		errs = append(errs, errors.New("media.bucket is required"))
	}
	return errors.Join(errs...)
}

func setDefaults() {
	// Server
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)
	viper.SetDefault("server.corsorigins", []string{"http://localhost:5173"})
	viper.SetDefault("server.cookiesecure", true)
	viper.SetDefault("server.tempdir", "./public/temp")
	viper.SetDefault("server.maxuploadsize", 512<<20) // 512MB

	// Mongo
	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "videotube")
	viper.SetDefault("mongo.connecttimeout", 10*time.Second)
	viper.SetDefault("mongo.maxpoolsize", 50)

	// Auth
	viper.SetDefault("auth.accesstokensecret", "")
	viper.SetDefault("auth.accesstokenexpiry", 15*time.Minute)
	viper.SetDefault("auth.refreshtokensecret", "")
	viper.SetDefault("auth.refreshtokenexpiry", 7*24*time.Hour)
	viper.SetDefault("auth.bcryptcost", 10)

	// Media
	viper.SetDefault("media.endpoint", "localhost:9000")
	viper.SetDefault("media.accesskey", "minioadmin")
	viper.SetDefault("media.secretkey", "minioadmin")
	viper.SetDefault("media.bucket", "videotube")
	viper.SetDefault("media.usessl", false)
	viper.SetDefault("media.publicurl", "http://localhost:9000")
	viper.SetDefault("media.probetimeout", 30*time.Second)

	// Redis
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.viewwindow", 6*time.Hour)

	// RabbitMQ
	viper.SetDefault("rabbitmq.enabled", false)
	viper.SetDefault("rabbitmq.host", "localhost")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.user", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.exchange", "videotube.events")

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}
