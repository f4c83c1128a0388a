// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	AppPort     string   `mapstructure:"appport"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`

	// Event store settings
	RedisURL        string `mapstructure:"redisurl"`
	RedisKeyPrefix  string `mapstructure:"rediskeyprefix"`
	MaxStoredEvents int64  `mapstructure:"maxstoredevents"`

	// File paths
	GeoDBPath string `mapstructure:"geodbpath"`

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()

		// Set defaults
		v.SetDefault("appname", "analytics-api")
		v.SetDefault("appport", "3000")
		v.SetDefault("environment", Development)
		v.SetDefault("loglevel", string(LogLevelDebug))
		v.SetDefault("redisurl", "redis://localhost:6379/0")
		v.SetDefault("rediskeyprefix", "")
		v.SetDefault("maxstoredevents", 10000)
		v.SetDefault("geodbpath", "")
		v.SetDefault("logsdir", "logs")
		v.SetDefault("logsmaxsizeinmb", 20)
		v.SetDefault("logsmaxbackups", 10)
		v.SetDefault("logsmaxageindays", 30)

		// Bind environment variables
		v.BindEnv("appname", "ANALYTICS_APP_NAME")
		v.BindEnv("appport", "ANALYTICS_APP_PORT")
		v.BindEnv("environment", "ANALYTICS_ENV")
		v.BindEnv("loglevel", "ANALYTICS_LOG_LEVEL")
		v.BindEnv("redisurl", "ANALYTICS_REDIS_URL")
		v.BindEnv("rediskeyprefix", "ANALYTICS_REDIS_KEY_PREFIX")
		v.BindEnv("maxstoredevents", "ANALYTICS_MAX_STORED_EVENTS")
		v.BindEnv("geodbpath", "ANALYTICS_GEO_DB_PATH")
		v.BindEnv("logsdir", "ANALYTICS_LOGS_DIR")
		v.BindEnv("logsmaxsizeinmb", "ANALYTICS_LOGS_MAX_SIZE_IN_MB")
		v.BindEnv("logsmaxbackups", "ANALYTICS_LOGS_MAX_BACKUPS")
		v.BindEnv("logsmaxageindays", "ANALYTICS_LOGS_MAX_AGE_IN_DAYS")

		cfg = &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Fatalf("config: failed to unmarshal configuration: %v", err)
		}

		if err := cfg.validate(); err != nil {
			log.Fatalf("config: invalid configuration: %v", err)
		}
	})
	return cfg
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	if c.MaxStoredEvents <= 0 {
		return fmt.Errorf("maxstoredevents must be positive, got %d", c.MaxStoredEvents)
	}

	return nil
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}
