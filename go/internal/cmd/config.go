package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/mcdev12/rugbytransfers/go/internal/lifecycle"
	"github.com/mcdev12/rugbytransfers/go/internal/outbox"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Log struct {
		Level   string `yaml:"level"`
		Console bool   `yaml:"console"`
	} `yaml:"log"`

	Transfers lifecycle.Config `yaml:"transfers"`

	Outbox struct {
		PollInterval    time.Duration `yaml:"poll_interval"`
		BatchSize       int           `yaml:"batch_size"`
		MaxRetries      int           `yaml:"max_retries"`
		RetryDelay      time.Duration `yaml:"retry_delay"`
		HealthThreshold time.Duration `yaml:"health_threshold"`
	} `yaml:"outbox"`

	NATS struct {
		URL string `yaml:"url"`
	} `yaml:"nats"`
}

func defaultConfig() *Config {
	var config Config
	config.Server.Port = "8080"
	config.Log.Level = "info"
	config.Log.Console = true

	relay := outbox.DefaultConfig()
	config.Outbox.PollInterval = relay.PollInterval
	config.Outbox.BatchSize = relay.BatchSize
	config.Outbox.MaxRetries = relay.MaxRetries
	config.Outbox.RetryDelay = relay.RetryDelay
	config.Outbox.HealthThreshold = time.Minute
	return &config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// loadConfig reads the yaml file at path over the defaults and applies
// environment overrides. A missing file is not an error.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warn().Str("path", path).Msg("config file not found, using defaults")
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.Server.Port = getEnv("PORT", config.Server.Port)
	config.Log.Level = getEnv("LOG_LEVEL", config.Log.Level)
	config.NATS.URL = getEnv("NATS_URL", config.NATS.URL)
	config.Outbox.BatchSize = getEnvAsInt("OUTBOX_BATCH_SIZE", config.Outbox.BatchSize)
	config.Transfers.StrictOfferAcceptance = getEnvAsBool("STRICT_OFFER_ACCEPTANCE", config.Transfers.StrictOfferAcceptance)

	if config.Outbox.PollInterval <= 0 {
		return nil, fmt.Errorf("outbox poll_interval must be positive")
	}
	if config.Outbox.BatchSize <= 0 {
		return nil, fmt.Errorf("outbox batch_size must be positive")
	}
	return config, nil
}

// relayConfig converts the outbox section to relay settings
func (c *Config) relayConfig() outbox.Config {
	relay := outbox.DefaultConfig()
	relay.PollInterval = c.Outbox.PollInterval
	relay.BatchSize = c.Outbox.BatchSize
	relay.MaxRetries = c.Outbox.MaxRetries
	relay.RetryDelay = c.Outbox.RetryDelay
	return relay
}

func setupLogging(config *Config) error {
	level, err := zerolog.ParseLevel(config.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", config.Log.Level, err)
	}
	zerolog.SetGlobalLevel(level)
	if config.Log.Console {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return nil
}
