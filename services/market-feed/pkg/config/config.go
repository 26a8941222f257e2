package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/pkg/migration"
	"github.com/muhammadchandra19/exchange/pkg/postgresql"
	"github.com/muhammadchandra19/exchange/pkg/redis"
)

// Config represents the application configuration.
type Config struct {
	App        AppConfig         `envPrefix:"APP_"`
	Postgres   postgresql.Config `envPrefix:"POSTGRES_"`
	Redis      redis.Config      `envPrefix:"REDIS_"`
	Feed       FeedConfig        `envPrefix:"FEED_"`
	RelayKafka RelayKafkaConfig  `envPrefix:"RELAY_KAFKA_"`
	Migration  migration.Config  `envPrefix:"MIGRATION_"`
}

// AppConfig represents the application configuration.
type AppConfig struct {
	Name        string `env:"NAME" envDefault:"market-feed"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogTimeKey  string `env:"LOG_TIME_KEY" envDefault:"time"`
	LogLevelKey string `env:"LOG_LEVEL_KEY" envDefault:"level"`
	// LogCallerSkip hides extra frames when the logger is wrapped.
	LogCallerSkip int `env:"LOG_CALLER_SKIP" envDefault:"0"`
}

// FeedConfig tunes the ingestion pipeline.
type FeedConfig struct {
	BusCapacity int `env:"BUS_CAPACITY" envDefault:"16"`
	// SizeDecimals and PriceDecimals scale payload sizes and prices into
	// minimum units before the fixed-point conversion.
	SizeDecimals     int32         `env:"SIZE_DECIMALS" envDefault:"0"`
	PriceDecimals    int32         `env:"PRICE_DECIMALS" envDefault:"0"`
	SubscribeTimeout time.Duration `env:"SUBSCRIBE_TIMEOUT" envDefault:"5s"`
	// AnnounceTimeout bounds the startup announcement, which waits for
	// consumers to make room on the bus.
	AnnounceTimeout time.Duration `env:"ANNOUNCE_TIMEOUT" envDefault:"30s"`
	LogConsumer      bool          `env:"LOG_CONSUMER" envDefault:"true"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// RelayKafkaConfig represents the optional Kafka relay configuration.
type RelayKafkaConfig struct {
	Enabled      bool          `env:"ENABLED" envDefault:"false"`
	Brokers      []string      `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic        string        `env:"TOPIC" envDefault:"market-feed"`
	BatchTimeout time.Duration `env:"BATCH_TIMEOUT" envDefault:"50ms"`
	MaxRetries   int           `env:"MAX_RETRIES" envDefault:"3"`
}

const (
	environmentDevelopment = "development"
	environmentProduction  = "production"

	// maxDecimals keeps 10^decimals inside the u64 range.
	maxDecimals = 19
)

// Load loads the configuration from the environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	baseErr := errors.NewBaseError()
	// rejected carries the offending value on the details
	invalid := func(field, message string, rejected any) {
		baseErr.AddErrorDetails(errors.NewErrorDetailsWithObject(message, string(errors.ConfigError), field, rejected))
	}

	if c.App.Environment != environmentDevelopment && c.App.Environment != environmentProduction {
		invalid("APP_ENVIRONMENT", "must be development or production", c.App.Environment)
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		invalid("APP_PORT", "must be a valid TCP port", c.App.Port)
	}
	if c.App.LogTimeKey == "" {
		invalid("APP_LOG_TIME_KEY", "must not be empty", c.App.LogTimeKey)
	}
	if c.App.LogLevelKey == "" {
		invalid("APP_LOG_LEVEL_KEY", "must not be empty", c.App.LogLevelKey)
	}
	if c.App.LogCallerSkip < 0 {
		invalid("APP_LOG_CALLER_SKIP", "must not be negative", c.App.LogCallerSkip)
	}
	if c.Feed.BusCapacity <= 0 {
		invalid("FEED_BUS_CAPACITY", "must be positive", c.Feed.BusCapacity)
	}
	if c.Feed.SizeDecimals < 0 || c.Feed.SizeDecimals > maxDecimals {
		invalid("FEED_SIZE_DECIMALS", fmt.Sprintf("must be between 0 and %d", maxDecimals), c.Feed.SizeDecimals)
	}
	if c.Feed.PriceDecimals < 0 || c.Feed.PriceDecimals > maxDecimals {
		invalid("FEED_PRICE_DECIMALS", fmt.Sprintf("must be between 0 and %d", maxDecimals), c.Feed.PriceDecimals)
	}
	if c.Feed.SubscribeTimeout <= 0 {
		invalid("FEED_SUBSCRIBE_TIMEOUT", "must be positive", c.Feed.SubscribeTimeout)
	}
	if c.Feed.AnnounceTimeout <= 0 {
		invalid("FEED_ANNOUNCE_TIMEOUT", "must be positive", c.Feed.AnnounceTimeout)
	}
	if c.Postgres.URL == "" && c.Postgres.Host == "" {
		invalid("POSTGRES_HOST", "either POSTGRES_URL or POSTGRES_HOST is required", c.Postgres.Host)
	}
	if c.Redis.URL == "" && len(c.Redis.Addrs) == 0 {
		invalid("REDIS_ADDRS", "either REDIS_URL or REDIS_ADDRS is required", c.Redis.Addrs)
	}
	if c.RelayKafka.Enabled {
		if len(c.RelayKafka.Brokers) == 0 {
			invalid("RELAY_KAFKA_BROKERS", "required when the relay is enabled", c.RelayKafka.Brokers)
		}
		if c.RelayKafka.Topic == "" {
			invalid("RELAY_KAFKA_TOPIC", "required when the relay is enabled", c.RelayKafka.Topic)
		}
	}

	if baseErr.HasDetails() {
		return baseErr
	}
	return nil
}

// IsProduction reports whether the production profile is selected.
func (c *Config) IsProduction() bool {
	return c.App.Environment == environmentProduction
}

// LoggerOptions returns the logger settings selected by the APP_LOG_* keys.
func (c *Config) LoggerOptions() []logger.Options {
	return []logger.Options{
		logger.WithEnvironment(logger.Environment(c.App.Environment)),
		logger.WithLoggingLevel(logger.ParseLevel(c.App.LogLevel)),
		logger.WithTimeKey(c.App.LogTimeKey),
		logger.WithLevelKey(c.App.LogLevelKey),
		logger.WithCallerTraceSkip(c.App.LogCallerSkip),
	}
}
