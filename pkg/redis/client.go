package redis

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type client struct {
	logger  logger.Interface
	config  *Config
	cmdable redis.UniversalClient
}

// NewClient creates a new Redis client with the provided logger and configuration.
func NewClient(logger logger.Interface, config *Config) Client {
	return &client{
		logger: logger,
		config: config,
	}
}

func validate(config *Config) error {
	if config == nil {
		return errors.NewErrorDetails("Redis config is nil", string(errors.RedisConfigError), "connect")
	}

	if len(config.Addrs) == 0 && config.URL == "" {
		return errors.NewErrorDetails("Redis addresses are empty", string(errors.RedisConfigError), "connect")
	}

	if config.Mode != Standalone && config.Mode != Cluster {
		return errors.NewErrorDetails("Invalid Redis mode", string(errors.RedisConfigError), "connect")
	}

	if config.ConnectTimeout <= 0 {
		return errors.NewErrorDetails("Invalid Redis connect timeout", string(errors.RedisConfigError), "connect")
	}

	if config.PoolSize <= 0 {
		return errors.NewErrorDetails("Invalid Redis pool size", string(errors.RedisConfigError), "connect")
	}

	if config.MaxIdleConns < 0 {
		return errors.NewErrorDetails("Invalid Redis max idle connections", string(errors.RedisConfigError), "connect")
	}

	if config.ConnMaxLifetime <= 0 {
		return errors.NewErrorDetails("Invalid Redis connection max lifetime", string(errors.RedisConfigError), "connect")
	}

	if config.ConnMaxIdleTime <= 0 {
		return errors.NewErrorDetails("Invalid Redis connection max idle time", string(errors.RedisConfigError), "connect")
	}

	if config.PoolTimeout <= 0 {
		return errors.NewErrorDetails("Invalid Redis pool timeout", string(errors.RedisConfigError), "connect")
	}

	if config.MaxRetries < 0 {
		return errors.NewErrorDetails("Invalid Redis max retries", string(errors.RedisConfigError), "connect")
	}

	if config.MinRetryBackoff < 0 {
		return errors.NewErrorDetails("Invalid Redis minimum retry backoff", string(errors.RedisConfigError), "connect")
	}

	if config.MaxRetryBackoff < 0 {
		return errors.NewErrorDetails("Invalid Redis maximum retry backoff", string(errors.RedisConfigError), "connect")
	}

	if config.SubscribeTimeout <= 0 {
		return errors.NewErrorDetails("Invalid Redis subscribe timeout", string(errors.RedisConfigError), "connect")
	}

	return nil
}

// standaloneOptions builds the single-node options, starting from URL when
// one is configured.
func standaloneOptions(config *Config) (*redis.Options, error) {
	opts := &redis.Options{
		Addr:     firstAddr(config.Addrs),
		Username: config.Username,
		Password: config.Password,
		DB:       config.DB,
	}
	if config.URL != "" {
		parsed, err := redis.ParseURL(config.URL)
		if err != nil {
			return nil, errors.NewErrorDetails("Invalid Redis URL", string(errors.RedisConfigError), "url")
		}
		opts = parsed
	}

	opts.MaxRetries = config.MaxRetries
	opts.MinRetryBackoff = config.MinRetryBackoff
	opts.MaxRetryBackoff = config.MaxRetryBackoff
	opts.DialTimeout = config.ConnectTimeout
	opts.ReadTimeout = config.ConnectTimeout
	opts.WriteTimeout = config.ConnectTimeout
	opts.PoolSize = config.PoolSize
	opts.MinIdleConns = config.MinIdleConns
	opts.MaxIdleConns = config.MaxIdleConns
	opts.ConnMaxLifetime = config.ConnMaxLifetime
	opts.ConnMaxIdleTime = config.ConnMaxIdleTime
	opts.PoolTimeout = config.PoolTimeout

	return opts, nil
}

func firstAddr(addrs []string) string {
	if len(addrs) == 0 {
		return ""
	}
	return addrs[0]
}

func (c *client) Connect(ctx context.Context) error {
	if err := validate(c.config); err != nil {
		return err
	}
	// a failed earlier attempt leaves its pool behind
	if c.cmdable != nil {
		_ = c.cmdable.Close()
	}

	switch c.config.Mode {
	case Standalone:
		opts, err := standaloneOptions(c.config)
		if err != nil {
			return err
		}
		c.cmdable = redis.NewClient(opts)
	case Cluster:
		c.cmdable = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:           c.config.Addrs,
			Username:        c.config.Username,
			Password:        c.config.Password,
			MaxRetries:      c.config.MaxRetries,
			MinRetryBackoff: c.config.MinRetryBackoff,
			MaxRetryBackoff: c.config.MaxRetryBackoff,
			DialTimeout:     c.config.ConnectTimeout,
			ReadTimeout:     c.config.ConnectTimeout,
			WriteTimeout:    c.config.ConnectTimeout,
			PoolSize:        c.config.PoolSize,
			MinIdleConns:    c.config.MinIdleConns,
			MaxIdleConns:    c.config.MaxIdleConns,
			ConnMaxLifetime: c.config.ConnMaxLifetime,
			ConnMaxIdleTime: c.config.ConnMaxIdleTime,
			PoolTimeout:     c.config.PoolTimeout,
		})
	default:
		return errors.NewErrorDetails("Unsupported Redis mode", string(errors.RedisConnectionError), "connect")
	}

	if err := c.cmdable.Ping(ctx).Err(); err != nil {
		return errors.NewTracerWithCode(errors.RedisConnectionError, "Failed to connect to Redis").Wrap(err)
	}
	return nil
}

// Reconnect retries Connect with exponential backoff and jitter. It returns
// true once a connection is established.
func (c *client) Reconnect(ctx context.Context) bool {
	for i := range c.config.ReconnectMaxRetries {
		totalDelay := backoffDelay(c.config.MinRetryBackoff, c.config.MaxRetryBackoff, i) +
			time.Duration(rand.IntN(1000))*time.Millisecond

		c.logger.Info("Reconnecting to Redis", logger.Field{
			Key:   "attempt",
			Value: i + 1,
		}, logger.Field{
			Key:   "delay",
			Value: totalDelay,
		})

		select {
		case <-ctx.Done():
			c.logger.Info("Reconnect cancelled", logger.Field{
				Key:   "reason",
				Value: ctx.Err(),
			})
			return false
		case <-time.After(totalDelay):
			connectCtx, cancel := context.WithTimeout(ctx, c.config.ConnectTimeout)
			err := c.Connect(connectCtx)
			cancel()
			if err == nil {
				c.logger.Info("Reconnected to Redis successfully", logger.Field{
					Key:   "attempt",
					Value: i + 1,
				})
				return true
			}
			c.logger.Error(errors.TracerFromError(err), logger.Field{
				Key:   "attempt",
				Value: i + 1,
			})
		}
	}

	return false
}

// backoffDelay returns base*2^attempt capped at maxDelay.
func backoffDelay(base, maxDelay time.Duration, attempt int) time.Duration {
	return min(base*time.Duration(math.Pow(2, float64(attempt))), maxDelay)
}

func (c *client) Disconnect(ctx context.Context) error {
	if c.cmdable == nil {
		return nil
	}
	if err := c.cmdable.Close(); err != nil {
		return errors.NewTracerWithCode(errors.RedisDisconnectionError, "Failed to disconnect from Redis").Wrap(err)
	}
	return nil
}

func (c *client) Ping(ctx context.Context) error {
	if c.cmdable == nil {
		return errors.NewErrorDetails("Redis client is not connected", string(errors.RedisPingError), "ping")
	}
	if err := c.cmdable.Ping(ctx).Err(); err != nil {
		return errors.NewTracerWithCode(errors.RedisPingError, "Failed to ping Redis").Wrap(err)
	}
	return nil
}

func (c *client) NewSubscriber(ctx context.Context) (Subscriber, error) {
	if c.cmdable == nil {
		return nil, errors.NewErrorDetails("Redis client is not connected", string(errors.RedisSubscribeError), "subscribe")
	}

	// no channels yet: the connection is opened by the first Subscribe
	return newSubscriber(c.cmdable.Subscribe(ctx), c.config, c.logger), nil
}

func (c *client) Publish(ctx context.Context, channel string, message any) (int64, error) {
	if c.cmdable == nil {
		return 0, errors.NewErrorDetails("Redis client is not connected", string(errors.RedisPublishError), "publish")
	}

	published, err := c.cmdable.Publish(ctx, channel, message).Result()
	if err != nil {
		return 0, errors.NewTracerWithCode(errors.RedisPublishError, "Failed to publish to Redis").Wrap(err)
	}
	return published, nil
}
