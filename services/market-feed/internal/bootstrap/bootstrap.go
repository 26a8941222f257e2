package bootstrap

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/muhammadchandra19/exchange/pkg/broadcast"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/pkg/postgresql"
	"github.com/muhammadchandra19/exchange/pkg/redis"

	"github.com/muhammadchandra19/exchange/services/market-feed/internal/consumer"
	eventv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/event/v1"
	"github.com/muhammadchandra19/exchange/services/market-feed/internal/usecase/subscription"
	"github.com/muhammadchandra19/exchange/services/market-feed/pkg/config"
)

// Bootstrap is the bootstrap for the market feed service.
type Bootstrap struct {
	Config     config.Config
	Logger     logger.Interface
	Repository Repository
	Usecase    Usecase
	Consumers  []consumer.Consumer
	HTTP       *http.Server

	Bus          *broadcast.Bus[eventv1.Update]
	Subscription *subscription.Subscription

	Postgres postgresql.PostgreSQLClient
	Redis    redis.Client
}

// BootstrapConfig is the config for the bootstrap.
type BootstrapConfig struct {
	Config   config.Config
	Logger   logger.Interface
	Postgres postgresql.PostgreSQLClient
	Redis    redis.Client
}

// Init initializes the bootstrap. Consumers subscribe to the bus here, so
// they see every update published by Start.
func (b *Bootstrap) Init(config BootstrapConfig) *Bootstrap {
	b.Config = config.Config
	b.Logger = config.Logger
	b.Postgres = config.Postgres
	b.Redis = config.Redis
	b.Bus = broadcast.New[eventv1.Update](b.Config.Feed.BusCapacity)

	b.registerRepository()
	b.registerUsecase()
	b.registerConsumer()
	b.registerHTTP()

	return b
}

// Start loads the market snapshot, announces the stored registrations and
// subscribes every feed channel. Any failure aborts startup.
//
// The announcement waits for room on the bus, so the consumers subscribed in
// Init must already be running.
func (b *Bootstrap) Start(ctx context.Context) error {
	snapshot, err := b.Usecase.Registry.LoadMarkets(ctx)
	if err != nil {
		return err
	}

	if err := b.announce(ctx); err != nil {
		return err
	}

	sub, err := b.Usecase.Subscription.SubscribeAll(ctx, snapshot)
	if err != nil {
		return err
	}
	b.Subscription = sub

	return nil
}

func (b *Bootstrap) announce(ctx context.Context) error {
	if b.Config.Feed.AnnounceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Config.Feed.AnnounceTimeout)
		defer cancel()
	}

	_, err := b.Usecase.Registry.Announce(ctx, b.Bus)
	return err
}

// Shutdown stops ingestion first, then closes the bus so consumers drain
// their backlog and return, then releases the HTTP server and the store
// connections. Consumers are released separately by StopConsumers once they
// have returned.
func (b *Bootstrap) Shutdown(ctx context.Context) error {
	var errs []error

	if b.Subscription != nil {
		if err := b.Subscription.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	b.Bus.Close()

	if err := b.HTTP.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	if err := b.Redis.Disconnect(ctx); err != nil {
		errs = append(errs, err)
	}
	b.Postgres.Close()

	return stderrors.Join(errs...)
}

// StopConsumers releases every consumer's bus subscription and transport.
func (b *Bootstrap) StopConsumers() error {
	var errs []error
	for _, c := range b.Consumers {
		if err := c.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
