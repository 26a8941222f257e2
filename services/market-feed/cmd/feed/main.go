package main

import (
	"context"
	stderrors "errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/pkg/postgresql"
	"github.com/muhammadchandra19/exchange/pkg/redis"
	"golang.org/x/sync/errgroup"

	"github.com/muhammadchandra19/exchange/services/market-feed/internal/bootstrap"
	"github.com/muhammadchandra19/exchange/services/market-feed/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(cfg.LoggerOptions()...)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error(err, logger.Field{Key: "action", Value: "run"})
		_ = appLogger.Sync()
		os.Exit(1)
	}
	_ = appLogger.Sync()
}

func run(cfg *config.Config, appLogger logger.Interface) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appLogger.Info("Connecting to postgres", logger.Field{Key: "dsn", Value: cfg.Postgres.Redacted()})
	pg, err := postgresql.NewClient(ctx, cfg.Postgres)
	if err != nil {
		return err
	}

	redisClient := redis.NewClient(appLogger, &cfg.Redis)
	if err := connectRedis(ctx, redisClient, appLogger); err != nil {
		pg.Close()
		return err
	}

	app := (&bootstrap.Bootstrap{}).Init(bootstrap.BootstrapConfig{
		Config:   *cfg,
		Logger:   appLogger,
		Postgres: pg,
		Redis:    redisClient,
	})

	// consumers return once the closed bus is drained; the shutdown timeout
	// is their hard deadline
	consumerCtx, cancelConsumers := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelConsumers()

	// consumers read before Start, which waits for room on the bus while
	// announcing registrations
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range app.Consumers {
		g.Go(func() error {
			return c.Start(consumerCtx)
		})
	}

	if err := app.Start(gctx); err != nil {
		shutdown(app, cfg, appLogger)
		time.AfterFunc(cfg.Feed.ShutdownTimeout, cancelConsumers)
		return stderrors.Join(err, g.Wait(), app.StopConsumers())
	}

	appLogger.Info("Market feed started",
		logger.Field{Key: "app", Value: cfg.App.Name},
		logger.Field{Key: "environment", Value: cfg.App.Environment},
		logger.Field{Key: "http_port", Value: cfg.App.Port},
		logger.Field{Key: "channels", Value: len(app.Subscription.Channels())},
	)

	g.Go(func() error {
		if err := app.HTTP.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down market feed...")

		shutdown(app, cfg, appLogger)
		time.AfterFunc(cfg.Feed.ShutdownTimeout, cancelConsumers)
		return nil
	})

	err = g.Wait()
	if stopErr := app.StopConsumers(); stopErr != nil {
		appLogger.Error(stopErr, logger.Field{Key: "action", Value: "stop_consumers"})
	}
	if err != nil {
		return err
	}

	appLogger.Info("Market feed stopped")
	return nil
}

// connectRedis falls back to the client's backoff reconnect when the first
// attempt fails.
func connectRedis(ctx context.Context, client redis.Client, appLogger logger.Interface) error {
	err := client.Connect(ctx)
	if err == nil {
		return nil
	}

	appLogger.Warn("Redis unreachable, reconnecting", logger.Field{Key: "error", Value: err.Error()})
	if client.Reconnect(ctx) {
		return nil
	}
	return errors.NewTracer("redis unreachable after reconnect attempts").Wrap(err)
}

func shutdown(app *bootstrap.Bootstrap, cfg *config.Config, appLogger logger.Interface) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Feed.ShutdownTimeout)
	defer cancel()

	if err := app.Shutdown(ctx); err != nil {
		appLogger.Error(err, logger.Field{Key: "action", Value: "shutdown"})
	}
}
