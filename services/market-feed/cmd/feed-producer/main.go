package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/pkg/redis"
	"github.com/shopspring/decimal"

	marketv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/market/v1"
)

var errNoMarkets = errors.NewErrorDetails("at least one market id is required", string(errors.ConfigError), "markets")

func main() {
	var (
		addr          = flag.String("redis-addr", "localhost:6379", "Redis address")
		markets       = flag.String("markets", "1", "Market ids to publish for (comma-separated)")
		count         = flag.Int("count", 1000, "Number of events to publish")
		delay         = flag.Duration("delay", 100*time.Millisecond, "Delay between events")
		sizeDecimals  = flag.Int("size-decimals", 0, "Decimal places of generated sizes")
		priceDecimals = flag.Int("price-decimals", 0, "Decimal places of generated prices")
		basePrice     = flag.String("base-price", "3945", "Base price of generated events")
		invalidRatio  = flag.Float64("invalid-ratio", 0, "Share of events carrying a sub-unit price")
		seed          = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed")
	)
	flag.Parse()

	appLogger, err := logger.NewLogger(logger.WithEnvironment(logger.Development))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	ids, err := parseMarkets(*markets)
	if err != nil {
		log.Fatalf("Invalid markets: %v", err)
	}
	price, err := decimal.NewFromString(*basePrice)
	if err != nil {
		log.Fatalf("Invalid base price: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := redis.DefaultConfig()
	cfg.Addrs = []string{*addr}
	client := redis.NewClient(appLogger, cfg)
	if err := client.Connect(ctx); err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer client.Disconnect(context.Background())

	gen := newGenerator(*seed, int32(*sizeDecimals), int32(*priceDecimals), price, *invalidRatio)

	appLogger.Info("Publishing synthetic feed",
		logger.Field{Key: "markets", Value: ids},
		logger.Field{Key: "count", Value: *count},
		logger.Field{Key: "delay", Value: delay.String()},
	)

	sent := 0
	for i := 0; i < *count && ctx.Err() == nil; i++ {
		channel, payload, err := gen.next(ids[i%len(ids)], time.Now().UTC())
		if err != nil {
			appLogger.Error(err, logger.Field{Key: "action", Value: "generate"})
			continue
		}

		receivers, err := client.Publish(ctx, channel, payload)
		if err != nil {
			appLogger.Error(err, logger.Field{Key: "channel", Value: channel})
			continue
		}
		sent++

		// progress every 100 events and on the last one
		if sent%100 == 0 || i == *count-1 {
			appLogger.Info("Published event",
				logger.Field{Key: "sent", Value: sent},
				logger.Field{Key: "channel", Value: channel},
				logger.Field{Key: "receivers", Value: receivers},
			)
		}

		if i < *count-1 {
			select {
			case <-ctx.Done():
			case <-time.After(*delay):
			}
		}
	}

	appLogger.Info("Done", logger.Field{Key: "sent", Value: sent})
}

func parseMarkets(s string) ([]marketv1.MarketID, error) {
	var ids []marketv1.MarketID
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := marketv1.ParseMarketID(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, errNoMarkets
	}
	return ids, nil
}
