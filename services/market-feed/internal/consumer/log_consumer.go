package consumer

import (
	"context"
	stderrors "errors"

	"github.com/muhammadchandra19/exchange/pkg/broadcast"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/pkg/util"

	eventv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/event/v1"
)

// LogConsumer logs every update flowing through the bus.
type LogConsumer struct {
	bus      *broadcast.Bus[eventv1.Update]
	consumer *broadcast.Consumer[eventv1.Update]
	logger   logger.Interface
}

// NewLogConsumer subscribes to bus. Only updates published after this call
// are logged.
func NewLogConsumer(bus *broadcast.Bus[eventv1.Update], logger logger.Interface) *LogConsumer {
	return &LogConsumer{
		bus:      bus,
		consumer: bus.Subscribe(),
		logger:   logger,
	}
}

// Start logs updates until the bus is closed or ctx is done.
func (c *LogConsumer) Start(ctx context.Context) error {
	ctx = util.WithConsumerID(ctx, c.consumer.ID())
	c.logger.InfoContext(ctx, "starting log consumer", logger.Field{
		Key:   "action",
		Value: "log_consumer_start",
	})

	return drain(ctx, c.consumer, c.logger, func(ctx context.Context, update eventv1.Update) {
		c.logger.InfoContext(util.WithChannel(ctx, update.Channel), "Received update",
			logger.Field{Key: "kind", Value: update.Kind},
			logger.Field{Key: "market_id", Value: update.MarketID()},
		)
	})
}

// Stop releases the bus subscription.
func (c *LogConsumer) Stop() error {
	c.bus.Unsubscribe(c.consumer)
	return nil
}

// drain feeds handle with every update of consumer. Lag is logged and
// delivery continues; a closed bus or a done ctx ends the loop without error.
func drain(
	ctx context.Context,
	consumer *broadcast.Consumer[eventv1.Update],
	log logger.Interface,
	handle func(ctx context.Context, update eventv1.Update),
) error {
	for {
		update, err := consumer.Next(ctx)
		if err == nil {
			handle(ctx, update)
			continue
		}

		var lagged *broadcast.LaggedError
		switch {
		case stderrors.As(err, &lagged):
			log.WarnContext(ctx, "Consumer lagged behind the feed", logger.Field{
				Key:   "skipped",
				Value: lagged.Skipped,
			})
		case stderrors.Is(err, broadcast.ErrClosed):
			log.InfoContext(ctx, "Bus closed, consumer stopping", logger.Field{
				Key:   "action",
				Value: "consumer_stop",
			})
			return nil
		case ctx.Err() != nil:
			return nil
		default:
			return err
		}
	}
}
