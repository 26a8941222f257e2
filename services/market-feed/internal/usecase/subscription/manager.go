package subscription

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/pkg/redis"
	"github.com/muhammadchandra19/exchange/pkg/util"

	channelv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/channel/v1"
	marketv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/market/v1"
	"github.com/muhammadchandra19/exchange/services/market-feed/internal/usecase/decoder"
)

// Options configures the subscription manager.
type Options struct {
	// SubscribeTimeout bounds every single channel subscribe call. Zero
	// leaves it to the caller's context.
	SubscribeTimeout time.Duration
}

type manager struct {
	client  redis.Client
	decoder decoder.Decoder
	bus     Publisher
	logger  logger.Interface
	opts    Options
}

// NewManager creates a new subscription manager.
func NewManager(client redis.Client, dec decoder.Decoder, bus Publisher, logger logger.Interface, opts Options) *manager {
	return &manager{
		client:  client,
		decoder: dec,
		bus:     bus,
		logger:  logger,
		opts:    opts,
	}
}

// SubscribeAll subscribes every channel kind of every market in markets over
// one shared broker connection and starts the ingestion task. The first
// failing channel aborts the whole call and releases the connection.
func (m *manager) SubscribeAll(ctx context.Context, markets marketv1.Snapshot) (*Subscription, error) {
	channels := channelv1.Names(markets)
	sub := &Subscription{
		channels: channels,
		decoder:  m.decoder,
		bus:      m.bus,
		logger:   m.logger,
		done:     make(chan struct{}),
	}

	if len(channels) == 0 {
		close(sub.done)
		return sub, nil
	}

	subscriber, err := m.client.NewSubscriber(ctx)
	if err != nil {
		return nil, &SubscriptionError{Err: err}
	}

	for _, channel := range channels {
		if err := m.subscribe(ctx, subscriber, channel); err != nil {
			if closeErr := subscriber.Close(); closeErr != nil {
				m.logger.ErrorContext(ctx, closeErr, logger.Field{
					Key:   "action",
					Value: "close_subscriber",
				})
			}
			return nil, &SubscriptionError{Channel: channel, Err: err}
		}

		m.logger.InfoContext(util.WithChannel(ctx, channel), "Subscribed to channel", logger.Field{
			Key:   "action",
			Value: "subscribe",
		})
	}

	ingestCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sub.subscriber = subscriber
	sub.cancel = cancel

	go sub.ingest(ingestCtx, subscriber.Messages(ingestCtx))

	return sub, nil
}

func (m *manager) subscribe(ctx context.Context, subscriber redis.Subscriber, channel string) error {
	if m.opts.SubscribeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.opts.SubscribeTimeout)
		defer cancel()
	}
	return subscriber.Subscribe(ctx, channel)
}

// Stats is a point-in-time view of the ingestion counters.
type Stats struct {
	Channels  int    `json:"channels"`
	Received  uint64 `json:"received"`
	Published uint64 `json:"published"`
	Dropped   uint64 `json:"dropped"`
}

// Subscription is the handle of an active channel set. It owns the ingestion
// task that decodes every received payload and publishes it in arrival order.
type Subscription struct {
	channels   []string
	subscriber redis.Subscriber
	decoder    decoder.Decoder
	bus        Publisher
	logger     logger.Interface

	received  atomic.Uint64
	published atomic.Uint64
	dropped   atomic.Uint64

	cancel    context.CancelFunc
	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

// Channels returns the subscribed channel names.
func (s *Subscription) Channels() []string {
	out := make([]string, len(s.channels))
	copy(out, s.channels)
	return out
}

// Done is closed once the ingestion task has returned.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Stats returns the ingestion counters.
func (s *Subscription) Stats() Stats {
	return Stats{
		Channels:  len(s.channels),
		Received:  s.received.Load(),
		Published: s.published.Load(),
		Dropped:   s.dropped.Load(),
	}
}

// Close unsubscribes every channel, releases the broker connection and waits
// for the ingestion task to publish what it already received. It is safe to
// call more than once.
func (s *Subscription) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		if s.subscriber == nil {
			return
		}

		if err := s.subscriber.Unsubscribe(ctx, s.channels...); err != nil {
			s.logger.WarnContext(ctx, "Failed to unsubscribe channels", logger.Field{
				Key:   "error",
				Value: err.Error(),
			})
		}
		s.closeErr = s.subscriber.Close()
		s.cancel()
	})

	select {
	case <-s.done:
		return s.closeErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Subscription) ingest(ctx context.Context, messages <-chan *redis.Message) {
	defer close(s.done)

	s.logger.InfoContext(ctx, "Starting ingestion", logger.Field{
		Key:   "channels",
		Value: len(s.channels),
	})

	for msg := range messages {
		s.received.Add(1)
		s.handle(ctx, msg)
	}

	s.logger.InfoContext(ctx, "Ingestion stopped", logger.Field{
		Key:   "received",
		Value: s.received.Load(),
	})
}

func (s *Subscription) handle(ctx context.Context, msg *redis.Message) {
	ctx = util.WithChannel(ctx, msg.Channel)

	update, err := s.decoder.Decode(msg.Channel, msg.Payload)
	if err != nil {
		s.dropped.Add(1)
		s.logger.ErrorContext(ctx, err,
			logger.Field{Key: "action", Value: "decode"},
			logger.Field{Key: "payload", Value: string(msg.Payload)},
		)
		return
	}

	if _, ok := s.bus.Publish(update); !ok {
		s.dropped.Add(1)
		s.logger.WarnContext(ctx, "Bus closed, update dropped", logger.Field{
			Key:   "action",
			Value: "publish",
		})
		return
	}
	s.published.Add(1)
}
