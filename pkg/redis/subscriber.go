package redis

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// pubSubConn is the part of *redis.PubSub the subscriber relies on.
type pubSubConn interface {
	Subscribe(ctx context.Context, channels ...string) error
	Unsubscribe(ctx context.Context, channels ...string) error
	Receive(ctx context.Context) (interface{}, error)
	Close() error
}

// subscriber owns one pub/sub connection. A single reader goroutine receives
// everything from it: subscription confirmations wake pending Subscribe calls,
// payloads are forwarded to the messages channel in arrival order.
type subscriber struct {
	conn   pubSubConn
	config *Config
	logger logger.Interface

	mu        sync.Mutex
	confirmed map[string]bool
	waiters   map[string][]chan struct{}

	messages  chan *Message
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
	closeErr  error
}

func newSubscriber(conn pubSubConn, config *Config, log logger.Interface) *subscriber {
	bufferSize := config.MessageBufferSize
	if bufferSize <= 0 {
		bufferSize = DefaultConfig().MessageBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &subscriber{
		conn:      conn,
		config:    config,
		logger:    log,
		confirmed: make(map[string]bool),
		waiters:   make(map[string][]chan struct{}),
		messages:  make(chan *Message, bufferSize),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

func (s *subscriber) Subscribe(ctx context.Context, channel string) error {
	s.start()

	confirmed := s.waitFor(channel)
	if err := s.conn.Subscribe(ctx, channel); err != nil {
		return errors.NewTracerWithCode(errors.RedisSubscribeError, "Failed to subscribe to channel "+channel).Wrap(err)
	}

	// a non-positive timeout leaves the wait to ctx
	var expired <-chan time.Time
	if s.config.SubscribeTimeout > 0 {
		timer := time.NewTimer(s.config.SubscribeTimeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-confirmed:
		return nil
	case <-ctx.Done():
		return errors.NewTracerWithCode(errors.RedisSubscribeError, "Subscription to "+channel+" cancelled").Wrap(ctx.Err())
	case <-expired:
		return errors.NewErrorDetails("Subscription was not confirmed in time", string(errors.RedisSubscribeError), channel)
	case <-s.done:
		return errors.NewErrorDetails("Subscriber is closed", string(errors.RedisSubscribeError), channel)
	}
}

func (s *subscriber) Unsubscribe(ctx context.Context, channels ...string) error {
	if err := s.conn.Unsubscribe(ctx, channels...); err != nil {
		return errors.NewTracerWithCode(errors.RedisUnsubscribeError, "Failed to unsubscribe").Wrap(err)
	}
	return nil
}

func (s *subscriber) Messages(ctx context.Context) <-chan *Message {
	s.start()

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		}
	}()

	return s.messages
}

func (s *subscriber) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.cancel()
		if err := s.conn.Close(); err != nil {
			s.closeErr = errors.NewTracerWithCode(errors.RedisDisconnectionError, "Failed to close subscriber").Wrap(err)
		}
	})
	return s.closeErr
}

// waitFor registers interest in the confirmation of channel. The returned
// channel is already closed when channel is confirmed.
func (s *subscriber) waitFor(channel string) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan struct{})
	if s.confirmed[channel] {
		close(ch)
		return ch
	}
	s.waiters[channel] = append(s.waiters[channel], ch)
	return ch
}

func (s *subscriber) confirm(channel string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.confirmed[channel] = true
	for _, ch := range s.waiters[channel] {
		close(ch)
	}
	delete(s.waiters, channel)
}

func (s *subscriber) forget(channel string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.confirmed, channel)
}

func (s *subscriber) start() {
	s.startOnce.Do(func() {
		go s.receive()
	})
}

func (s *subscriber) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *subscriber) receive() {
	defer close(s.messages)

	attempt := 0
	for {
		received, err := s.conn.Receive(s.ctx)
		if err != nil {
			if s.closed() || stderrors.Is(err, redis.ErrClosed) {
				return
			}

			delay := backoffDelay(s.config.MinRetryBackoff, s.config.MaxRetryBackoff, attempt)
			attempt++
			s.logger.Warn("Redis subscriber receive failed",
				logger.Field{Key: "error", Value: err.Error()},
				logger.Field{Key: "attempt", Value: attempt},
				logger.Field{Key: "delay", Value: delay},
			)

			select {
			case <-s.done:
				return
			case <-time.After(delay):
			}
			continue
		}
		attempt = 0

		switch m := received.(type) {
		case *redis.Subscription:
			switch m.Kind {
			case "subscribe":
				s.confirm(m.Channel)
			case "unsubscribe":
				s.forget(m.Channel)
			}
		case *redis.Message:
			select {
			case s.messages <- &Message{Channel: m.Channel, Payload: []byte(m.Payload)}:
			case <-s.done:
				return
			}
		case *redis.Pong:
		default:
			s.logger.Debug("Ignoring unexpected pub/sub reply", logger.Field{Key: "reply", Value: received})
		}
	}
}
