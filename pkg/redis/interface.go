package redis

import (
	"context"
)

// Message is a payload received on a subscribed channel.
type Message struct {
	Channel string
	Payload []byte
}

// Client defines the interface for a Redis client.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=redis_mock
type Client interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error
	Reconnect(ctx context.Context) bool

	// NewSubscriber opens a pub/sub connection with no channels. Every
	// channel later subscribed through it shares that one connection.
	NewSubscriber(ctx context.Context) (Subscriber, error)
	Publish(ctx context.Context, channel string, message any) (int64, error)
}

// Subscriber multiplexes many channel subscriptions over a single connection.
type Subscriber interface {
	// Subscribe adds channel and waits until the server confirms it.
	Subscribe(ctx context.Context, channel string) error
	Unsubscribe(ctx context.Context, channels ...string) error
	// Messages returns the stream of received payloads in arrival order. The
	// channel is closed when the subscriber is closed or ctx is done.
	Messages(ctx context.Context) <-chan *Message
	Close() error
}
