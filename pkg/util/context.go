package util

import (
	"context"
)

type key string

const (
	channelKey    = key("channel")
	consumerIDKey = key("consumer-id")
	marketIDKey   = key("market-id")
)

// WithChannel returns a context carrying the broker channel name being processed.
func WithChannel(ctx context.Context, channel string) context.Context {
	return context.WithValue(ctx, channelKey, channel)
}

// WithConsumerID returns a context carrying a bus consumer id.
func WithConsumerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, consumerIDKey, id)
}

// WithMarketID returns a context carrying a market id.
func WithMarketID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, marketIDKey, id)
}

// GetChannel returns the channel name from context
// will return empty string if not present
func GetChannel(ctx context.Context) string {
	channel, _ := ctx.Value(channelKey).(string)
	return channel
}

// GetConsumerID returns the consumer id from context
// will return empty string if not present
func GetConsumerID(ctx context.Context) string {
	id, _ := ctx.Value(consumerIDKey).(string)
	return id
}

// GetMarketID returns the market id from context and whether it was set.
func GetMarketID(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(marketIDKey).(uint64)
	return id, ok
}

// Fields returns the key-value pairs this package has set into ctx. Keys that
// were never set are omitted.
func Fields(ctx context.Context) map[string]interface{} {
	fields := make(map[string]interface{})
	if channel := GetChannel(ctx); channel != "" {
		fields["channel"] = channel
	}
	if id := GetConsumerID(ctx); id != "" {
		fields["consumer_id"] = id
	}
	if id, ok := GetMarketID(ctx); ok {
		fields["market_id"] = id
	}
	return fields
}
