package consumer

import (
	"context"

	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -source=interface.go -destination=mock/consumer_mock.go -package=mock

// Consumer drains the broadcast bus until it is closed or ctx is done.
type Consumer interface {
	Start(ctx context.Context) error
	Stop() error
}

// MessageWriter is the part of *kafka.Writer the relay needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
