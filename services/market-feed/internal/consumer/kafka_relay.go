package consumer

import (
	"context"

	jsoniter "github.com/json-iterator/go"
	"github.com/muhammadchandra19/exchange/pkg/broadcast"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/pkg/util"
	"github.com/segmentio/kafka-go"

	eventv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/event/v1"
	"github.com/muhammadchandra19/exchange/services/market-feed/pkg/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// registrationKeyPrefix keys registration updates, which have no broker
// channel.
const registrationKeyPrefix = "registrations"

// KafkaRelay forwards every update to a Kafka topic. Messages are keyed by
// channel name so the hash balancer keeps each channel on one partition.
type KafkaRelay struct {
	bus      *broadcast.Bus[eventv1.Update]
	consumer *broadcast.Consumer[eventv1.Update]
	writer   MessageWriter
	logger   logger.Interface
}

// NewKafkaRelay creates a relay writing to the configured topic and
// subscribes it to bus.
func NewKafkaRelay(cfg config.RelayKafkaConfig, bus *broadcast.Bus[eventv1.Update], logger logger.Interface) *KafkaRelay {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		MaxAttempts:  cfg.MaxRetries,
		RequiredAcks: kafka.RequireOne,
	}
	return newKafkaRelay(writer, bus, logger)
}

func newKafkaRelay(writer MessageWriter, bus *broadcast.Bus[eventv1.Update], logger logger.Interface) *KafkaRelay {
	return &KafkaRelay{
		bus:      bus,
		consumer: bus.Subscribe(),
		writer:   writer,
		logger:   logger,
	}
}

// Start relays updates until the bus is closed or ctx is done. A failed
// write is logged and the update is skipped.
func (r *KafkaRelay) Start(ctx context.Context) error {
	ctx = util.WithConsumerID(ctx, r.consumer.ID())
	r.logger.InfoContext(ctx, "starting kafka relay", logger.Field{
		Key:   "action",
		Value: "kafka_relay_start",
	})

	return drain(ctx, r.consumer, r.logger, r.relay)
}

func (r *KafkaRelay) relay(ctx context.Context, update eventv1.Update) {
	msg, err := toMessage(update)
	if err != nil {
		r.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "action",
			Value: "encode_update",
		})
		return
	}

	if err := r.writer.WriteMessages(ctx, msg); err != nil {
		if ctx.Err() != nil {
			return
		}
		r.logger.ErrorContext(util.WithChannel(ctx, string(msg.Key)), err, logger.Field{
			Key:   "action",
			Value: "write_message",
		})
	}
}

// Stop releases the bus subscription and flushes the writer.
func (r *KafkaRelay) Stop() error {
	r.bus.Unsubscribe(r.consumer)
	return r.writer.Close()
}

func toMessage(update eventv1.Update) (kafka.Message, error) {
	value, err := json.Marshal(update)
	if err != nil {
		return kafka.Message{}, err
	}

	key := update.Channel
	if key == "" {
		key = registrationKeyPrefix + ":" + update.MarketID().String()
	}

	return kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(update.Kind)},
		},
	}, nil
}
