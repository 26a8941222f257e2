package bootstrap

import (
	"github.com/muhammadchandra19/exchange/services/market-feed/internal/consumer"
)

// registerConsumer subscribes the enabled bus consumers.
func (b *Bootstrap) registerConsumer() {
	if b.Config.Feed.LogConsumer {
		b.Consumers = append(b.Consumers, consumer.NewLogConsumer(b.Bus, b.Logger))
	}
	if b.Config.RelayKafka.Enabled {
		b.Consumers = append(b.Consumers, consumer.NewKafkaRelay(b.Config.RelayKafka, b.Bus, b.Logger))
	}
}
