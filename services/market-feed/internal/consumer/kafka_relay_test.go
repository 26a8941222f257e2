package consumer

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/muhammadchandra19/exchange/pkg/broadcast"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mockConsumer "github.com/muhammadchandra19/exchange/services/market-feed/internal/consumer/mock"
	eventv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/event/v1"
)

func TestKafkaRelay_Start(t *testing.T) {
	registration := eventv1.NewMarketRegistrationUpdate(eventv1.MarketRegistrationEvent{MarketID: 3, LotSize: 1})

	testCases := []struct {
		name     string
		updates  []eventv1.Update
		mockFn   func(writer *mockConsumer.MockMessageWriter, written *[]kafka.Message)
		assertFn func(t *testing.T, written []kafka.Message)
	}{
		{
			name:    "keys messages by channel",
			updates: []eventv1.Update{makerUpdate("orders:5", 1), registration},
			mockFn: func(writer *mockConsumer.MockMessageWriter, written *[]kafka.Message) {
				writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, msgs ...kafka.Message) error {
						*written = append(*written, msgs...)
						return nil
					}).Times(2)
			},
			assertFn: func(t *testing.T, written []kafka.Message) {
				require.Len(t, written, 2)

				assert.Equal(t, "orders:5", string(written[0].Key))
				assert.Equal(t, []kafka.Header{{Key: "kind", Value: []byte("maker")}}, written[0].Headers)

				var decoded eventv1.Update
				require.NoError(t, json.Unmarshal(written[0].Value, &decoded))
				require.NotNil(t, decoded.Maker)
				assert.Equal(t, uint64(1), decoded.Maker.MarketOrderID)

				assert.Equal(t, "registrations:3", string(written[1].Key))
			},
		},
		{
			name:    "failed write is skipped",
			updates: []eventv1.Update{makerUpdate("orders:5", 1), makerUpdate("orders:5", 2)},
			mockFn: func(writer *mockConsumer.MockMessageWriter, written *[]kafka.Message) {
				writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(stderrors.New("leader not available"))
				writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, msgs ...kafka.Message) error {
						*written = append(*written, msgs...)
						return nil
					})
			},
			assertFn: func(t *testing.T, written []kafka.Message) {
				require.Len(t, written, 1)

				var decoded eventv1.Update
				require.NoError(t, json.Unmarshal(written[0].Value, &decoded))
				assert.Equal(t, uint64(2), decoded.Maker.MarketOrderID)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			writer := mockConsumer.NewMockMessageWriter(ctrl)

			var written []kafka.Message
			tc.mockFn(writer, &written)

			bus := broadcast.New[eventv1.Update](4)
			relay := newKafkaRelay(writer, bus, logger.NewNop())

			for _, u := range tc.updates {
				bus.Publish(u)
			}
			bus.Close()

			require.NoError(t, relay.Start(context.Background()))
			tc.assertFn(t, written)
		})
	}
}

func TestKafkaRelay_Stop(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mockConsumer.NewMockMessageWriter(ctrl)
	writer.EXPECT().Close().Return(nil)

	bus := broadcast.New[eventv1.Update](4)
	relay := newKafkaRelay(writer, bus, logger.NewNop())
	assert.Equal(t, 1, bus.Stats().Subscribers)

	require.NoError(t, relay.Stop())
	assert.Equal(t, 0, bus.Stats().Subscribers)
}
