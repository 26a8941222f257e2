package registry

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/muhammadchandra19/exchange/pkg/broadcast"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	mockLogger "github.com/muhammadchandra19/exchange/pkg/logger/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	eventv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/event/v1"
	marketv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/market/v1"
	"github.com/muhammadchandra19/exchange/services/market-feed/internal/infrastructure/postgresql/market"
	mockMarket "github.com/muhammadchandra19/exchange/services/market-feed/internal/infrastructure/postgresql/market/mock"
)

func TestUsecase_LoadMarkets(t *testing.T) {
	apt := marketv1.Coin{Symbol: "APT", Name: "Aptos", Decimals: 8}
	usdc := marketv1.Coin{Symbol: "USDC", Name: "USD Coin", Decimals: 6}

	testCases := []struct {
		name     string
		mockFn   func(repo *mockMarket.MockMarketRepository, log *mockLogger.MockInterface)
		assertFn func(t *testing.T, snapshot marketv1.Snapshot, err error)
	}{
		{
			name: "logs every loaded market",
			mockFn: func(repo *mockMarket.MockMarketRepository, log *mockLogger.MockInterface) {
				repo.EXPECT().LoadMarketIDs(gomock.Any()).Return(marketv1.NewSnapshot(1, 2), nil)
				repo.EXPECT().ListMarkets(gomock.Any()).Return([]marketv1.Market{
					{ID: 1, Name: "APT-USDC", Base: &apt, Quote: usdc},
					{ID: 2, Name: "APT-PERP", Quote: usdc},
					{ID: 3, Name: "registered after snapshot", Quote: usdc},
				}, nil)

				log.EXPECT().InfoContext(gomock.Any(), "Loaded market registry", logger.Field{Key: "markets", Value: 2})
				log.EXPECT().InfoContext(gomock.Any(), "Registered market", gomock.Any(), gomock.Any(), gomock.Any()).Times(2)
			},
			assertFn: func(t *testing.T, snapshot marketv1.Snapshot, err error) {
				require.NoError(t, err)
				assert.Equal(t, []marketv1.MarketID{1, 2}, snapshot.IDs())
			},
		},
		{
			name: "empty registry is degraded, not an error",
			mockFn: func(repo *mockMarket.MockMarketRepository, log *mockLogger.MockInterface) {
				repo.EXPECT().LoadMarketIDs(gomock.Any()).Return(marketv1.NewSnapshot(), nil)
				log.EXPECT().WarnContext(gomock.Any(), gomock.Any(), gomock.Any())
			},
			assertFn: func(t *testing.T, snapshot marketv1.Snapshot, err error) {
				require.NoError(t, err)
				assert.True(t, snapshot.IsEmpty())
			},
		},
		{
			name: "market details failure keeps the snapshot",
			mockFn: func(repo *mockMarket.MockMarketRepository, log *mockLogger.MockInterface) {
				repo.EXPECT().LoadMarketIDs(gomock.Any()).Return(marketv1.NewSnapshot(7), nil)
				repo.EXPECT().ListMarkets(gomock.Any()).Return(nil, stderrors.New("timeout"))

				log.EXPECT().InfoContext(gomock.Any(), gomock.Any(), gomock.Any())
				log.EXPECT().WarnContext(gomock.Any(), "Failed to list market details", gomock.Any())
			},
			assertFn: func(t *testing.T, snapshot marketv1.Snapshot, err error) {
				require.NoError(t, err)
				assert.True(t, snapshot.Contains(7))
			},
		},
		{
			name: "store error is returned",
			mockFn: func(repo *mockMarket.MockMarketRepository, log *mockLogger.MockInterface) {
				repo.EXPECT().LoadMarketIDs(gomock.Any()).Return(marketv1.Snapshot{}, &market.StoreError{
					Op:  "load market ids",
					Err: stderrors.New("connection refused"),
				})
			},
			assertFn: func(t *testing.T, snapshot marketv1.Snapshot, err error) {
				var storeErr *market.StoreError
				require.True(t, stderrors.As(err, &storeErr))
				assert.Equal(t, "load market ids", storeErr.Op)
				assert.True(t, snapshot.IsEmpty())
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mockMarket.NewMockMarketRepository(ctrl)
			log := mockLogger.NewMockInterface(ctrl)
			tc.mockFn(repo, log)

			snapshot, err := NewUsecase(repo, log).LoadMarkets(context.Background())
			tc.assertFn(t, snapshot, err)
		})
	}
}

func TestUsecase_Announce(t *testing.T) {
	registered := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	events := []eventv1.MarketRegistrationEvent{
		{MarketID: 1, Time: registered, LotSize: 100, TickSize: 1, MinSize: 10},
		{MarketID: 2, Time: registered.Add(time.Minute), LotSize: 1, TickSize: 1, MinSize: 1},
	}

	t.Run("publishes registrations in order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mockMarket.NewMockMarketRepository(ctrl)
		repo.EXPECT().ListRegistrationEvents(gomock.Any()).Return(events, nil)

		bus := broadcast.New[eventv1.Update](4)
		consumer := bus.Subscribe()

		n, err := NewUsecase(repo, logger.NewNop()).Announce(context.Background(), bus)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		for _, want := range events {
			update, err := consumer.Next(context.Background())
			require.NoError(t, err)
			assert.Equal(t, eventv1.UpdateMarketRegistration, update.Kind)
			assert.Empty(t, update.Channel)
			assert.Equal(t, want, *update.MarketRegistration)
		}
	})

	t.Run("closed bus stops announcing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mockMarket.NewMockMarketRepository(ctrl)
		repo.EXPECT().ListRegistrationEvents(gomock.Any()).Return(events, nil)

		bus := broadcast.New[eventv1.Update](4)
		bus.Close()

		n, err := NewUsecase(repo, logger.NewNop()).Announce(context.Background(), bus)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("more registrations than the ring holds", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mockMarket.NewMockMarketRepository(ctrl)

		many := make([]eventv1.MarketRegistrationEvent, 5)
		for i := range many {
			many[i] = eventv1.MarketRegistrationEvent{MarketID: marketv1.MarketID(i + 1), Time: registered}
		}
		repo.EXPECT().ListRegistrationEvents(gomock.Any()).Return(many, nil)

		bus := broadcast.New[eventv1.Update](2)
		consumer := bus.Subscribe()

		received := make(chan []eventv1.MarketRegistrationEvent, 1)
		go func() {
			var got []eventv1.MarketRegistrationEvent
			for len(got) < len(many) {
				update, err := consumer.Next(context.Background())
				if err != nil {
					break
				}
				got = append(got, *update.MarketRegistration)
			}
			received <- got
		}()

		n, err := NewUsecase(repo, logger.NewNop()).Announce(context.Background(), bus)
		require.NoError(t, err)
		assert.Equal(t, len(many), n)

		select {
		case got := <-received:
			assert.Equal(t, many, got)
		case <-time.After(time.Second):
			t.Fatal("consumer did not receive every registration")
		}
	})

	t.Run("consumer never reads", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mockMarket.NewMockMarketRepository(ctrl)
		repo.EXPECT().ListRegistrationEvents(gomock.Any()).Return(events, nil)

		bus := broadcast.New[eventv1.Update](1)
		bus.Subscribe()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		n, err := NewUsecase(repo, logger.NewNop()).Announce(ctx, bus)
		assert.Equal(t, 1, n)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("store error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mockMarket.NewMockMarketRepository(ctrl)
		repo.EXPECT().ListRegistrationEvents(gomock.Any()).Return(nil, stderrors.New("relation does not exist"))

		_, err := NewUsecase(repo, logger.NewNop()).Announce(context.Background(), broadcast.New[eventv1.Update](4))
		assert.EqualError(t, err, "relation does not exist")
	})
}
