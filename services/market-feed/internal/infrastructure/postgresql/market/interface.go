package market

import (
	"context"

	eventv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/event/v1"
	marketv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/market/v1"
)

//go:generate mockgen -source=interface.go -destination=mock/repository_mock.go -package=mock

// MarketRepository reads the market registry from the relational store.
type MarketRepository interface {
	// LoadMarketIDs returns every registered market identifier. An empty
	// registry is not an error.
	LoadMarketIDs(ctx context.Context) (marketv1.Snapshot, error)
	ListMarkets(ctx context.Context) ([]marketv1.Market, error)
	ListRegistrationEvents(ctx context.Context) ([]eventv1.MarketRegistrationEvent, error)
}
