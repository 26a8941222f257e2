package bootstrap

import (
	"github.com/muhammadchandra19/exchange/services/market-feed/internal/usecase/decoder"
	"github.com/muhammadchandra19/exchange/services/market-feed/internal/usecase/registry"
	"github.com/muhammadchandra19/exchange/services/market-feed/internal/usecase/subscription"
)

// Usecase is the usecase for the market feed service.
type Usecase struct {
	Registry     *registry.Usecase
	Decoder      decoder.Decoder
	Subscription subscription.Manager
}

// registerUsecase registers the usecase.
func (b *Bootstrap) registerUsecase() {
	b.Usecase.Registry = registry.NewUsecase(b.Repository.MarketRepository, b.Logger)
	b.Usecase.Decoder = decoder.NewDecoder(decoder.Options{
		SizeDecimals:  b.Config.Feed.SizeDecimals,
		PriceDecimals: b.Config.Feed.PriceDecimals,
	})
	b.Usecase.Subscription = subscription.NewManager(
		b.Redis,
		b.Usecase.Decoder,
		b.Bus,
		b.Logger,
		subscription.Options{SubscribeTimeout: b.Config.Feed.SubscribeTimeout},
	)
}
