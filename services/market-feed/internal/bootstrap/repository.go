package bootstrap

import (
	marketInfra "github.com/muhammadchandra19/exchange/services/market-feed/internal/infrastructure/postgresql/market"
)

// Repository is the repository for the market feed service.
type Repository struct {
	MarketRepository marketInfra.MarketRepository
}

// registerRepository registers the repository.
func (b *Bootstrap) registerRepository() {
	b.Repository.MarketRepository = marketInfra.NewRepository(b.Postgres, b.Logger)
}
