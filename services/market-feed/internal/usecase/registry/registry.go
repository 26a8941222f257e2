package registry

import (
	"context"
	stderrors "errors"

	"github.com/muhammadchandra19/exchange/pkg/broadcast"
	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/pkg/util"

	eventv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/event/v1"
	marketv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/market/v1"
	"github.com/muhammadchandra19/exchange/services/market-feed/internal/infrastructure/postgresql/market"
)

// Publisher receives the announced registration updates. PublishWait must
// not overwrite entries a consumer has not read yet.
type Publisher interface {
	PublishWait(ctx context.Context, update eventv1.Update) (uint64, error)
}

// Usecase is the usecase for the market registry.
type Usecase struct {
	marketRepository market.MarketRepository
	logger           logger.Interface
}

// NewUsecase creates a new registry usecase.
func NewUsecase(marketRepository market.MarketRepository, logger logger.Interface) *Usecase {
	return &Usecase{marketRepository: marketRepository, logger: logger}
}

// LoadMarkets reads the market snapshot the feed runs with. It is meant to
// be called once at startup; markets registered later are not picked up.
func (u *Usecase) LoadMarkets(ctx context.Context) (marketv1.Snapshot, error) {
	snapshot, err := u.marketRepository.LoadMarketIDs(ctx)
	if err != nil {
		return marketv1.Snapshot{}, errors.TracerFromError(err)
	}

	if snapshot.IsEmpty() {
		u.logger.WarnContext(ctx, "No markets registered, feed is running without subscriptions", logger.Field{
			Key:   "action",
			Value: "load_markets",
		})
		return snapshot, nil
	}

	u.logger.InfoContext(ctx, "Loaded market registry", logger.Field{
		Key:   "markets",
		Value: snapshot.Len(),
	})
	u.describe(ctx, snapshot)

	return snapshot, nil
}

// describe logs the names of the loaded markets. Failures only cost the log
// lines.
func (u *Usecase) describe(ctx context.Context, snapshot marketv1.Snapshot) {
	markets, err := u.marketRepository.ListMarkets(ctx)
	if err != nil {
		u.logger.WarnContext(ctx, "Failed to list market details", logger.Field{
			Key:   "error",
			Value: err.Error(),
		})
		return
	}

	for _, m := range markets {
		if !snapshot.Contains(m.ID) {
			continue
		}
		u.logger.InfoContext(util.WithMarketID(ctx, uint64(m.ID)), "Registered market",
			logger.Field{Key: "name", Value: m.Name},
			logger.Field{Key: "base", Value: m.BaseName()},
			logger.Field{Key: "quote", Value: m.Quote.Symbol},
		)
	}
}

// Announce publishes every stored market registration, oldest first, so
// consumers joining at startup see the registry as updates. Each publish waits
// for room rather than overwriting, so consumers must already be reading. It
// returns how many registrations were published; a closed publisher stops the
// announcement without an error.
func (u *Usecase) Announce(ctx context.Context, publisher Publisher) (int, error) {
	events, err := u.marketRepository.ListRegistrationEvents(ctx)
	if err != nil {
		return 0, errors.TracerFromError(err)
	}

	published := 0
	for _, e := range events {
		if _, err := publisher.PublishWait(ctx, eventv1.NewMarketRegistrationUpdate(e)); err != nil {
			if stderrors.Is(err, broadcast.ErrClosed) {
				break
			}
			return published, errors.NewTracer("announce market registrations").Wrap(err)
		}
		published++
	}

	u.logger.InfoContext(ctx, "Announced market registrations", logger.Field{
		Key:   "published",
		Value: published,
	})
	return published, nil
}
