package subscription

import (
	"context"

	eventv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/event/v1"
	marketv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/market/v1"
)

//go:generate mockgen -source=interface.go -destination=mock/subscription_mock.go -package=mock

// Publisher receives every decoded update. *broadcast.Bus[eventv1.Update]
// satisfies it.
type Publisher interface {
	Publish(update eventv1.Update) (uint64, bool)
}

// Manager subscribes the feed channels of a market snapshot.
type Manager interface {
	SubscribeAll(ctx context.Context, markets marketv1.Snapshot) (*Subscription, error)
}
