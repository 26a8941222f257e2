// Package channelv1 names the broker channels the feed subscribes to.
//
// A channel name is "{kind}:{market_id}" with market_id in decimal form. The
// set of kinds is closed: adding one means adding a constant here and
// listing it in Kinds, which makes the subscription manager and the decoder
// pick it up.
package channelv1

import (
	"fmt"
	"strings"

	marketv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/market/v1"
)

// Kind is the event family carried by a channel.
type Kind string

const (
	// KindOrders carries maker events.
	KindOrders Kind = "orders"
	// KindFills carries taker events.
	KindFills Kind = "fills"
	// KindPriceLevels carries price level updates.
	KindPriceLevels Kind = "price_levels"
)

const separator = ":"

var kinds = []Kind{KindOrders, KindFills, KindPriceLevels}

// Kinds returns every channel kind subscribed per market.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Valid reports whether k is one of Kinds.
func (k Kind) Valid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Name returns the channel name of kind for market id.
func Name(kind Kind, id marketv1.MarketID) string {
	return string(kind) + separator + id.String()
}

// Parse splits a channel name into its kind and market id.
func Parse(name string) (Kind, marketv1.MarketID, error) {
	prefix, suffix, found := strings.Cut(name, separator)
	if !found {
		return "", 0, fmt.Errorf("channel %q has no market suffix", name)
	}

	kind := Kind(prefix)
	if !kind.Valid() {
		return "", 0, fmt.Errorf("channel %q has unknown kind %q", name, prefix)
	}

	id, err := marketv1.ParseMarketID(suffix)
	if err != nil {
		return "", 0, fmt.Errorf("channel %q has invalid market id %q", name, suffix)
	}

	return kind, id, nil
}

// Names returns one channel name per (market, kind) pair of snapshot,
// grouped by market in ascending id order.
func Names(snapshot marketv1.Snapshot) []string {
	names := make([]string, 0, snapshot.Len()*len(kinds))
	for _, id := range snapshot.IDs() {
		for _, kind := range kinds {
			names = append(names, Name(kind, id))
		}
	}
	return names
}
