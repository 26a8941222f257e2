package eventv1

import (
	"fmt"
	"time"

	marketv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/market/v1"
)

// Side is the book side of an order or price level.
type Side string

const (
	// SideBid is the buy side.
	SideBid Side = "bid"
	// SideAsk is the sell side.
	SideAsk Side = "ask"
)

// ParseSide validates s as a Side.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideBid, SideAsk:
		return Side(s), nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

// MakerEventKind is a step in the lifecycle of a resting order.
type MakerEventKind string

const (
	// MakerEventPlace is emitted when an order starts resting on the book.
	MakerEventPlace MakerEventKind = "place"
	// MakerEventChange is emitted when a resting order's size or price changes.
	MakerEventChange MakerEventKind = "change"
	// MakerEventCancel is emitted when the owner cancels a resting order.
	MakerEventCancel MakerEventKind = "cancel"
	// MakerEventEvict is emitted when the book evicts a resting order.
	MakerEventEvict MakerEventKind = "evict"
)

// ParseMakerEventKind validates s as a MakerEventKind.
func ParseMakerEventKind(s string) (MakerEventKind, error) {
	switch MakerEventKind(s) {
	case MakerEventPlace, MakerEventChange, MakerEventCancel, MakerEventEvict:
		return MakerEventKind(s), nil
	}
	return "", fmt.Errorf("unknown maker event kind %q", s)
}

// MakerEvent is a change to a resting order. A nil CustodianID means the
// order has no custodian, which differs from custodian 0.
type MakerEvent struct {
	MarketID      marketv1.MarketID `json:"market_id"`
	Side          Side              `json:"side"`
	MarketOrderID uint64            `json:"market_order_id"`
	UserAddress   string            `json:"user_address"`
	CustodianID   *uint64           `json:"custodian_id"`
	Kind          MakerEventKind    `json:"event_type"`
	Size          uint64            `json:"size"`
	Price         uint64            `json:"price"`
	Time          time.Time         `json:"time"`
}

// TakerEvent is a fill against a resting order.
type TakerEvent struct {
	MarketID      marketv1.MarketID `json:"market_id"`
	Side          Side              `json:"side"`
	MarketOrderID uint64            `json:"market_order_id"`
	Maker         string            `json:"maker"`
	CustodianID   *uint64           `json:"custodian_id"`
	Size          uint64            `json:"size"`
	Price         uint64            `json:"price"`
	Time          time.Time         `json:"time"`
}

// PriceLevelUpdate is the aggregate resting size at one price.
type PriceLevelUpdate struct {
	MarketID marketv1.MarketID `json:"market_id"`
	Side     Side              `json:"side"`
	Price    uint64            `json:"price"`
	Size     uint64            `json:"size"`
	Time     time.Time         `json:"time"`
}

// MarketRegistrationEvent records the creation of a market. Base is nil for
// markets with a generic base asset.
type MarketRegistrationEvent struct {
	MarketID        marketv1.MarketID      `json:"market_id"`
	Time            time.Time              `json:"time"`
	Base            *marketv1.CoinIdentity `json:"base,omitempty"`
	BaseNameGeneric *string                `json:"base_name_generic,omitempty"`
	Quote           marketv1.CoinIdentity  `json:"quote"`
	LotSize         uint64                 `json:"lot_size"`
	TickSize        uint64                 `json:"tick_size"`
	MinSize         uint64                 `json:"min_size"`
	UnderwriterID   uint64                 `json:"underwriter_id"`
}
