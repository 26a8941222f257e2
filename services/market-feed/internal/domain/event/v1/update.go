package eventv1

import (
	marketv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/market/v1"
)

// UpdateKind tags the variant carried by an Update.
type UpdateKind string

const (
	// UpdateMarketRegistration carries a MarketRegistrationEvent.
	UpdateMarketRegistration UpdateKind = "market_registration"
	// UpdateMaker carries a MakerEvent.
	UpdateMaker UpdateKind = "maker"
	// UpdateTaker carries a TakerEvent.
	UpdateTaker UpdateKind = "taker"
	// UpdatePriceLevel carries a PriceLevelUpdate.
	UpdatePriceLevel UpdateKind = "price_level"
)

// Update is the unit flowing through the broadcast bus. Exactly one of the
// variant pointers matching Kind is set; use the constructors.
type Update struct {
	Kind UpdateKind `json:"kind"`
	// Channel is the broker channel the update was received on. It is empty
	// for updates that did not come from the broker.
	Channel string `json:"channel,omitempty"`

	MarketRegistration *MarketRegistrationEvent `json:"market_registration,omitempty"`
	Maker              *MakerEvent              `json:"maker,omitempty"`
	Taker              *TakerEvent              `json:"taker,omitempty"`
	PriceLevel         *PriceLevelUpdate        `json:"price_level,omitempty"`
}

// NewMarketRegistrationUpdate wraps e.
func NewMarketRegistrationUpdate(e MarketRegistrationEvent) Update {
	return Update{Kind: UpdateMarketRegistration, MarketRegistration: &e}
}

// NewMakerUpdate wraps e received on channel.
func NewMakerUpdate(channel string, e MakerEvent) Update {
	return Update{Kind: UpdateMaker, Channel: channel, Maker: &e}
}

// NewTakerUpdate wraps e received on channel.
func NewTakerUpdate(channel string, e TakerEvent) Update {
	return Update{Kind: UpdateTaker, Channel: channel, Taker: &e}
}

// NewPriceLevelUpdate wraps e received on channel.
func NewPriceLevelUpdate(channel string, e PriceLevelUpdate) Update {
	return Update{Kind: UpdatePriceLevel, Channel: channel, PriceLevel: &e}
}

// MarketID returns the market of the carried event.
func (u Update) MarketID() marketv1.MarketID {
	switch u.Kind {
	case UpdateMarketRegistration:
		return u.MarketRegistration.MarketID
	case UpdateMaker:
		return u.Maker.MarketID
	case UpdateTaker:
		return u.Taker.MarketID
	case UpdatePriceLevel:
		return u.PriceLevel.MarketID
	}
	return 0
}
