package marketv1

import (
	"strconv"
	"time"
)

// MarketID identifies a market. It is assigned at registration and never
// changes.
type MarketID uint64

// String returns the decimal form used in broker channel names.
func (id MarketID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseMarketID parses the decimal form of a MarketID.
func ParseMarketID(s string) (MarketID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return MarketID(v), nil
}

// CoinIdentity is the (account address, module, struct) triple that
// identifies a coin type.
type CoinIdentity struct {
	AccountAddress string `json:"account_address"`
	ModuleName     string `json:"module_name"`
	StructName     string `json:"struct_name"`
}

// Coin is a coin identity plus its descriptive metadata.
type Coin struct {
	CoinIdentity
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}

// Market is a registered trading pair. Exactly one of Base and
// BaseNameGeneric is set. LotSize, TickSize and MinSize are fixed-point
// integers.
type Market struct {
	ID              MarketID  `json:"market_id"`
	Name            string    `json:"name"`
	Base            *Coin     `json:"base,omitempty"`
	BaseNameGeneric *string   `json:"base_name_generic,omitempty"`
	Quote           Coin      `json:"quote"`
	LotSize         uint64    `json:"lot_size"`
	TickSize        uint64    `json:"tick_size"`
	MinSize         uint64    `json:"min_size"`
	UnderwriterID   uint64    `json:"underwriter_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// IsGeneric reports whether the base asset has no coin metadata.
func (m *Market) IsGeneric() bool {
	return m.Base == nil
}

// BaseName returns the base coin symbol, or the generic base name.
func (m *Market) BaseName() string {
	if m.Base != nil {
		return m.Base.Symbol
	}
	if m.BaseNameGeneric != nil {
		return *m.BaseNameGeneric
	}
	return ""
}
