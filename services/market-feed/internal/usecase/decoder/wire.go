package decoder

import (
	"bytes"
	"fmt"
)

// number keeps the textual form of a JSON number, or of a string holding one,
// so conversion errors can name the field.
type number struct {
	raw string
	set bool
}

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = number{}
		return nil
	}
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		*n = number{raw: string(data[1 : len(data)-1]), set: true}
		return nil
	}
	if len(data) == 0 || (data[0] != '-' && (data[0] < '0' || data[0] > '9')) {
		return fmt.Errorf("expected a number, got %s", data)
	}
	*n = number{raw: string(data), set: true}
	return nil
}

type wireMakerEvent struct {
	MarketID      number  `json:"market_id"`
	Side          *string `json:"side"`
	MarketOrderID number  `json:"market_order_id"`
	UserAddress   *string `json:"user_address"`
	CustodianID   number  `json:"custodian_id"`
	EventType     *string `json:"event_type"`
	Size          number  `json:"size"`
	Price         number  `json:"price"`
	Time          *string `json:"time"`
}

type wireTakerEvent struct {
	MarketID      number  `json:"market_id"`
	Side          *string `json:"side"`
	MarketOrderID number  `json:"market_order_id"`
	Maker         *string `json:"maker"`
	CustodianID   number  `json:"custodian_id"`
	Size          number  `json:"size"`
	Price         number  `json:"price"`
	Time          *string `json:"time"`
}

type wirePriceLevel struct {
	MarketID number  `json:"market_id"`
	Side     *string `json:"side"`
	Price    number  `json:"price"`
	Size     number  `json:"size"`
	Time     *string `json:"time"`
}
