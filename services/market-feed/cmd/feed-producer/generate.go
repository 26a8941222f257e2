package main

import (
	"math/rand/v2"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	channelv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/channel/v1"
	eventv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/event/v1"
	marketv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/market/v1"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type makerPayload struct {
	MarketID      uint64          `json:"market_id"`
	Side          eventv1.Side    `json:"side"`
	MarketOrderID uint64          `json:"market_order_id"`
	UserAddress   string          `json:"user_address"`
	CustodianID   *uint64         `json:"custodian_id"`
	EventType     string          `json:"event_type"`
	Size          decimal.Decimal `json:"size"`
	Price         decimal.Decimal `json:"price"`
	Time          time.Time       `json:"time"`
}

type takerPayload struct {
	MarketID      uint64          `json:"market_id"`
	Side          eventv1.Side    `json:"side"`
	MarketOrderID uint64          `json:"market_order_id"`
	Maker         string          `json:"maker"`
	CustodianID   *uint64         `json:"custodian_id"`
	Size          decimal.Decimal `json:"size"`
	Price         decimal.Decimal `json:"price"`
	Time          time.Time       `json:"time"`
}

type priceLevelPayload struct {
	MarketID uint64          `json:"market_id"`
	Side     eventv1.Side    `json:"side"`
	Price    decimal.Decimal `json:"price"`
	Size     decimal.Decimal `json:"size"`
	Time     time.Time       `json:"time"`
}

// generator builds payloads in the wire format the feed decodes. Sizes and
// prices are whole multiples of the configured minimum units unless a
// payload is deliberately made invalid.
type generator struct {
	rng           *rand.Rand
	sizeDecimals  int32
	priceDecimals int32
	// basePrice and spread are in price ticks.
	basePrice    int64
	spread       int64
	invalidRatio float64
	nextOrderID  uint64
	users        []string
}

func newGenerator(seed uint64, sizeDecimals, priceDecimals int32, basePrice decimal.Decimal, invalidRatio float64) *generator {
	ticks := basePrice.Shift(priceDecimals).IntPart()
	return &generator{
		rng:           rand.New(rand.NewPCG(seed, seed>>1|1)),
		sizeDecimals:  sizeDecimals,
		priceDecimals: priceDecimals,
		basePrice:     ticks,
		spread:        max(ticks/20, 1),
		invalidRatio:  invalidRatio,
		nextOrderID:   1,
		users:         []string{"0x1a2b", "0x3c4d", "0x5e6f", "0x7a8b"},
	}
}

// next returns the channel and payload of one synthetic event for market.
func (g *generator) next(market marketv1.MarketID, now time.Time) (string, []byte, error) {
	side := eventv1.SideBid
	if g.rng.IntN(2) == 1 {
		side = eventv1.SideAsk
	}
	size := g.size()
	price := g.price()
	if g.rng.Float64() < g.invalidRatio {
		// one digit below the minimum price unit
		price = price.Add(decimal.New(1, -g.priceDecimals-1))
	}

	var (
		kind    channelv1.Kind
		payload any
	)
	switch roll := g.rng.IntN(100); {
	case roll < 60:
		kind = channelv1.KindOrders
		payload = makerPayload{
			MarketID:      uint64(market),
			Side:          side,
			MarketOrderID: g.orderID(),
			UserAddress:   g.user(),
			CustodianID:   g.custodian(),
			EventType:     g.makerEventType(),
			Size:          size,
			Price:         price,
			Time:          now,
		}
	case roll < 85:
		kind = channelv1.KindFills
		payload = takerPayload{
			MarketID:      uint64(market),
			Side:          side,
			MarketOrderID: g.orderID(),
			Maker:         g.user(),
			CustodianID:   g.custodian(),
			Size:          size,
			Price:         price,
			Time:          now,
		}
	default:
		kind = channelv1.KindPriceLevels
		payload = priceLevelPayload{
			MarketID: uint64(market),
			Side:     side,
			Price:    price,
			Size:     size,
			Time:     now,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", nil, err
	}
	return channelv1.Name(kind, market), body, nil
}

func (g *generator) size() decimal.Decimal {
	lots := 1 + g.rng.Int64N(10_000)
	return decimal.New(lots, -g.sizeDecimals)
}

func (g *generator) price() decimal.Decimal {
	ticks := g.basePrice - g.spread + g.rng.Int64N(2*g.spread+1)
	return decimal.New(max(ticks, 1), -g.priceDecimals)
}

func (g *generator) orderID() uint64 {
	id := g.nextOrderID
	g.nextOrderID++
	return id
}

func (g *generator) user() string {
	return g.users[g.rng.IntN(len(g.users))]
}

func (g *generator) custodian() *uint64 {
	if g.rng.IntN(4) != 0 {
		return nil
	}
	id := uint64(1 + g.rng.IntN(3))
	return &id
}

func (g *generator) makerEventType() string {
	kinds := []eventv1.MakerEventKind{
		eventv1.MakerEventPlace,
		eventv1.MakerEventPlace,
		eventv1.MakerEventChange,
		eventv1.MakerEventCancel,
		eventv1.MakerEventEvict,
	}
	return string(kinds[g.rng.IntN(len(kinds))])
}
