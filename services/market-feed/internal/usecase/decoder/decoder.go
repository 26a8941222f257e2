package decoder

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/muhammadchandra19/exchange/pkg/fixedpoint"
	"github.com/shopspring/decimal"

	channelv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/channel/v1"
	eventv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/event/v1"
	marketv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/market/v1"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Options configures the minimum-unit scaling of payload values.
type Options struct {
	// SizeDecimals shifts sizes by 10^SizeDecimals before conversion.
	SizeDecimals int32
	// PriceDecimals shifts prices by 10^PriceDecimals before conversion.
	PriceDecimals int32
}

type decoder struct {
	opts Options
}

// NewDecoder creates a new payload decoder.
func NewDecoder(opts Options) *decoder {
	return &decoder{opts: opts}
}

// Decode parses payload according to the kind of channel, converts every
// numeric field to fixed point and checks the embedded market id against
// the channel suffix.
func (d *decoder) Decode(channel string, payload []byte) (eventv1.Update, error) {
	kind, marketID, err := channelv1.Parse(channel)
	if err != nil {
		return eventv1.Update{}, &DecodeError{Channel: channel, Reason: ReasonUnknownChannel, Err: err}
	}

	f := &fieldReader{channel: channel, opts: d.opts}

	switch kind {
	case channelv1.KindOrders:
		var w wireMakerEvent
		if err := json.Unmarshal(payload, &w); err != nil {
			return eventv1.Update{}, malformed(channel, err)
		}
		e := eventv1.MakerEvent{
			MarketID:      f.marketID(w.MarketID, marketID),
			Side:          f.side(w.Side),
			MarketOrderID: f.id("market_order_id", w.MarketOrderID),
			UserAddress:   f.text("user_address", w.UserAddress),
			CustodianID:   f.optionalID("custodian_id", w.CustodianID),
			Kind:          f.makerKind(w.EventType),
			Size:          f.size(w.Size),
			Price:         f.price(w.Price),
			Time:          f.time(w.Time),
		}
		if f.err != nil {
			return eventv1.Update{}, f.err
		}
		return eventv1.NewMakerUpdate(channel, e), nil

	case channelv1.KindFills:
		var w wireTakerEvent
		if err := json.Unmarshal(payload, &w); err != nil {
			return eventv1.Update{}, malformed(channel, err)
		}
		e := eventv1.TakerEvent{
			MarketID:      f.marketID(w.MarketID, marketID),
			Side:          f.side(w.Side),
			MarketOrderID: f.id("market_order_id", w.MarketOrderID),
			Maker:         f.text("maker", w.Maker),
			CustodianID:   f.optionalID("custodian_id", w.CustodianID),
			Size:          f.size(w.Size),
			Price:         f.price(w.Price),
			Time:          f.time(w.Time),
		}
		if f.err != nil {
			return eventv1.Update{}, f.err
		}
		return eventv1.NewTakerUpdate(channel, e), nil

	case channelv1.KindPriceLevels:
		var w wirePriceLevel
		if err := json.Unmarshal(payload, &w); err != nil {
			return eventv1.Update{}, malformed(channel, err)
		}
		e := eventv1.PriceLevelUpdate{
			MarketID: f.marketID(w.MarketID, marketID),
			Side:     f.side(w.Side),
			Price:    f.price(w.Price),
			Size:     f.size(w.Size),
			Time:     f.time(w.Time),
		}
		if f.err != nil {
			return eventv1.Update{}, f.err
		}
		return eventv1.NewPriceLevelUpdate(channel, e), nil
	}

	return eventv1.Update{}, &DecodeError{
		Channel: channel,
		Reason:  ReasonUnknownChannel,
		Err:     errors.New("no decoder for channel kind " + string(kind)),
	}
}

func malformed(channel string, err error) *DecodeError {
	return &DecodeError{Channel: channel, Reason: ReasonMalformed, Err: err}
}

// fieldReader converts wire fields and keeps the first failure. Once err is
// set every further read returns a zero value.
type fieldReader struct {
	channel string
	opts    Options
	err     *DecodeError
}

func (f *fieldReader) fail(field string, reason Reason, err error) {
	if f.err == nil {
		f.err = &DecodeError{Channel: f.channel, Field: field, Reason: reason, Err: err}
	}
}

func (f *fieldReader) convert(field string, n number, decimals int32) (uint64, bool) {
	if f.err != nil {
		return 0, false
	}
	if !n.set {
		f.fail(field, ReasonMissing, errors.New("required field is absent"))
		return 0, false
	}

	d, err := decimal.NewFromString(n.raw)
	if err != nil {
		f.fail(field, ReasonConversion, fixedpoint.NewConversionError(field, "value is not a decimal number"))
		return 0, false
	}
	v, err := fixedpoint.ScaledToU64(field, d, decimals)
	if err != nil {
		f.fail(field, ReasonConversion, err)
		return 0, false
	}
	return v, true
}

func (f *fieldReader) id(field string, n number) uint64 {
	v, _ := f.convert(field, n, 0)
	return v
}

func (f *fieldReader) optionalID(field string, n number) *uint64 {
	if !n.set {
		return nil
	}
	v, ok := f.convert(field, n, 0)
	if !ok {
		return nil
	}
	return &v
}

func (f *fieldReader) size(n number) uint64 {
	v, _ := f.convert("size", n, f.opts.SizeDecimals)
	return v
}

func (f *fieldReader) price(n number) uint64 {
	v, _ := f.convert("price", n, f.opts.PriceDecimals)
	return v
}

func (f *fieldReader) marketID(n number, channelMarket marketv1.MarketID) marketv1.MarketID {
	v, ok := f.convert("market_id", n, 0)
	if !ok {
		return 0
	}
	if marketv1.MarketID(v) != channelMarket {
		f.fail("market_id", ReasonInconsistent,
			errors.New("payload market "+marketv1.MarketID(v).String()+" does not match channel market "+channelMarket.String()))
		return 0
	}
	return channelMarket
}

func (f *fieldReader) text(field string, s *string) string {
	if f.err != nil {
		return ""
	}
	if s == nil {
		f.fail(field, ReasonMissing, errors.New("required field is absent"))
		return ""
	}
	return *s
}

func (f *fieldReader) side(s *string) eventv1.Side {
	raw := f.text("side", s)
	if f.err != nil {
		return ""
	}
	side, err := eventv1.ParseSide(raw)
	if err != nil {
		f.fail("side", ReasonMalformed, err)
	}
	return side
}

func (f *fieldReader) makerKind(s *string) eventv1.MakerEventKind {
	raw := f.text("event_type", s)
	if f.err != nil {
		return ""
	}
	kind, err := eventv1.ParseMakerEventKind(raw)
	if err != nil {
		f.fail("event_type", ReasonMalformed, err)
	}
	return kind
}

func (f *fieldReader) time(s *string) time.Time {
	raw := f.text("time", s)
	if f.err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		f.fail("time", ReasonMalformed, err)
	}
	return t
}
