package market

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/muhammadchandra19/exchange/pkg/fixedpoint"
	eventv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/event/v1"
	marketv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/market/v1"
)

// coinRow holds the nullable columns of a coin joined onto a market row.
type coinRow struct {
	AccountAddress pgtype.Text
	ModuleName     pgtype.Text
	StructName     pgtype.Text
	Symbol         pgtype.Text
	Name           pgtype.Text
	Decimals       pgtype.Int2
}

func (c *coinRow) scanTargets() []any {
	return []any{&c.AccountAddress, &c.ModuleName, &c.StructName, &c.Symbol, &c.Name, &c.Decimals}
}

func (c *coinRow) identity() *marketv1.CoinIdentity {
	if !c.AccountAddress.Valid {
		return nil
	}
	return &marketv1.CoinIdentity{
		AccountAddress: c.AccountAddress.String,
		ModuleName:     c.ModuleName.String,
		StructName:     c.StructName.String,
	}
}

func (c *coinRow) toCoin() *marketv1.Coin {
	identity := c.identity()
	if identity == nil {
		return nil
	}
	return &marketv1.Coin{
		CoinIdentity: *identity,
		Symbol:       c.Symbol.String,
		Name:         c.Name.String,
		Decimals:     uint8(c.Decimals.Int16),
	}
}

// sizing holds the fixed-point columns shared by markets and registration
// events.
type sizing struct {
	LotSize       pgtype.Numeric
	TickSize      pgtype.Numeric
	MinSize       pgtype.Numeric
	UnderwriterID pgtype.Numeric
}

type convertedSizing struct {
	lotSize, tickSize, minSize, underwriterID uint64
}

func (s *sizing) convert() (convertedSizing, error) {
	var out convertedSizing
	var err error
	if out.lotSize, err = fixedpoint.NumericToU64("lot_size", s.LotSize); err != nil {
		return out, err
	}
	if out.tickSize, err = fixedpoint.NumericToU64("tick_size", s.TickSize); err != nil {
		return out, err
	}
	if out.minSize, err = fixedpoint.NumericToU64("min_size", s.MinSize); err != nil {
		return out, err
	}
	if out.underwriterID, err = fixedpoint.NumericToU64("underwriter_id", s.UnderwriterID); err != nil {
		return out, err
	}
	return out, nil
}

// MarketRow is a markets row joined with its base and quote coins.
type MarketRow struct {
	MarketID        pgtype.Numeric
	Name            string
	BaseNameGeneric pgtype.Text
	Base            coinRow
	Quote           coinRow
	sizing
	CreatedAt time.Time
}

func (r *MarketRow) scanTargets() []any {
	targets := []any{&r.MarketID, &r.Name, &r.BaseNameGeneric}
	targets = append(targets, r.Base.scanTargets()...)
	targets = append(targets, r.Quote.scanTargets()...)
	return append(targets, &r.LotSize, &r.TickSize, &r.MinSize, &r.UnderwriterID, &r.CreatedAt)
}

// ToDomain converts the row, passing every numeric column through the
// fixed-point conversion.
func (r *MarketRow) ToDomain() (marketv1.Market, error) {
	id, err := fixedpoint.NumericToU64("market_id", r.MarketID)
	if err != nil {
		return marketv1.Market{}, err
	}
	sizes, err := r.sizing.convert()
	if err != nil {
		return marketv1.Market{}, err
	}

	m := marketv1.Market{
		ID:            marketv1.MarketID(id),
		Name:          r.Name,
		Base:          r.Base.toCoin(),
		LotSize:       sizes.lotSize,
		TickSize:      sizes.tickSize,
		MinSize:       sizes.minSize,
		UnderwriterID: sizes.underwriterID,
		CreatedAt:     r.CreatedAt,
	}
	if quote := r.Quote.toCoin(); quote != nil {
		m.Quote = *quote
	}
	if m.Base == nil && r.BaseNameGeneric.Valid {
		generic := r.BaseNameGeneric.String
		m.BaseNameGeneric = &generic
	}
	return m, nil
}

// RegistrationRow is a market_registration_events row.
type RegistrationRow struct {
	MarketID        pgtype.Numeric
	Time            time.Time
	Base            coinRow
	BaseNameGeneric pgtype.Text
	Quote           coinRow
	sizing
}

func (r *RegistrationRow) scanTargets() []any {
	return []any{
		&r.MarketID, &r.Time,
		&r.Base.AccountAddress, &r.Base.ModuleName, &r.Base.StructName,
		&r.BaseNameGeneric,
		&r.Quote.AccountAddress, &r.Quote.ModuleName, &r.Quote.StructName,
		&r.LotSize, &r.TickSize, &r.MinSize, &r.UnderwriterID,
	}
}

// ToDomain converts the row into a registration event.
func (r *RegistrationRow) ToDomain() (eventv1.MarketRegistrationEvent, error) {
	id, err := fixedpoint.NumericToU64("market_id", r.MarketID)
	if err != nil {
		return eventv1.MarketRegistrationEvent{}, err
	}
	sizes, err := r.sizing.convert()
	if err != nil {
		return eventv1.MarketRegistrationEvent{}, err
	}

	e := eventv1.MarketRegistrationEvent{
		MarketID:      marketv1.MarketID(id),
		Time:          r.Time,
		Base:          r.Base.identity(),
		LotSize:       sizes.lotSize,
		TickSize:      sizes.tickSize,
		MinSize:       sizes.minSize,
		UnderwriterID: sizes.underwriterID,
	}
	if quote := r.Quote.identity(); quote != nil {
		e.Quote = *quote
	}
	if e.Base == nil && r.BaseNameGeneric.Valid {
		generic := r.BaseNameGeneric.String
		e.BaseNameGeneric = &generic
	}
	return e, nil
}
