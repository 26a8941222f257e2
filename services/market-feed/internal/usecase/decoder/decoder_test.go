package decoder

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/fixedpoint"
	eventv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/event/v1"
	marketv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/market/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fillPayload = `{
	"market_id": 5,
	"side": "bid",
	"market_order_id": "1844674407370955161",
	"maker": "0xmaker",
	"custodian_id": null,
	"size": "12.0",
	"price": "3.50",
	"time": "2024-05-01T10:00:00.123Z"
}`

func TestDecoder_Fill(t *testing.T) {
	d := NewDecoder(Options{SizeDecimals: 1, PriceDecimals: 2})

	update, err := d.Decode("fills:5", []byte(fillPayload))
	require.NoError(t, err)

	assert.Equal(t, eventv1.UpdateTaker, update.Kind)
	assert.Equal(t, "fills:5", update.Channel)
	require.NotNil(t, update.Taker)
	assert.Equal(t, eventv1.TakerEvent{
		MarketID:      5,
		Side:          eventv1.SideBid,
		MarketOrderID: 1844674407370955161,
		Maker:         "0xmaker",
		Size:          120,
		Price:         350,
		Time:          time.Date(2024, 5, 1, 10, 0, 0, 123000000, time.UTC),
	}, *update.Taker)
}

func TestDecoder_Order(t *testing.T) {
	d := NewDecoder(Options{})

	update, err := d.Decode("orders:9", []byte(`{
		"market_id": "9", "side": "ask", "market_order_id": 77, "user_address": "0xuser",
		"custodian_id": 0, "event_type": "change", "size": 40, "price": "1200",
		"time": "2024-05-01T10:00:00Z", "sequence_number_for_trade": 3
	}`))
	require.NoError(t, err)

	require.NotNil(t, update.Maker)
	assert.Equal(t, marketv1.MarketID(9), update.MarketID())
	assert.Equal(t, eventv1.SideAsk, update.Maker.Side)
	assert.Equal(t, eventv1.MakerEventChange, update.Maker.Kind)
	require.NotNil(t, update.Maker.CustodianID)
	assert.Equal(t, uint64(0), *update.Maker.CustodianID)
	assert.Equal(t, uint64(40), update.Maker.Size)
	assert.Equal(t, uint64(1200), update.Maker.Price)
}

func TestDecoder_PriceLevel(t *testing.T) {
	d := NewDecoder(Options{PriceDecimals: 2})

	update, err := d.Decode("price_levels:3", []byte(`{
		"market_id": 3, "side": "bid", "price": "0.25", "size": 1000, "time": "2024-05-01T10:00:00Z"
	}`))
	require.NoError(t, err)

	require.NotNil(t, update.PriceLevel)
	assert.Equal(t, eventv1.UpdatePriceLevel, update.Kind)
	assert.Equal(t, uint64(25), update.PriceLevel.Price)
	assert.Equal(t, uint64(1000), update.PriceLevel.Size)
}

func TestDecoder_CustodianAbsentIsNotZero(t *testing.T) {
	d := NewDecoder(Options{})
	payload := `{"market_id": 1, "side": "bid", "market_order_id": 1, "maker": "0x", "size": 1, "price": 1, "time": "2024-05-01T10:00:00Z"}`

	update, err := d.Decode("fills:1", []byte(payload))
	require.NoError(t, err)
	assert.Nil(t, update.Taker.CustodianID)
}

func TestDecoder_Errors(t *testing.T) {
	testCases := []struct {
		name       string
		opts       Options
		channel    string
		payload    string
		wantReason Reason
		wantField  string
		assertFn   func(t *testing.T, err error)
	}{
		{
			name:       "fractional price after scaling",
			opts:       Options{SizeDecimals: 1, PriceDecimals: 2},
			channel:    "fills:5",
			payload:    `{"market_id": 5, "side": "bid", "market_order_id": 1, "maker": "0x", "size": "12.0", "price": "3.501", "time": "2024-05-01T10:00:00Z"}`,
			wantReason: ReasonConversion,
			wantField:  "price",
			assertFn: func(t *testing.T, err error) {
				var details *errors.ErrorDetails
				require.True(t, stderrors.As(err, &details))
				assert.Equal(t, "price", details.Field)
				assert.True(t, fixedpoint.IsConversionError(err))
			},
		},
		{
			name:       "market mismatch",
			channel:    "fills:5",
			payload:    `{"market_id": 6, "side": "bid", "market_order_id": 1, "maker": "0x", "size": 1, "price": 1, "time": "2024-05-01T10:00:00Z"}`,
			wantReason: ReasonInconsistent,
			wantField:  "market_id",
		},
		{
			name:       "not json",
			channel:    "orders:5",
			payload:    `{"market_id": 5,`,
			wantReason: ReasonMalformed,
		},
		{
			name:       "wrong type for number",
			channel:    "orders:5",
			payload:    `{"market_id": true}`,
			wantReason: ReasonMalformed,
		},
		{
			name:       "missing size",
			channel:    "price_levels:5",
			payload:    `{"market_id": 5, "side": "ask", "price": 1, "time": "2024-05-01T10:00:00Z"}`,
			wantReason: ReasonMissing,
			wantField:  "size",
		},
		{
			name:       "negative size",
			channel:    "price_levels:5",
			payload:    `{"market_id": 5, "side": "ask", "price": 1, "size": -3, "time": "2024-05-01T10:00:00Z"}`,
			wantReason: ReasonConversion,
			wantField:  "size",
		},
		{
			name:       "order id overflow",
			channel:    "orders:5",
			payload:    `{"market_id": 5, "side": "ask", "market_order_id": "18446744073709551616", "user_address": "0x", "event_type": "place", "size": 1, "price": 1, "time": "2024-05-01T10:00:00Z"}`,
			wantReason: ReasonConversion,
			wantField:  "market_order_id",
		},
		{
			name:       "huge positive exponent",
			channel:    "fills:5",
			payload:    `{"market_id": 5, "side": "bid", "market_order_id": 1, "maker": "0x", "size": "1e999999999", "price": 1, "time": "2024-05-01T10:00:00Z"}`,
			wantReason: ReasonConversion,
			wantField:  "size",
		},
		{
			name:       "huge negative exponent",
			channel:    "fills:5",
			payload:    `{"market_id": 5, "side": "bid", "market_order_id": 1, "maker": "0x", "size": "1e-999999999", "price": 1, "time": "2024-05-01T10:00:00Z"}`,
			wantReason: ReasonConversion,
			wantField:  "size",
		},
		{
			name:       "scaling pushes exponent past int32",
			opts:       Options{PriceDecimals: 2},
			channel:    "fills:5",
			payload:    `{"market_id": 5, "side": "bid", "market_order_id": 1, "maker": "0x", "size": 1, "price": "1e2147483647", "time": "2024-05-01T10:00:00Z"}`,
			wantReason: ReasonConversion,
			wantField:  "price",
		},
		{
			name:       "not a number",
			channel:    "orders:5",
			payload:    `{"market_id": 5, "side": "ask", "market_order_id": "abc", "user_address": "0x", "event_type": "place", "size": 1, "price": 1, "time": "2024-05-01T10:00:00Z"}`,
			wantReason: ReasonConversion,
			wantField:  "market_order_id",
		},
		{
			name:       "unknown side",
			channel:    "orders:5",
			payload:    `{"market_id": 5, "side": "buy", "market_order_id": 1, "user_address": "0x", "event_type": "place", "size": 1, "price": 1, "time": "2024-05-01T10:00:00Z"}`,
			wantReason: ReasonMalformed,
			wantField:  "side",
		},
		{
			name:       "unknown event type",
			channel:    "orders:5",
			payload:    `{"market_id": 5, "side": "bid", "market_order_id": 1, "user_address": "0x", "event_type": "fill", "size": 1, "price": 1, "time": "2024-05-01T10:00:00Z"}`,
			wantReason: ReasonMalformed,
			wantField:  "event_type",
		},
		{
			name:       "bad time",
			channel:    "orders:5",
			payload:    `{"market_id": 5, "side": "bid", "market_order_id": 1, "user_address": "0x", "event_type": "place", "size": 1, "price": 1, "time": "yesterday"}`,
			wantReason: ReasonMalformed,
			wantField:  "time",
		},
		{
			name:       "unknown channel kind",
			channel:    "trades:5",
			payload:    `{}`,
			wantReason: ReasonUnknownChannel,
		},
		{
			name:       "first failing field is reported",
			channel:    "orders:5",
			payload:    `{"market_id": 5}`,
			wantReason: ReasonMissing,
			wantField:  "side",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDecoder(tc.opts).Decode(tc.channel, []byte(tc.payload))
			require.Error(t, err)

			var decodeErr *DecodeError
			require.True(t, stderrors.As(err, &decodeErr))
			assert.Equal(t, tc.wantReason, decodeErr.Reason)
			assert.Equal(t, tc.wantField, decodeErr.Field)
			assert.Equal(t, tc.channel, decodeErr.Channel)
			assert.Equal(t, errors.DecodeError, decodeErr.Code())

			if tc.assertFn != nil {
				tc.assertFn(t, err)
			}
		})
	}
}

func TestDecoder_ExtremeExponentsDecodePromptly(t *testing.T) {
	testCases := []struct {
		name     string
		size     string
		assertFn func(t *testing.T, update eventv1.Update, err error)
	}{
		{
			name: "zero with huge negative exponent",
			size: "0e-999999999",
			assertFn: func(t *testing.T, update eventv1.Update, err error) {
				require.NoError(t, err)
				assert.Equal(t, uint64(0), update.Taker.Size)
			},
		},
		{
			name: "zero with huge positive exponent",
			size: "0e999999999",
			assertFn: func(t *testing.T, update eventv1.Update, err error) {
				require.NoError(t, err)
				assert.Equal(t, uint64(0), update.Taker.Size)
			},
		},
		{
			name: "one with huge positive exponent",
			size: "1e999999999",
			assertFn: func(t *testing.T, update eventv1.Update, err error) {
				assert.True(t, fixedpoint.IsConversionError(err))
			},
		},
		{
			name: "integer written with huge negative exponent",
			size: "1200000000000000000000000000000e-30",
			assertFn: func(t *testing.T, update eventv1.Update, err error) {
				require.NoError(t, err)
				assert.Equal(t, uint64(12), update.Taker.Size)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			payload := `{"market_id": 5, "side": "bid", "market_order_id": 1, "maker": "0x", "size": "` + tc.size +
				`", "price": 1, "time": "2024-05-01T10:00:00Z"}`

			type result struct {
				update eventv1.Update
				err    error
			}
			done := make(chan result, 1)
			go func() {
				update, err := NewDecoder(Options{SizeDecimals: 1}).Decode("fills:5", []byte(payload))
				done <- result{update, err}
			}()

			select {
			case r := <-done:
				tc.assertFn(t, r.update, r.err)
			case <-time.After(time.Second):
				t.Fatalf("Decode of size %q did not return", tc.size)
			}
		})
	}
}

func TestDecoder_FailureDoesNotPoisonNextPayload(t *testing.T) {
	d := NewDecoder(Options{SizeDecimals: 1, PriceDecimals: 2})

	_, err := d.Decode("fills:5", []byte(`garbage`))
	require.Error(t, err)

	update, err := d.Decode("fills:5", []byte(fillPayload))
	require.NoError(t, err)
	assert.Equal(t, uint64(350), update.Taker.Price)
}
