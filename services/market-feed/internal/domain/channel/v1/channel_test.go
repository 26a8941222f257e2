package channelv1

import (
	"testing"

	marketv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/market/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	assert.Equal(t, "orders:5", Name(KindOrders, 5))
	assert.Equal(t, "fills:18446744073709551615", Name(KindFills, marketv1.MarketID(^uint64(0))))
	assert.Equal(t, "price_levels:0", Name(KindPriceLevels, 0))
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		wantKind Kind
		wantID   marketv1.MarketID
		wantErr  bool
	}{
		{name: "orders", input: "orders:5", wantKind: KindOrders, wantID: 5},
		{name: "fills", input: "fills:12", wantKind: KindFills, wantID: 12},
		{name: "price levels", input: "price_levels:3", wantKind: KindPriceLevels, wantID: 3},
		{name: "unknown kind", input: "trades:5", wantErr: true},
		{name: "no suffix", input: "orders", wantErr: true},
		{name: "negative id", input: "orders:-1", wantErr: true},
		{name: "id overflow", input: "orders:18446744073709551616", wantErr: true},
		{name: "empty id", input: "orders:", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			kind, id, err := Parse(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantKind, kind)
			assert.Equal(t, tc.wantID, id)
		})
	}
}

func TestNames(t *testing.T) {
	names := Names(marketv1.NewSnapshot(7, 5))
	assert.Equal(t, []string{
		"orders:5", "fills:5", "price_levels:5",
		"orders:7", "fills:7", "price_levels:7",
	}, names)

	assert.Empty(t, Names(marketv1.NewSnapshot()))
}

func TestKinds(t *testing.T) {
	got := Kinds()
	assert.Equal(t, []Kind{KindOrders, KindFills, KindPriceLevels}, got)

	got[0] = "mutated"
	assert.True(t, KindOrders.Valid())
	assert.False(t, Kind("mutated").Valid())
}
