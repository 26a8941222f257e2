package fixedpoint

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToU64(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		want     uint64
		assertFn func(t *testing.T, err error)
	}{
		{
			name:  "zero",
			input: "0",
			want:  0,
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:  "integer with trailing zero fraction",
			input: "120.000",
			want:  120,
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:  "max uint64",
			input: "18446744073709551615",
			want:  math.MaxUint64,
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:  "overflow by one",
			input: "18446744073709551616",
			assertFn: func(t *testing.T, err error) {
				assert.True(t, IsConversionError(err))
			},
		},
		{
			name:  "fractional",
			input: "3.501",
			assertFn: func(t *testing.T, err error) {
				assert.True(t, IsConversionError(err))
			},
		},
		{
			name:  "negative",
			input: "-1",
			assertFn: func(t *testing.T, err error) {
				assert.True(t, IsConversionError(err))
			},
		},
		{
			name:  "huge positive exponent",
			input: "1e999999999",
			assertFn: func(t *testing.T, err error) {
				assert.True(t, IsConversionError(err))
			},
		},
		{
			name:  "huge negative exponent",
			input: "1e-999999999",
			assertFn: func(t *testing.T, err error) {
				assert.True(t, IsConversionError(err))
			},
		},
		{
			name:  "zero with huge negative exponent",
			input: "0e-999999999",
			want:  0,
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:  "negative with huge exponent",
			input: "-1e999999999",
			assertFn: func(t *testing.T, err error) {
				assert.True(t, IsConversionError(err))
			},
		},
		{
			name:  "integer spelled with negative exponent",
			input: "18446744073709551615000e-3",
			want:  math.MaxUint64,
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:  "twenty digits past the range",
			input: "2e19",
			assertFn: func(t *testing.T, err error) {
				assert.True(t, IsConversionError(err))
			},
		},
		{
			name:  "largest power of ten in range",
			input: "1e19",
			want:  10000000000000000000,
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:  "negative zero",
			input: "-0.00",
			want:  0,
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			type result struct {
				got uint64
				err error
			}
			done := make(chan result, 1)
			go func() {
				got, err := ToU64("size", decimal.RequireFromString(tc.input))
				done <- result{got, err}
			}()

			select {
			case r := <-done:
				tc.assertFn(t, r.err)
				assert.Equal(t, tc.want, r.got)
			case <-time.After(time.Second):
				t.Fatalf("ToU64(%q) did not return", tc.input)
			}
		})
	}
}

func TestToU64_ErrorCarriesField(t *testing.T) {
	_, err := ToU64("price", decimal.RequireFromString("0.5"))
	require.Error(t, err)

	details, ok := err.(*errors.ErrorDetails)
	require.True(t, ok)
	assert.Equal(t, "price", details.Field)
	assert.Equal(t, string(errors.ConversionError), details.Code)
}

func TestScaledToU64(t *testing.T) {
	size, err := ScaledToU64("size", decimal.RequireFromString("12.0"), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(120), size)

	price, err := ScaledToU64("price", decimal.RequireFromString("3.50"), 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(350), price)

	_, err = ScaledToU64("price", decimal.RequireFromString("3.501"), 2)
	assert.True(t, IsConversionError(err))

	_, err = ScaledToU64("price", decimal.RequireFromString("3"), -1)
	assert.True(t, IsConversionError(err))

	_, err = ScaledToU64("price", decimal.New(1, math.MaxInt32), 2)
	assert.True(t, IsConversionError(err))

	_, err = ScaledToU64("price", decimal.New(1, math.MaxInt32-2), 2)
	assert.True(t, IsConversionError(err))

	zero, err := ScaledToU64("price", decimal.New(0, math.MaxInt32), 2)
	require.NoError(t, err)
	assert.Zero(t, zero)
}

func TestOptionalToU64(t *testing.T) {
	got, err := OptionalToU64("custodian_id", nil)
	assert.NoError(t, err)
	assert.Nil(t, got)

	zero := decimal.Zero
	got, err = OptionalToU64("custodian_id", &zero)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint64(0), *got)

	bad := decimal.RequireFromString("1.5")
	_, err = OptionalToU64("custodian_id", &bad)
	assert.True(t, IsConversionError(err))
}

func TestParseU64(t *testing.T) {
	got, err := ParseU64("market_id", "5")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), got)

	_, err = ParseU64("market_id", "five")
	assert.True(t, IsConversionError(err))
}

func TestNumericToU64(t *testing.T) {
	testCases := []struct {
		name    string
		input   pgtype.Numeric
		want    uint64
		wantErr bool
	}{
		{name: "integer", input: pgtype.Numeric{Int: big.NewInt(42), Exp: 0, Valid: true}, want: 42},
		{name: "positive exponent", input: pgtype.Numeric{Int: big.NewInt(42), Exp: 2, Valid: true}, want: 4200},
		{name: "zero fraction", input: pgtype.Numeric{Int: big.NewInt(4200), Exp: -2, Valid: true}, want: 42},
		{name: "fraction", input: pgtype.Numeric{Int: big.NewInt(4201), Exp: -2, Valid: true}, wantErr: true},
		{name: "null", input: pgtype.Numeric{}, wantErr: true},
		{name: "nan", input: pgtype.Numeric{NaN: true, Valid: true}, wantErr: true},
		{name: "infinity", input: pgtype.Numeric{InfinityModifier: pgtype.Infinity, Valid: true}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NumericToU64("lot_size", tc.input)
			if tc.wantErr {
				assert.True(t, IsConversionError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestOptionalNumericToU64(t *testing.T) {
	got, err := OptionalNumericToU64("custodian_id", pgtype.Numeric{})
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = OptionalNumericToU64("custodian_id", pgtype.Numeric{Int: big.NewInt(9), Valid: true})
	require.NoError(t, err)
	assert.Equal(t, uint64(9), *got)
}
