// Package fixedpoint converts arbitrary-precision decimals coming from the
// relational store and from broker payloads into the unsigned 64-bit
// fixed-point integers used throughout the pipeline.
//
// Every monetary, size, price and identifier field passes through ToU64 (or
// one of its wrappers) so that validation and the error shape are the same
// regardless of the event kind being decoded.
package fixedpoint

import (
	"math"
	"math/big"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/shopspring/decimal"
)

// maxU64Digits is the number of decimal digits of 2^64-1.
const maxU64Digits = 20

var ten = big.NewInt(10)

// ToU64 returns d as a uint64. It fails with a ConversionError naming field
// when d is negative, has a non-zero fractional part, or exceeds 2^64-1.
//
// The checks work on the coefficient digits and the exponent, so the cost is
// bounded by the length of the input whatever its exponent.
func ToU64(field string, d decimal.Decimal) (uint64, error) {
	coef := d.Coefficient()
	switch coef.Sign() {
	case 0:
		return 0, nil
	case -1:
		return 0, NewConversionError(field, "value is negative")
	}

	digits := coef.Text(10)
	exp := int64(d.Exponent())
	n := int64(len(digits))

	if n+exp > maxU64Digits {
		return 0, NewConversionError(field, "value exceeds the unsigned 64-bit range")
	}
	if exp < 0 {
		// a non-zero coefficient shorter than the scale is below one
		if -exp > n || strings.TrimLeft(digits[n+exp:], "0") != "" {
			return 0, NewConversionError(field, "value has a fractional component")
		}
		coef.SetString(digits[:n+exp], 10)
		exp = 0
	}

	coef.Mul(coef, pow10(exp))
	if !coef.IsUint64() {
		return 0, NewConversionError(field, "value exceeds the unsigned 64-bit range")
	}

	return coef.Uint64(), nil
}

func pow10(n int64) *big.Int {
	return new(big.Int).Exp(ten, big.NewInt(n), nil)
}

// ScaledToU64 multiplies d by 10^decimals before converting it, which turns a
// human readable quantity such as "3.50" into its minimum-unit integer (350
// for two decimals).
func ScaledToU64(field string, d decimal.Decimal, decimals int32) (uint64, error) {
	if decimals < 0 {
		return 0, NewConversionError(field, "negative decimal precision")
	}
	if !d.IsZero() && d.Exponent() > math.MaxInt32-decimals {
		return 0, NewConversionError(field, "value exceeds the unsigned 64-bit range")
	}
	return ToU64(field, d.Shift(decimals))
}

// OptionalToU64 converts d when present. A nil input is a distinct "absent"
// state and yields a nil result, never zero.
func OptionalToU64(field string, d *decimal.Decimal) (*uint64, error) {
	if d == nil {
		return nil, nil
	}
	v, err := ToU64(field, *d)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ParseU64 parses a textual decimal and converts it with ToU64. Parse
// failures are reported as a ConversionError for field as well.
func ParseU64(field, s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, NewConversionError(field, "value is not a decimal number")
	}
	return ToU64(field, d)
}

// FromNumeric converts a PostgreSQL NUMERIC value scanned by pgx into a
// decimal. NaN, infinities and NULL are rejected with a ConversionError.
func FromNumeric(field string, n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Decimal{}, NewConversionError(field, "value is null")
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Decimal{}, NewConversionError(field, "value is not a finite number")
	}
	if n.Int == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}

// NumericToU64 is FromNumeric followed by ToU64.
func NumericToU64(field string, n pgtype.Numeric) (uint64, error) {
	d, err := FromNumeric(field, n)
	if err != nil {
		return 0, err
	}
	return ToU64(field, d)
}

// OptionalNumericToU64 converts a nullable NUMERIC column. NULL maps to nil.
func OptionalNumericToU64(field string, n pgtype.Numeric) (*uint64, error) {
	if !n.Valid {
		return nil, nil
	}
	v, err := NumericToU64(field, n)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ToDecimal re-expands a fixed-point value into a decimal.
func ToDecimal(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

// NewConversionError returns the ConversionError shape shared by all
// conversion failures.
func NewConversionError(field, message string) *errors.ErrorDetails {
	return errors.NewErrorDetails(message, string(errors.ConversionError), field)
}

// IsConversionError reports whether err is, or wraps, a ConversionError.
func IsConversionError(err error) bool {
	return errors.ErrorCodeEquals(err, string(errors.ConversionError))
}
