package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodeEquals(t *testing.T) {
	details := NewErrorDetails("has a fractional component", string(ConversionError), "price")

	testCases := []struct {
		name string
		err  error
		code string
		want bool
	}{
		{name: "direct match", err: details, code: string(ConversionError), want: true},
		{name: "wrapped match", err: fmt.Errorf("decode: %w", details), code: string(ConversionError), want: true},
		{name: "different code", err: details, code: string(DecodeError), want: false},
		{name: "plain error", err: stderrors.New("boom"), code: string(ConversionError), want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ErrorCodeEquals(tc.err, tc.code))
		})
	}
}

func TestErrorDetails_Error(t *testing.T) {
	assert.Equal(t, "price: has a fractional component",
		NewErrorDetails("has a fractional component", string(ConversionError), "price").Error())
	assert.Equal(t, "bus closed", NewErrorDetails("bus closed", string(BusClosed), "").Error())
}

func TestBaseError(t *testing.T) {
	baseErr := NewBaseError()
	assert.False(t, baseErr.HasDetails())

	baseErr.AddErrorDetails(
		NewErrorDetails("must be positive", string(ConfigError), "FEED_BUS_CAPACITY"),
		NewErrorDetails("must not be negative", string(ConfigError), "FEED_PRICE_DECIMALS"),
	)

	assert.True(t, baseErr.HasDetails())
	assert.True(t, baseErr.IsAnyCodeEqual(string(ConfigError)))
	assert.False(t, baseErr.IsAnyCodeEqual(string(StoreError)))
	assert.Equal(t, []string{"FEED_BUS_CAPACITY", "FEED_PRICE_DECIMALS"}, baseErr.FieldNames())
	assert.Contains(t, baseErr.Error(), "field: FEED_PRICE_DECIMALS")
}

func TestTracerFromError(t *testing.T) {
	cause := stderrors.New("connection refused")
	tracer := TracerFromError(cause)

	assert.Equal(t, "connection refused", tracer.Error())
	assert.True(t, stderrors.Is(tracer, cause))
	assert.NotNil(t, tracer.StackTrace())
}

func TestNewTracerWithCode(t *testing.T) {
	tracer := NewTracerWithCode(StoreError, "query markets").Wrap(stderrors.New("timeout"))

	assert.Equal(t, StoreError, tracer.Code)
	assert.Equal(t, "query markets", tracer.Error())
	assert.EqualError(t, tracer.Unwrap(), "timeout")
}
