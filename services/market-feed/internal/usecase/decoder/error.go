package decoder

import (
	"fmt"

	"github.com/muhammadchandra19/exchange/pkg/errors"
)

// Reason classifies a decode failure.
type Reason string

const (
	// ReasonMalformed is a payload that is not a valid record, or a field
	// holding a value outside its enumeration.
	ReasonMalformed Reason = "malformed"
	// ReasonMissing is a required field absent from the payload.
	ReasonMissing Reason = "missing"
	// ReasonConversion is a numeric field outside the fixed-point domain.
	ReasonConversion Reason = "conversion"
	// ReasonInconsistent is an embedded market id that differs from the
	// channel's market.
	ReasonInconsistent Reason = "inconsistent"
	// ReasonUnknownChannel is a channel name the feed does not handle.
	ReasonUnknownChannel Reason = "unknown_channel"
)

// DecodeError reports why a payload was rejected. For conversion failures Err
// wraps the fixed-point ConversionError.
type DecodeError struct {
	Channel string
	Field   string
	Reason  Reason
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode %s: %s: %v", e.Channel, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %s: %s field %s: %v", e.Channel, e.Reason, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Code returns the error code of a decode failure.
func (e *DecodeError) Code() errors.ErrorCode {
	return errors.DecodeError
}
