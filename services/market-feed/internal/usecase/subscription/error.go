package subscription

import (
	"fmt"

	"github.com/muhammadchandra19/exchange/pkg/errors"
)

// SubscriptionError reports a channel that could not be subscribed. Channel
// is empty when the shared broker connection itself could not be opened.
type SubscriptionError struct {
	Channel string
	Err     error
}

func (e *SubscriptionError) Error() string {
	if e.Channel == "" {
		return fmt.Sprintf("open subscriber: %v", e.Err)
	}
	return fmt.Sprintf("subscribe %s: %v", e.Channel, e.Err)
}

func (e *SubscriptionError) Unwrap() error {
	return e.Err
}

// Code returns the error code of a failed subscription.
func (e *SubscriptionError) Code() errors.ErrorCode {
	return errors.SubscriptionError
}
