package market

import (
	"fmt"

	"github.com/muhammadchandra19/exchange/pkg/errors"
)

// StoreError reports an unreachable store, a failed query or a row that
// could not be converted. Op names the repository operation.
type StoreError struct {
	Op  string
	Err error
}

func newStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: errors.TracerFromError(err)}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("market store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Code returns the error code of a store failure.
func (e *StoreError) Code() errors.ErrorCode {
	return errors.StoreError
}
