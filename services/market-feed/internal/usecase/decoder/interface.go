package decoder

import (
	eventv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/event/v1"
)

//go:generate mockgen -source=interface.go -destination=mock/decoder_mock.go -package=mock

// Decoder turns a raw channel payload into an Update. Failures are returned
// as *DecodeError and only concern that one payload.
type Decoder interface {
	Decode(channel string, payload []byte) (eventv1.Update, error)
}
