package protocol

import (
	"errors"
	"fmt"

	"github.com/dkeye/WatchParty/internal/core"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var ErrMalformed = errors.New("malformed frame")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Encode marshals v into a frame ready for SignalConnection.TrySend.
func Encode(v any) (core.Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return core.Frame(b), nil
}

// MustEncode is for frames built from server-owned values only.
func MustEncode(v any) core.Frame {
	f, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return f
}

// Decode unmarshals data into v and checks its validate tags.
// Any failure wraps ErrMalformed.
func Decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// PeekType returns the discriminator of a raw frame.
func PeekType(data []byte) (string, error) {
	var env Envelope
	if err := Decode(data, &env); err != nil {
		return "", err
	}
	return env.Type, nil
}
