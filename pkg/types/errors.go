package types

import "github.com/pkg/errors"

// Errors
var (
	ErrSerialization  = errors.New("payload cannot be canonically serialized")
	ErrNonceExhausted = errors.New("nonce space exhausted before proof-of-work was found")
)

// SerializationError is returned when a block payload cannot be encoded into
// its canonical form. It matches ErrSerialization with errors.Is.
type SerializationError struct {
	Cause error
}

func (e *SerializationError) Error() string {
	return ErrSerialization.Error() + ": " + e.Cause.Error()
}

func (e *SerializationError) Unwrap() error {
	return e.Cause
}

func (e *SerializationError) Is(target error) bool {
	return target == ErrSerialization
}
