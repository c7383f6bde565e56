package chain

import (
	"fmt"

	"github.com/pkg/errors"
)

// Errors
var (
	ErrEmptyChain           = errors.New("chain has no genesis block")
	ErrDifficultyOutOfRange = errors.New("difficulty out of range")
	ErrBlockNotFound        = errors.New("block not found")
)

// Reason describes why a block failed validation.
type Reason string

const (
	ReasonHashMismatch   Reason = "hash does not match block contents"
	ReasonBrokenLink     Reason = "previous hash does not match predecessor"
	ReasonUnserializable Reason = "payload cannot be serialized"
)

// ValidationError reports the first block that broke the chain. It is a
// value describing a tampered chain, not a failure of the validator.
type ValidationError struct {
	Index  int
	Reason Reason
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("block %d invalid: %s: %v", e.Index, e.Reason, e.Err)
	}
	return fmt.Sprintf("block %d invalid: %s", e.Index, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
