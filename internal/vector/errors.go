package vector

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrEmptyQuery     = errors.New("vector: empty query embedding")
	ErrDimMismatch    = errors.New("vector: embedding dimension mismatch")
	ErrStorageCorrupt = errors.New("vector: persisted index data corrupted")
	ErrEmptyEmbedding = errors.New("vector: entry has empty embedding")
	ErrEntryCountSkew = errors.New("vector: entry and vector counts differ")
)

// Error wraps errors with operation context.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("vector.%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError wraps an error with operation context.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
