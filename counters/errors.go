package counters

import (
	"errors"
	"fmt"
)

// DecodeError indicates that a byte sequence is not a valid counter collection.
type DecodeError struct {
	// Offset is the byte offset at which decoding failed
	Offset int

	// Reason describes what was wrong
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid counter collection at offset %d: %s", e.Offset, e.Reason)
}

// IsDecodeError returns true if err is or wraps a DecodeError.
func IsDecodeError(err error) bool {
	var e *DecodeError
	return errors.As(err, &e)
}
