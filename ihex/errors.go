package ihex

import (
	"errors"
	"fmt"
)

// ErrEmptyImage indicates a HEX source without any data records.
var ErrEmptyImage = errors.New("image contains no data")

// ErrAddressRange indicates data placed beyond the 32-bit Intel HEX address space.
var ErrAddressRange = errors.New("address outside the Intel HEX address space")

// OverlapError indicates that new data collides with data already in place.
type OverlapError struct {
	// Address and End delimit the new data (End is exclusive)
	Address uint64
	End     uint64

	// ExistingStart and ExistingEnd delimit the colliding segment (End is exclusive)
	ExistingStart uint64
	ExistingEnd   uint64
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("data at 0x%08X-0x%08X overlaps existing data at 0x%08X-0x%08X",
		e.Address, e.End-1, e.ExistingStart, e.ExistingEnd-1)
}

// IsOverlapError returns true if err is or wraps an OverlapError.
func IsOverlapError(err error) bool {
	var e *OverlapError
	return errors.As(err, &e)
}

// ParseError indicates a malformed or unreadable HEX source.
type ParseError struct {
	// Path is the file that failed to parse, empty for readers
	Path string

	// Err is the underlying failure
	Err error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to parse Intel HEX: %v", e.Err)
	}
	return fmt.Sprintf("failed to parse Intel HEX file %q: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
