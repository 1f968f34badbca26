package provision

import (
	"errors"
	"fmt"
)

// CapacityError indicates that the secure counters do not fit in the
// provisioning area.
type CapacityError struct {
	// Required is the encoded size of the counter collection
	Required uint64

	// Existing is the space taken by the merged provisioning image, zero in standalone mode
	Existing uint64

	// MaxSize is the size of the provisioning area
	MaxSize uint64
}

func (e *CapacityError) Error() string {
	if e.Existing > 0 {
		return fmt.Sprintf("secure counters don't fit: %d bytes of counters plus %d bytes of provision data exceed maximum size of %d bytes by %d; reduce the number of counter types or counter slots and try again",
			e.Required, e.Existing, e.MaxSize, e.Required+e.Existing-e.MaxSize)
	}
	return fmt.Sprintf("secure counters don't fit: %d bytes exceed maximum size of %d bytes by %d; reduce the number of counter types or counter slots and try again",
		e.Required, e.MaxSize, e.Required-e.MaxSize)
}

// IsCapacityError returns true if err is or wraps a CapacityError.
func IsCapacityError(err error) bool {
	var e *CapacityError
	return errors.As(err, &e)
}

// ConfigError indicates an invalid Config field.
type ConfigError struct {
	// Field names the offending setting
	Field string

	// Err describes the problem
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
