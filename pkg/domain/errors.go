package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a delivery attempt is asked to move
// to a state not reachable from its current one
var ErrInvalidTransition = errors.New("invalid state transition")

// ValidationError reports a structurally invalid subscription or attempt
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
