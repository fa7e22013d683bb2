// Package validators resolves user-supplied domains, ports and application sources
// into normalized values, rejecting malformed input before anything touches the host.
package validators

import (
	"errors"
	"fmt"
)

// ErrInvalidInput matches any *ValidationError via errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// Field names the kind of input a ValidationError refers to.
type Field string

const (
	FieldDomain Field = "domain"
	FieldPort   Field = "port"
	FieldSource Field = "source"
)

// ValidationError reports input that can never become valid by retrying.
type ValidationError struct {
	Field  Field
	Input  string // raw input as supplied by the user
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Input, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func newValidationError(field Field, input, reason string) *ValidationError {
	return &ValidationError{Field: field, Input: input, Reason: reason}
}

// IsValidationError reports whether err wraps a ValidationError, returning it if so.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
