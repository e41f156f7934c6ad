package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is matched by every rejected cost computation
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrMixedCurrency is matched when a job's priced lines resolve to different currencies
	ErrMixedCurrency = errors.New("mixed currencies")
)

// InvalidParameterError names the job parameter that made a computation impossible
type InvalidParameterError struct {
	Field  string
	Value  string
	Reason string
	kind   error
}

// NewInvalidParameterError creates an InvalidParameterError for field
func NewInvalidParameterError(field, value, reason string) *InvalidParameterError {
	return &InvalidParameterError{Field: field, Value: value, Reason: reason, kind: ErrInvalidParameter}
}

// NewMixedCurrencyError reports the two conflicting currency codes
func NewMixedCurrencyError(first, second string) *InvalidParameterError {
	return &InvalidParameterError{
		Field:  "currency",
		Value:  second,
		Reason: fmt.Sprintf("lines priced in both %s and %s", first, second),
		kind:   ErrMixedCurrency,
	}
}

func (e *InvalidParameterError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %s: %s", e.Field, e.Value, e.Reason)
}

// Is lets errors.Is match both ErrInvalidParameter and the specific kind
func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter || (e.kind != nil && target == e.kind)
}

// Failure converts the error into the plain record stored on a rejected result
func (e *InvalidParameterError) Failure() *Failure {
	return &Failure{Field: e.Field, Value: e.Value, Reason: e.Reason}
}

// Failure describes why a computation was rejected
type Failure struct {
	Field  string `json:"field"`
	Value  string `json:"value,omitempty"`
	Reason string `json:"reason"`
}

func (f Failure) String() string {
	if f.Value == "" {
		return fmt.Sprintf("%s: %s", f.Field, f.Reason)
	}
	return fmt.Sprintf("%s=%s: %s", f.Field, f.Value, f.Reason)
}
