package game

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package matches exactly one of
// these with errors.Is.
var (
	// ErrValidation marks a rejected bet or action. Round state is unchanged
	// and the caller may retry.
	ErrValidation = errors.New("validation error")
	// ErrConfig marks an illegal construction parameter.
	ErrConfig = errors.New("configuration error")
	// ErrState marks an internal inconsistency such as an exhausted shoe.
	// The round that produced it cannot continue.
	ErrState = errors.New("state error")
)

// ValidationError describes a rejected input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConfigError describes an illegal construction parameter.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return "configuration error: " + e.Reason
}

func (e *ConfigError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConfig}
	}
	return []error{ErrConfig, e.Err}
}

// StateError describes a failure that leaves a round unable to continue.
type StateError struct {
	Op  string
	Err error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state error during %s: %v", e.Op, e.Err)
}

func (e *StateError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrState}
	}
	return []error{ErrState, e.Err}
}

// IsRecoverable reports whether err is a validation failure the caller can
// answer by re-prompting.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrValidation)
}
