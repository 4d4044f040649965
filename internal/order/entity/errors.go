package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalTransition is wrapped by every rejected status change.
	ErrIllegalTransition = errors.New("illegal transition")
	// ErrInvalidInput marks caller mistakes that are never retried.
	ErrInvalidInput = errors.New("invalid input")
)

// TransitionError names the current and the requested status.
type TransitionError struct {
	Entity string
	From   string
	To     string
	Reason string
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("illegal transition: %s status %q cannot move to %q", e.Entity, e.From, e.To)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// NewTransitionError builds a TransitionError from any status type.
func NewTransitionError[S ~string](entity string, from, to S, reason string) *TransitionError {
	return &TransitionError{Entity: entity, From: string(from), To: string(to), Reason: reason}
}

// InvalidInput wraps ErrInvalidInput with a readable message.
func InvalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
