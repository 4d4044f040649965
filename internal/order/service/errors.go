package service

import (
	"errors"
	"fmt"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"github.com/bitfantasy/joinery/internal/order/repository"
)

var (
	ErrNotFound          = repository.ErrNotFound
	ErrValidation        = entity.ErrInvalidInput
	ErrIllegalTransition = entity.ErrIllegalTransition
	ErrConflict          = errors.New("concurrent modification")
	ErrAlreadyConverted  = errors.New("quote already converted")
	ErrForbidden         = errors.New("forbidden")
)

// ConflictError reports a conditional update that lost a race.
// The caller may re-fetch and retry the user action.
type ConflictError struct {
	Entity   string
	ID       string
	Expected string
	Actual   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently: expected status %q, found %q", e.Entity, e.ID, e.Expected, e.Actual)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// Conversion pipeline steps, reported on failure.
const (
	StepLoadQuote     = "load_quote"
	StepCreateProject = "create_project"
	StepCreateItems   = "create_items"
	StepCreateInvoice = "create_deposit_invoice"
	StepConvertQuote  = "mark_quote_converted"
	StepUpdateEnquiry = "update_enquiry"
	StepGroupDrawings = "generate_drawing_requirements"
)

// ConversionError tells the caller which pipeline step failed.
// Nothing from the failed run is persisted.
type ConversionError struct {
	QuoteID string
	Step    string
	Err     error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert quote %s: step %s: %v", e.QuoteID, e.Step, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// ReleaseError reports a release that failed after the drawing was marked sent.
// The drawing status is kept; linked items need manual reconciliation.
type ReleaseError struct {
	DrawingID string
	Err       error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("release drawing %s to production: %v", e.DrawingID, e.Err)
}

func (e *ReleaseError) Unwrap() error {
	return e.Err
}

// Actor is the authenticated user behind a request.
type Actor struct {
	ID    string
	Roles []string
}

// HasRole reports whether the actor holds any of roles. Admins hold every role.
func (a Actor) HasRole(roles ...string) bool {
	for _, have := range a.Roles {
		if have == entity.RoleAdmin {
			return true
		}
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

func stepError(quoteID, step string, err error) error {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return err
	}
	return &ConversionError{QuoteID: quoteID, Step: step, Err: err}
}
