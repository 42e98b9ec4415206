package checkout

import (
	"errors"
	"fmt"

	"traceaq/models"
)

var (
	ErrUnknownField       = errors.New("unknown field")
	ErrUnknownStep        = errors.New("unknown step")
	ErrStepNotOpen        = errors.New("step is not open for editing")
	ErrActionInProgress   = errors.New("action already in progress")
	ErrStaleResponse      = errors.New("response arrived after the checkout moved on")
	ErrPurchaseNotEnabled = errors.New("purchase is not enabled until every step is saved")
	ErrSessionNotFound    = errors.New("checkout session not found or expired")
	ErrInvalidSeats       = errors.New("seats must be between 1 and 10000")
)

// StepIncompleteError is returned when an advance is attempted on a step that fails validation.
type StepIncompleteError struct {
	Step   models.Step
	Fields map[models.FieldName]string
}

func (e *StepIncompleteError) Error() string {
	return fmt.Sprintf("%s step is incomplete (%d invalid fields)", e.Step, len(e.Fields))
}

// ErrNavigationBlocked is returned when a step is opened before the steps leading to it were saved.
var ErrNavigationBlocked = errors.New("complete the previous steps first")
