package model

import (
	"errors"
	"fmt"
)

// Domain error kinds. Callers classify with errors.Is; every failure is
// returned before any state is touched, never after a partial write.
var (
	// ErrValidation marks malformed input to create/update.
	ErrValidation = errors.New("validation failed")

	// ErrImmutableField marks an update that tried to set a field only
	// the decision path may change (status, approved session id).
	ErrImmutableField = errors.New("field is immutable")

	// ErrRefundParentRequired marks a refund expense with no parent.
	ErrRefundParentRequired = errors.New("refund expense requires a parent expense")

	// ErrRefundParentForbidden marks a non-refund expense carrying a parent.
	ErrRefundParentForbidden = errors.New("non-refund expense cannot reference a parent expense")
)

// Validationf wraps ErrValidation with detail about the failing field.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
