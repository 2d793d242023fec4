package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared across domains. Controllers map them to HTTP
// statuses with errors.Is; usecases wrap them with context via fmt.Errorf.
var (
	// ErrUnauthorized means no identity could be resolved for the request.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoWorkspace means the caller is known but selected no workspace.
	ErrNoWorkspace = errors.New("no workspace selected")

	// ErrForbidden means the identity is known but access is denied.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is also returned when a resource exists but the caller
	// must not learn that it does (cross-tenant probes).
	ErrNotFound = errors.New("not found")

	// ErrEntitlementRequired means identity and access are fine but the
	// workspace plan does not include the capability. Kept distinct from
	// ErrForbidden so callers can render an upgrade prompt.
	ErrEntitlementRequired = errors.New("entitlement required")

	// ErrConflict signals an invariant violation on write.
	ErrConflict = errors.New("conflict")

	// ErrInternal wraps unexpected infrastructure failures.
	ErrInternal = errors.New("internal error")
)

// ValidationError carries the offending field so the caller can surface it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validation builds a field-level validation error.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Status maps an error to the HTTP status the API contract promises.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNoWorkspace):
		return http.StatusBadRequest
	case errors.Is(err, ErrEntitlementRequired):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case IsValidation(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
