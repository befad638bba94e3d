package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a tabprofile error code.
type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"     // 400
	ErrNameRequired      ErrorCode = "NAME_REQUIRED"       // 400
	ErrUnknownAction     ErrorCode = "UNKNOWN_ACTION"      // 400
	ErrForbidden         ErrorCode = "FORBIDDEN"           // 403
	ErrNotFound          ErrorCode = "NOT_FOUND"           // 404
	ErrNameAlreadyExists ErrorCode = "NAME_ALREADY_EXISTS" // 409
	ErrAlreadyActive     ErrorCode = "ALREADY_ACTIVE"      // 409
	ErrNoActiveProfile   ErrorCode = "NO_ACTIVE_PROFILE"   // 409
	ErrInternal          ErrorCode = "INTERNAL"            // 500
	ErrInfrastructure    ErrorCode = "INFRASTRUCTURE"      // 503
)

// ProfileError represents a structured error with code, status, and details.
type ProfileError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	// Err is the underlying cause for infrastructure and internal errors.
	Err error
}

// Error implements the error interface.
func (e *ProfileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *ProfileError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether the error was caused by the command itself
// rather than by storage, the browser, or a bug.
func (e *ProfileError) IsValidation() bool {
	switch e.Code {
	case ErrInternal, ErrInfrastructure:
		return false
	default:
		return true
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *ProfileError {
	return &ProfileError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNameRequired creates a 400 error for a missing or blank profile name.
func NewNameRequired() *ProfileError {
	return &ProfileError{
		Code:    ErrNameRequired,
		Status:  400,
		Message: "profile name missing",
	}
}

// NewUnknownAction creates a 400 error for an unrecognized command.
func NewUnknownAction(action string) *ProfileError {
	return &ProfileError{
		Code:    ErrUnknownAction,
		Status:  400,
		Message: fmt.Sprintf("unknown action: %q", action),
		Details: map[string]any{"action": action},
	}
}

// NewForbidden creates a 403 error for a request refused before dispatch,
// such as a cross-origin browser request.
func NewForbidden(msg string) *ProfileError {
	return &ProfileError{
		Code:    ErrForbidden,
		Status:  403,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a profile cannot be found.
func NewNotFound(name string) *ProfileError {
	return &ProfileError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("profile not found: %s", name),
		Details: map[string]any{"name": name},
	}
}

// NewNameAlreadyExists creates a 409 error for name collisions.
func NewNameAlreadyExists(name string) *ProfileError {
	return &ProfileError{
		Code:    ErrNameAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("profile %q already exists", name),
		Details: map[string]any{"name": name},
	}
}

// NewAlreadyActive creates a 409 error when activating the current profile.
func NewAlreadyActive(name string) *ProfileError {
	return &ProfileError{
		Code:    ErrAlreadyActive,
		Status:  409,
		Message: fmt.Sprintf("profile %q is already active", name),
		Details: map[string]any{"name": name},
	}
}

// NewNoActiveProfile creates a 409 error when deactivating with nothing active.
func NewNoActiveProfile() *ProfileError {
	return &ProfileError{
		Code:    ErrNoActiveProfile,
		Status:  409,
		Message: "no active profile to deactivate",
	}
}

// NewInfrastructure creates a 503 error for a failed storage or browser call.
// op names the collaborator call that failed, e.g. "storage get" or "tabs query".
func NewInfrastructure(op string, err error) *ProfileError {
	msg := op + " failed"
	if err != nil {
		msg = fmt.Sprintf("%s failed: %v", op, err)
	}
	return &ProfileError{
		Code:    ErrInfrastructure,
		Status:  503,
		Message: msg,
		Details: map[string]any{"op": op},
		Err:     err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the cause is kept in Details for logging.
func NewInternal(err error) *ProfileError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &ProfileError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
		Err:     err,
	}
}

// As extracts a *ProfileError from err, following wrap chains.
func As(err error) (*ProfileError, bool) {
	var pErr *ProfileError
	if stderrors.As(err, &pErr) {
		return pErr, true
	}
	return nil, false
}

// Is checks if an error is (or wraps) a ProfileError with the given code.
func Is(err error, code ErrorCode) bool {
	if pErr, ok := As(err); ok {
		return pErr.Code == code
	}
	return false
}

// StatusOf returns the HTTP status for a code. Unknown codes map to 500.
func StatusOf(code ErrorCode) int {
	switch code {
	case ErrInvalidRequest, ErrNameRequired, ErrUnknownAction:
		return 400
	case ErrForbidden:
		return 403
	case ErrNotFound:
		return 404
	case ErrNameAlreadyExists, ErrAlreadyActive, ErrNoActiveProfile:
		return 409
	case ErrInfrastructure:
		return 503
	default:
		return 500
	}
}
