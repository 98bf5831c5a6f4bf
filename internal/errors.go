package internal

import (
	"fmt"
	"net/http"
)

// FieldError describes a single failed field the way the API reports
// validation problems: one property, one or more named constraint failures.
type FieldError struct {
	Property    string            `json:"property"`
	Value       interface{}       `json:"value,omitempty"`
	Constraints map[string]string `json:"constraints,omitempty"`
	Children    []FieldError      `json:"children,omitempty"`
}

// AppError is the error value returned by every service layer for expected
// failures. Handlers serialize it verbatim as the HTTP response body:
//
//	{"statusCode": 400, "error": "Bad Request", "message": [...]}
//
// Message is either a plain string or a []FieldError list.
type AppError struct {
	StatusCode int         `json:"statusCode"`
	Name       string      `json:"error"`
	Message    interface{} `json:"message"`

	cause error
}

func (e *AppError) Error() string {
	if fields, ok := e.Message.([]FieldError); ok && len(fields) > 0 {
		return fmt.Sprintf("%s: %d field error(s)", e.Name, len(fields))
	}
	if msg, ok := e.Message.(string); ok {
		return msg
	}
	return e.Name
}

func (e *AppError) Unwrap() error { return e.cause }

// Fields returns the field-error list when Message carries one.
func (e *AppError) Fields() []FieldError {
	if fields, ok := e.Message.([]FieldError); ok {
		return fields
	}
	return nil
}

func NewBadRequest(fields []FieldError) *AppError {
	return &AppError{
		StatusCode: http.StatusBadRequest,
		Name:       "Bad Request",
		Message:    fields,
	}
}

// NewFieldError builds a 400 carrying a single field with one named
// constraint, e.g. NewFieldError("currentPassword", "passwordMatch", "...").
func NewFieldError(property, constraint, message string, value interface{}) *AppError {
	return NewBadRequest([]FieldError{{
		Property:    property,
		Value:       value,
		Constraints: map[string]string{constraint: message},
	}})
}

func NewNotFound() *AppError {
	return &AppError{
		StatusCode: http.StatusNotFound,
		Name:       "Not Found",
		Message:    "Not Found",
	}
}

// NewPermissionDenied carries the denying predicate's message; an empty
// reason falls back to the generic label.
func NewPermissionDenied(reason string) *AppError {
	if reason == "" {
		reason = "Permission Denied"
	}
	return &AppError{
		StatusCode: http.StatusForbidden,
		Name:       "Permission Denied",
		Message:    reason,
	}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{
		StatusCode: http.StatusUnauthorized,
		Name:       "Unauthorized",
		Message:    message,
	}
}

func NewInternal(message string, cause error) *AppError {
	return &AppError{
		StatusCode: http.StatusInternalServerError,
		Name:       "Internal Server Error",
		Message:    message,
		cause:      cause,
	}
}

// Authentication failures are deliberately vague so responses never leak
// whether a username or email exists.
var (
	ErrCredentialsInvalid = NewUnauthorized("invalid credentials")
	ErrAccessTokenInvalid = NewUnauthorized("access token invalid")

	// All reset-token failure modes collapse into this one error.
	ErrResetTokenInvalid = &AppError{
		StatusCode: http.StatusBadRequest,
		Name:       "Bad Request",
		Message:    "reset password token invalid",
	}

	// ErrDenylistNotConfigured is a configuration error, not an invalid-token
	// error: revocation was required but no denylist store was wired in.
	ErrDenylistNotConfigured = NewInternal("token denylist not configured", nil)
)

// AsAppError unwraps err into an *AppError, or wraps it as a 500.
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return NewInternal("internal server error", err)
}
