package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Signing errors (SIGN_*)
	ErrorCodeSignMissingField ErrorCode = "SIGN_MISSING_FIELD"

	// Callback verification errors (CALLBACK_*)
	// These never reach callers of VerifySignature; they exist for
	// logging and metrics only.
	ErrorCodeCallbackDecode       ErrorCode = "CALLBACK_DECODE"
	ErrorCodeCallbackMalformed    ErrorCode = "CALLBACK_MALFORMED"
	ErrorCodeCallbackMissingField ErrorCode = "CALLBACK_MISSING_FIELD"

	// Status fetch errors (STATUS_*)
	ErrorCodeStatusRemote ErrorCode = "STATUS_REMOTE"

	// Session errors (SESSION_*)
	ErrorCodeSessionNotSigned ErrorCode = "SESSION_NOT_SIGNED"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// MissingFieldError is returned by Sign when a field named in the signing
// order has no value. Signing never substitutes an empty string: a silently
// shortened message would still yield a syntactically valid signature over
// the wrong content.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("signing field %q has no value", e.Field)
}

// RemoteStatusError reports a failed transaction status lookup against the
// eSewa status endpoint. It is never retried internally; retrying is the
// caller's decision.
type RemoteStatusError struct {
	Err        error
	Body       string
	StatusCode int
}

func (e *RemoteStatusError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("status fetch failed: gateway returned %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("status fetch failed: %v", e.Err)
}

// Unwrap returns the underlying transport error, if any
func (e *RemoteStatusError) Unwrap() error {
	return e.Err
}

// ErrSessionNotSigned is returned when an operation needs the outbound
// signature before CreateSignature has been called.
var ErrSessionNotSigned = NewDomainError(ErrorCodeSessionNotSigned, "session has no signature yet; call CreateSignature first")
