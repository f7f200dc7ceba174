package driver

import (
	"errors"
	"fmt"
	"strings"
)

// Standard error codes drivers use for consistent failure reporting.
const (
	// ErrCodeConfigInvalid indicates a vendor config file is missing or
	// does not match its schema.
	ErrCodeConfigInvalid = "CONFIG_INVALID"

	// ErrCodeCredentialMissing indicates a required vendor secret does
	// not exist in the vault.
	ErrCodeCredentialMissing = "CREDENTIAL_MISSING"

	// ErrCodeCredentialBackend indicates the vault itself failed.
	ErrCodeCredentialBackend = "CREDENTIAL_BACKEND_ERROR"

	// ErrCodeBrowserRuntimeMissing indicates the automation runtime is
	// not installed. This fails the whole run, not just one vendor.
	ErrCodeBrowserRuntimeMissing = "BROWSER_RUNTIME_MISSING"

	// ErrCodeBrowserLaunchFailed indicates the browser session could not start.
	ErrCodeBrowserLaunchFailed = "BROWSER_LAUNCH_FAILED"

	// ErrCodeAuthFailed indicates the vendor portal login failed.
	ErrCodeAuthFailed = "AUTH_FAILED"

	// ErrCodeMfaTimeout indicates the MFA challenge was never satisfied
	// within the configured window.
	ErrCodeMfaTimeout = "MFA_TIMEOUT"

	// ErrCodeNavigationFailed indicates a page or element never appeared.
	ErrCodeNavigationFailed = "NAVIGATION_FAILED"

	// ErrCodeFormFillFailed indicates a form field could not be populated.
	ErrCodeFormFillFailed = "FORM_FILL_FAILED"

	// ErrCodeSubmitFailed indicates the vendor rejected the submission.
	ErrCodeSubmitFailed = "SUBMIT_FAILED"

	// ErrCodeUnknownOutcome indicates the post-submit page state matched
	// no classification rule. Treated as failure with a diagnostic note.
	ErrCodeUnknownOutcome = "UNKNOWN_OUTCOME"

	// ErrCodeTeardownError indicates browser close failed. Logged only,
	// never surfaced on the result.
	ErrCodeTeardownError = "TEARDOWN_ERROR"
)

// Error is the structured error type vendor drivers return. It carries the
// vendor and lifecycle phase that failed, a taxonomy code, and an optional
// cause chain, and integrates with errors.Is / errors.As.
type Error struct {
	// Vendor is the id of the vendor whose provisioning failed.
	Vendor string

	// Phase is the lifecycle phase that failed (e.g. "authenticate", "submit").
	Phase string

	// Code is one of the ErrCode constants.
	Code string

	// Message is a human-readable description shown to the operator.
	Message string

	// Details contains additional context as key-value pairs.
	Details map[string]any

	// Cause is the underlying error, if any.
	Cause error
}

// New creates a driver Error with the given vendor, phase, code, and message.
func New(vendor, phase, code, message string) *Error {
	return &Error{
		Vendor:  vendor,
		Phase:   phase,
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface.
// Format: "vendor [phase/CODE]: message: cause"
func (e *Error) Error() string {
	var b strings.Builder

	if e.Vendor != "" {
		b.WriteString(e.Vendor)
		b.WriteString(" ")
	}
	fmt.Fprintf(&b, "[%s/%s]", e.Phase, e.Code)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As
// traversal of the chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a driver Error with the same code.
func (e *Error) Is(target error) bool {
	var de *Error
	if !errors.As(target, &de) {
		return false
	}
	return e.Code == de.Code
}

// WithCause attaches the underlying error. Returns the same instance for
// method chaining.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetails merges additional context into the error. Returns the same
// instance for method chaining.
func (e *Error) WithDetails(details map[string]any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// CodeOf extracts the taxonomy code from any error. Errors that are not
// driver Errors report "UNKNOWN".
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return "UNKNOWN"
}
