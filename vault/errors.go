package vault

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds recognized by the resolver.
const (
	// ErrCodeMissing indicates the named secret does not exist in the vault.
	ErrCodeMissing = "CREDENTIAL_MISSING"

	// ErrCodeBackend indicates the vault itself rejected or failed the request.
	ErrCodeBackend = "CREDENTIAL_BACKEND_ERROR"
)

// Error is a structured credential resolution error. Message is always
// safe and useful to show the operator directly.
type Error struct {
	// Code is ErrCodeMissing or ErrCodeBackend.
	Code string

	// SecretName is the vault secret name that was being resolved.
	SecretName string

	// Message is the operator-facing description, including the action to take.
	Message string

	// Cause is the underlying backend error.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying backend error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsMissing reports whether err is a credential resolution error for a
// secret that does not exist.
func IsMissing(err error) bool {
	var ve *Error
	return errors.As(err, &ve) && ve.Code == ErrCodeMissing
}

// classifyBackendError maps raw vault backend failures onto operator-facing
// messages. The string matching mirrors the error shapes the vault SDK
// produces; anything unrecognized keeps the underlying message attached.
func classifyBackendError(secretName string, err error) *Error {
	msg := err.Error()
	lower := strings.ToLower(msg)

	// Not-found is checked before the broad "tenant" substring so a
	// message like "404 secret not found in tenant xyz" maps to missing.
	switch {
	case strings.Contains(lower, "not found") || strings.Contains(msg, "404"):
		return &Error{
			Code:       ErrCodeMissing,
			SecretName: secretName,
			Message:    fmt.Sprintf("Secret %q does not exist; ask your administrator to create it in the vault.", secretName),
			Cause:      err,
		}
	case strings.Contains(lower, "forbidden") || strings.Contains(msg, "403"):
		return &Error{
			Code:       ErrCodeBackend,
			SecretName: secretName,
			Message:    "Your account lacks read permission on the vault; ask your administrator for the secrets reader role.",
			Cause:      err,
		}
	case strings.Contains(msg, "Invalid issuer") || strings.Contains(lower, "tenant"):
		return &Error{
			Code:       ErrCodeBackend,
			SecretName: secretName,
			Message:    "Key Vault is in a different tenant; ask your administrator to verify the vault configuration.",
			Cause:      err,
		}
	default:
		return &Error{
			Code:       ErrCodeBackend,
			SecretName: secretName,
			Message:    fmt.Sprintf("Failed to retrieve secret %q: %s", secretName, msg),
			Cause:      err,
		}
	}
}
