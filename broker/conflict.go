package broker

import "fmt"

// ConflictKind tags the variants of a Conflict.
type ConflictKind string

const (
	// KindDuplicateUsername means the attempted username is taken.
	KindDuplicateUsername ConflictKind = "duplicate_username"

	// KindDuplicateEmail means the attempted email is already registered.
	KindDuplicateEmail ConflictKind = "duplicate_email"

	// KindDuplicateName means an account with the subject's name already
	// exists and the vendor wants confirmation before creating another.
	KindDuplicateName ConflictKind = "duplicate_name"

	// KindMfa means the vendor raised a code challenge that needs the
	// operator's attention outside the automated browser.
	KindMfa ConflictKind = "mfa"
)

// MfaKind says how the vendor delivers its second factor.
type MfaKind string

const (
	// MfaEmailCode is a one-time code sent to the service account mailbox.
	MfaEmailCode MfaKind = "email_code"

	// MfaSmsCode is a one-time code sent by SMS.
	MfaSmsCode MfaKind = "sms_code"

	// MfaInteractiveSso is an interactive single sign-on hop.
	MfaInteractiveSso MfaKind = "interactive_sso"
)

// Conflict is a vendor-reported anomaly that needs operator judgement.
// Use the constructor matching the kind; only the fields of that kind are
// populated.
type Conflict struct {
	// Kind tags which variant this is.
	Kind ConflictKind

	// VendorID names the vendor that raised the conflict.
	VendorID string

	// Attempted is the username or email that collided.
	// Set for duplicate_username and duplicate_email.
	Attempted string

	// SubjectName is the colliding display name. Set for duplicate_name.
	SubjectName string

	// Mfa describes the challenge delivery. Set for mfa.
	Mfa MfaKind

	// Hint carries vendor-specific context for the operator, such as the
	// masked delivery address. Set for mfa.
	Hint string
}

// DuplicateUsername builds a conflict for a taken username.
func DuplicateUsername(vendorID, attempted string) Conflict {
	return Conflict{Kind: KindDuplicateUsername, VendorID: vendorID, Attempted: attempted}
}

// DuplicateEmail builds a conflict for an already-registered email.
func DuplicateEmail(vendorID, attempted string) Conflict {
	return Conflict{Kind: KindDuplicateEmail, VendorID: vendorID, Attempted: attempted}
}

// DuplicateName builds a conflict for a colliding display name.
func DuplicateName(vendorID, subjectName string) Conflict {
	return Conflict{Kind: KindDuplicateName, VendorID: vendorID, SubjectName: subjectName}
}

// Mfa builds a conflict for a code challenge requiring external resolution.
func Mfa(vendorID string, kind MfaKind, hint string) Conflict {
	return Conflict{Kind: KindMfa, VendorID: vendorID, Mfa: kind, Hint: hint}
}

// String renders the conflict for logs and the operator dialog title.
func (c Conflict) String() string {
	switch c.Kind {
	case KindDuplicateUsername:
		return fmt.Sprintf("%s: username %q is already taken", c.VendorID, c.Attempted)
	case KindDuplicateEmail:
		return fmt.Sprintf("%s: email %q is already registered", c.VendorID, c.Attempted)
	case KindDuplicateName:
		return fmt.Sprintf("%s: an account named %q already exists", c.VendorID, c.SubjectName)
	case KindMfa:
		return fmt.Sprintf("%s: %s challenge (%s)", c.VendorID, c.Mfa, c.Hint)
	default:
		return fmt.Sprintf("%s: unknown conflict", c.VendorID)
	}
}

// ResolutionKind tags the operator's answer.
type ResolutionKind string

const (
	// ResolutionRetry retries the submit with replacement value(s).
	ResolutionRetry ResolutionKind = "retry"

	// ResolutionProceed creates the account despite the collision.
	ResolutionProceed ResolutionKind = "proceed"

	// ResolutionSkip abandons this vendor without treating it as an error.
	ResolutionSkip ResolutionKind = "skip"
)

// Resolution is the operator's answer to a Conflict.
type Resolution struct {
	// Kind tags the answer.
	Kind ResolutionKind

	// NewValue is the replacement username or email for a retry.
	NewValue string

	// NewUsername and NewEmail carry a paired replacement when the vendor
	// requires both fields to change together. When set, NewValue is empty.
	NewUsername string
	NewEmail    string
}

// Retry builds a retry resolution with a single replacement value.
func Retry(newValue string) Resolution {
	return Resolution{Kind: ResolutionRetry, NewValue: newValue}
}

// RetryPair builds a retry resolution replacing username and email together.
func RetryPair(username, email string) Resolution {
	return Resolution{Kind: ResolutionRetry, NewUsername: username, NewEmail: email}
}

// Proceed builds a proceed resolution.
func Proceed() Resolution {
	return Resolution{Kind: ResolutionProceed}
}

// Skip builds a skip resolution.
func Skip() Resolution {
	return Resolution{Kind: ResolutionSkip}
}

// ValidFor reports whether this resolution is a legal answer to the given
// conflict: duplicates of username or email accept retry and skip,
// duplicate names accept proceed and skip, and MFA conflicts resolve
// implicitly through driver polling rather than through an answer.
func (r Resolution) ValidFor(c Conflict) bool {
	switch c.Kind {
	case KindDuplicateUsername, KindDuplicateEmail:
		return r.Kind == ResolutionRetry || r.Kind == ResolutionSkip
	case KindDuplicateName:
		return r.Kind == ResolutionProceed || r.Kind == ResolutionSkip
	case KindMfa:
		return r.Kind == ResolutionSkip
	default:
		return false
	}
}
