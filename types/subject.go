package types

import "strings"

// Subject represents the directory user being provisioned into vendor
// portals. It is a snapshot of the directory profile taken at selection
// time; the engine never mutates it during a run.
type Subject struct {
	// ID is the stable directory object identifier.
	ID string

	// DisplayName is the user's display name as stored in the directory.
	DisplayName string

	// GivenName is the user's first name. May be empty; see FirstName.
	GivenName string

	// Surname is the user's last name. May be empty; see LastName.
	Surname string

	// Mail is the user's primary email address. May be empty; see Email.
	Mail string

	// PrincipalName is the user principal name (login identity).
	PrincipalName string

	// JobTitle is the user's job title, used by the inference helpers.
	JobTitle string

	// Department is the user's department. Free text; may carry a
	// cost-center code.
	Department string

	// OfficeLocation is the user's office location. Free text; usually
	// carries the 4-digit cost-center code.
	OfficeLocation string

	// EmployeeID is the HR employee identifier.
	EmployeeID string

	// NMLSNumber is the licensing registry number, present on licensed
	// users only.
	NMLSNumber string

	// MobilePhone is the user's mobile number as stored in the directory.
	MobilePhone string

	// BusinessPhones lists the user's business numbers in directory order.
	BusinessPhones []string

	// PhotoURL points at the user's directory photo, if one exists.
	// The engine never fetches it.
	PhotoURL string

	// Groups is the set of directory group names the user belongs to.
	// Membership drives vendor auto-selection.
	Groups []string
}

// FirstName returns the subject's first name, falling back to the first
// whitespace-separated token of the display name when GivenName is empty.
func (s Subject) FirstName() string {
	if s.GivenName != "" {
		return s.GivenName
	}
	parts := strings.Fields(s.DisplayName)
	if len(parts) > 0 {
		return parts[0]
	}
	return ""
}

// LastName returns the subject's last name, falling back to the last
// whitespace-separated token of the display name when Surname is empty.
func (s Subject) LastName() string {
	if s.Surname != "" {
		return s.Surname
	}
	parts := strings.Fields(s.DisplayName)
	if len(parts) > 1 {
		return parts[len(parts)-1]
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return ""
}

// FullName returns "GivenName Surname" when both are present, otherwise
// the display name.
func (s Subject) FullName() string {
	if s.GivenName != "" && s.Surname != "" {
		return s.GivenName + " " + s.Surname
	}
	return s.DisplayName
}

// Email returns the subject's email address, preferring Mail over the
// principal name.
func (s Subject) Email() string {
	if s.Mail != "" {
		return s.Mail
	}
	return s.PrincipalName
}

// Phone returns the best phone number for form filling: the mobile number
// when present, otherwise the first business phone. The raw directory
// value is returned; callers normalize per vendor with NormalizePhone.
func (s Subject) Phone() string {
	if s.MobilePhone != "" {
		return s.MobilePhone
	}
	if len(s.BusinessPhones) > 0 {
		return s.BusinessPhones[0]
	}
	return ""
}

// IsMemberOf reports whether the subject belongs to the named directory
// group. Comparison is exact.
func (s Subject) IsMemberOf(group string) bool {
	for _, g := range s.Groups {
		if g == group {
			return true
		}
	}
	return false
}
