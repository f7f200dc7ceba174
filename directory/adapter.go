package directory

import (
	"github.com/nexus-hq/nexus/types"
)

// SubjectFromAttributes builds a Subject from the raw attribute map a
// directory backend returns. Attribute keys follow the camel-cased names
// the corporate directory uses on the wire; unknown keys are ignored and
// absent keys leave zero values. Group names arrive separately because
// memberships come from a second directory call.
func SubjectFromAttributes(attrs map[string]any, groups []string) types.Subject {
	s := types.Subject{
		ID:             str(attrs, "id"),
		DisplayName:    str(attrs, "displayName"),
		PrincipalName:  str(attrs, "userPrincipalName"),
		GivenName:      str(attrs, "givenName"),
		Surname:        str(attrs, "surname"),
		Mail:           str(attrs, "mail"),
		JobTitle:       str(attrs, "jobTitle"),
		Department:     str(attrs, "department"),
		OfficeLocation: str(attrs, "officeLocation"),
		EmployeeID:     str(attrs, "employeeId"),
		MobilePhone:    str(attrs, "mobilePhone"),
		PhotoURL:       str(attrs, "photoUrl"),
		Groups:         groups,
	}

	if phones, ok := attrs["businessPhones"].([]any); ok {
		for _, p := range phones {
			if ps, ok := p.(string); ok {
				s.BusinessPhones = append(s.BusinessPhones, ps)
			}
		}
	} else if phones, ok := attrs["businessPhones"].([]string); ok {
		s.BusinessPhones = append(s.BusinessPhones, phones...)
	}

	// Licensed users carry their NMLS number either as a dedicated
	// extension attribute or, at some tenants, in employeeId.
	if nmls := str(attrs, "nmlsNumber"); nmls != "" {
		s.NMLSNumber = nmls
	} else if id := s.EmployeeID; id != "" && allDigits(id) {
		s.NMLSNumber = id
	}

	return s
}

func str(attrs map[string]any, key string) string {
	if v, ok := attrs[key].(string); ok {
		return v
	}
	return ""
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
