package directory

import (
	"context"

	"github.com/nexus-hq/nexus/types"
)

// SearchField selects which profile attribute a directory search matches
// against.
type SearchField string

const (
	// FieldDisplayName searches by display name prefix.
	FieldDisplayName SearchField = "display_name"

	// FieldEmail searches by primary email.
	FieldEmail SearchField = "email"

	// FieldEmployeeID searches by HR employee identifier.
	FieldEmployeeID SearchField = "employee_id"
)

// IsValid checks if the search field is a recognized value.
func (f SearchField) IsValid() bool {
	switch f {
	case FieldDisplayName, FieldEmail, FieldEmployeeID:
		return true
	default:
		return false
	}
}

// MaxSearchResults caps how many subjects a single search may return.
const MaxSearchResults = 50

// Client is the directory backend the engine reads subjects from. The
// operator's delegated token authenticates every call; implementations
// must never return more than MaxSearchResults from Search.
type Client interface {
	// Search finds directory users matching the query on the given field.
	Search(ctx context.Context, query string, field SearchField) ([]types.Subject, error)

	// GetSubject loads one user by stable id, including group memberships.
	GetSubject(ctx context.Context, id string) (types.Subject, error)
}
