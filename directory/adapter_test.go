package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubjectFromAttributes(t *testing.T) {
	attrs := map[string]any{
		"id":                "b2f1f1e2-0000-4e9f-9c1a-52e8f1b6d001",
		"displayName":       "Jane Smith",
		"userPrincipalName": "jsmith@corp.example.com",
		"givenName":         "Jane",
		"surname":           "Smith",
		"mail":              "jsmith@example.com",
		"jobTitle":          "Loan Officer",
		"department":        "Lending",
		"officeLocation":    "Dallas 0120",
		"employeeId":        "123456",
		"mobilePhone":       "(214) 555-0100",
		"businessPhones":    []any{"(972) 555-0199", "(972) 555-0200"},
	}

	s := SubjectFromAttributes(attrs, []string{"Vendor_AccountChek"})

	assert.Equal(t, "Jane Smith", s.DisplayName)
	assert.Equal(t, "jsmith@example.com", s.Mail)
	assert.Equal(t, "jsmith@corp.example.com", s.PrincipalName)
	assert.Equal(t, "Dallas 0120", s.OfficeLocation)
	assert.Equal(t, []string{"(972) 555-0199", "(972) 555-0200"}, s.BusinessPhones)
	assert.True(t, s.IsMemberOf("Vendor_AccountChek"))
	// Digit-only employee id doubles as the NMLS number at this tenant.
	assert.Equal(t, "123456", s.NMLSNumber)
}

func TestSubjectFromAttributes_SparseProfile(t *testing.T) {
	s := SubjectFromAttributes(map[string]any{
		"id":          "x",
		"displayName": "Cher",
	}, nil)

	assert.Equal(t, "Cher", s.FirstName())
	assert.Equal(t, "Cher", s.LastName())
	assert.Empty(t, s.BusinessPhones)
	assert.Empty(t, s.NMLSNumber)
}

func TestSubjectFromAttributes_ExplicitNMLSWins(t *testing.T) {
	s := SubjectFromAttributes(map[string]any{
		"employeeId": "123456",
		"nmlsNumber": "987654",
	}, nil)
	assert.Equal(t, "987654", s.NMLSNumber)
}

func TestSubjectFromAttributes_NonDigitEmployeeID(t *testing.T) {
	s := SubjectFromAttributes(map[string]any{"employeeId": "E-1234"}, nil)
	assert.Empty(t, s.NMLSNumber)
	assert.Equal(t, "E-1234", s.EmployeeID)
}

func TestSearchField_IsValid(t *testing.T) {
	assert.True(t, FieldDisplayName.IsValid())
	assert.True(t, FieldEmail.IsValid())
	assert.True(t, FieldEmployeeID.IsValid())
	assert.False(t, SearchField("phone").IsValid())
}
