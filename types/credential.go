package types

import "strings"

// CredentialPurpose identifies which secret of a vendor is being requested.
// Purposes form a small closed set; vault secret names are built from the
// vendor id and the purpose.
type CredentialPurpose string

const (
	// PurposeLoginURL is the vendor portal login URL.
	PurposeLoginURL CredentialPurpose = "login-url"

	// PurposeLoginEmail is the service account email used to sign in.
	PurposeLoginEmail CredentialPurpose = "login-email"

	// PurposeLoginUsername is the service account username used to sign in,
	// for vendors that authenticate by username rather than email.
	PurposeLoginUsername CredentialPurpose = "login-username"

	// PurposeLoginPassword is the service account password.
	PurposeLoginPassword CredentialPurpose = "login-password"

	// PurposeLoginAccountID is the organization/account identifier some
	// vendors require alongside the login.
	PurposeLoginAccountID CredentialPurpose = "login-account-id"

	// PurposeAdminUsername is the elevated admin username, for vendors
	// whose user management lives behind a separate admin login.
	PurposeAdminUsername CredentialPurpose = "admin-username"

	// PurposeAdminPassword is the elevated admin password.
	PurposeAdminPassword CredentialPurpose = "admin-password"

	// PurposeNewUserPassword is the initial password assigned to accounts
	// the engine creates.
	PurposeNewUserPassword CredentialPurpose = "newuser-password"

	// PurposeDefaultPassword is the vendor's shared default password, for
	// portals that require one on every new account.
	PurposeDefaultPassword CredentialPurpose = "default-password"
)

// IsValid checks if the purpose is a recognized value.
func (p CredentialPurpose) IsValid() bool {
	switch p {
	case PurposeLoginURL, PurposeLoginEmail, PurposeLoginUsername,
		PurposeLoginPassword, PurposeLoginAccountID, PurposeAdminUsername,
		PurposeAdminPassword, PurposeNewUserPassword, PurposeDefaultPassword:
		return true
	default:
		return false
	}
}

// String returns the string representation of the purpose.
func (p CredentialPurpose) String() string {
	return string(p)
}

// CredentialKey identifies a single vendor secret: the vendor it belongs
// to and what the secret is for.
type CredentialKey struct {
	// VendorID is the vendor's stable short name (e.g. "accountchek").
	VendorID string

	// Purpose says which of the vendor's secrets is wanted.
	Purpose CredentialPurpose
}

// SecretName returns the wire-exact vault secret name for this key:
// normalized vendor id, a hyphen, and the normalized purpose.
func (k CredentialKey) SecretName() string {
	return NormalizeSecretName(k.VendorID) + "-" + NormalizeSecretName(string(k.Purpose))
}

// NormalizeSecretName lowercases a secret name component and replaces
// underscores with hyphens. Vault secret names permit only alphanumerics
// and hyphens. The function is idempotent.
func NormalizeSecretName(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "_", "-")
}
