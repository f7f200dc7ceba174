// Package vault resolves vendor credentials from an external secret vault.
//
// Secrets are addressed by (vendor id, purpose) pairs that normalize to the
// wire-exact secret name "<vendor>-<purpose>". The resolver caches values
// in process memory for the span of one run and never touches local files
// or environment variables: a credential that is not in the vault does not
// exist. Backend failures are translated into actionable operator-facing
// messages.
package vault
