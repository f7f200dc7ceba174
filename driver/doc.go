// Package driver defines the vendor driver contract and the shared
// lifecycle every vendor automation runs through: load config, acquire
// credentials, launch a fresh browser, authenticate, wait past MFA,
// navigate, fill the new-user form, submit, classify the outcome, loop on
// duplicate-identity conflicts through the interaction broker, verify, and
// tear down.
//
// A concrete vendor driver embeds a Lifecycle and supplies its Phases; the
// orchestrator only ever sees the Driver interface and the sealed
// VendorResult it returns. Post-submit classification combines a built-in
// phrase dictionary with vendor-config phrases and optional CEL predicates
// over the captured page state.
package driver
