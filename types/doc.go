// Package types defines the shared data model for the Nexus provisioning
// engine: the Subject being provisioned, credential naming, polling timeout
// bounds, and component health status.
//
// Types in this package are plain values with no behavior beyond derivation
// and validation. A Subject is constructed once when the operator selects a
// directory user and is never mutated during a run.
package types
