// Package run contains the provisioning orchestrator: the state machine
// that takes a subject and an ordered vendor selection, runs each vendor's
// driver sequentially and in isolation, streams progress events to the UI,
// and seals the run summary.
//
// One broker, one credential cache, and one evidence sink are shared across
// the vendors of a run. The browser runtime is probed once before the first
// vendor; when it is missing, every selected vendor fails with the same
// actionable message and no browser is launched.
package run
