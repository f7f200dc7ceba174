// Package broker mediates mid-run questions from a vendor driver to the
// human operator.
//
// Drivers run on a worker goroutine while the operator's UI runs its own
// event loop; the broker is the single legitimate path between them. A
// driver posts a Conflict and blocks; the UI drains the question channel,
// presents the choice, and answers. At most one question may be pending
// per run. A question that times out or is cancelled resolves to Skip, so
// a driver can always make progress.
package broker
