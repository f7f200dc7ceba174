package run

import (
	"github.com/nexus-hq/nexus/broker"
	"github.com/nexus-hq/nexus/driver"
)

// EventKind tags the progress events the orchestrator emits to the UI.
type EventKind string

const (
	// EventVendorStarted fires when a vendor's driver begins.
	EventVendorStarted EventKind = "vendor_started"

	// EventVendorMessage fires for each progress line a driver records.
	EventVendorMessage EventKind = "vendor_message"

	// EventVendorFinished fires when a vendor's result seals.
	EventVendorFinished EventKind = "vendor_finished"

	// EventRunFinished fires once, after the last vendor, with the summary.
	EventRunFinished EventKind = "run_finished"

	// EventInteractionRequested fires when a driver needs an operator
	// decision. The UI answers through the carried question.
	EventInteractionRequested EventKind = "interaction_requested"
)

// Event is one progress notification. Only the fields of its kind are set.
// Events for a vendor arrive in order; events across vendors inherit the
// vendor execution order.
type Event struct {
	Kind     EventKind
	VendorID string

	// Text and Severity are set for vendor_message.
	Text     string
	Severity driver.Severity

	// Success and DurationS are set for vendor_finished.
	Success   bool
	DurationS float64

	// Summary is set for run_finished.
	Summary *Summary

	// Question is set for interaction_requested; its Conflict describes
	// what the driver needs decided.
	Question *broker.Question
}

// Emitter fans progress events out to the UI without ever blocking the
// worker. Events queue in a bounded buffer; when the UI falls behind, the
// oldest buffered event is dropped to make room.
type Emitter struct {
	ch chan Event
}

// NewEmitter creates an emitter with the given buffer size. Size zero gets
// a reasonable default.
func NewEmitter(size int) *Emitter {
	if size <= 0 {
		size = 256
	}
	return &Emitter{ch: make(chan Event, size)}
}

// Events is the channel the UI drains.
func (e *Emitter) Events() <-chan Event {
	return e.ch
}

// Emit queues an event without blocking. When the buffer is full the oldest
// event is discarded first.
func (e *Emitter) Emit(ev Event) {
	for {
		select {
		case e.ch <- ev:
			return
		default:
		}
		select {
		case <-e.ch:
		default:
		}
	}
}
