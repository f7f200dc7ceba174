package driver

import (
	"time"
)

// Severity grades a progress line on a VendorResult.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// VendorResult collects everything that happened while provisioning one
// vendor. It is created when the vendor starts, mutated only by its own
// driver through the append methods, and sealed exactly once when the driver
// finishes. A sealed result ignores further appends.
//
// Invariants: EndTime >= StartTime after sealing; Success is never true
// while Errors is non-empty; warnings never imply failure on their own.
type VendorResult struct {
	VendorID  string    `json:"vendor_id"`
	Label     string    `json:"label"`
	Success   bool      `json:"success"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	// Messages is the ordered informational progress log.
	Messages []string `json:"messages"`

	// Warnings records soft anomalies such as a duplicate skip or a
	// fallback branch selection.
	Warnings []string `json:"warnings,omitempty"`

	// Errors records hard failures in the order they occurred.
	Errors []string `json:"errors,omitempty"`

	// Evidence references artifacts captured during the run, such as a
	// screenshot path or an extracted widget snippet.
	Evidence []string `json:"evidence,omitempty"`

	sealed bool

	// onAppend, when set, is invoked for every accepted message, warning,
	// or error. The orchestrator uses it to surface driver progress as
	// events while the driver runs.
	onAppend func(severity Severity, text string)
}

// NewVendorResult starts a result for the given vendor with StartTime set to now.
func NewVendorResult(vendorID, label string) *VendorResult {
	return &VendorResult{
		VendorID:  vendorID,
		Label:     label,
		StartTime: time.Now(),
		Messages:  []string{},
	}
}

// OnAppend registers a callback fired for each accepted append. Must be set
// before the driver starts writing to the result.
func (r *VendorResult) OnAppend(fn func(severity Severity, text string)) {
	r.onAppend = fn
}

// AddMessage appends an informational progress line.
func (r *VendorResult) AddMessage(text string) {
	if r.sealed {
		return
	}
	r.Messages = append(r.Messages, text)
	r.notify(SeverityInfo, text)
}

// AddWarning appends a soft anomaly. Warnings do not affect Success.
func (r *VendorResult) AddWarning(text string) {
	if r.sealed {
		return
	}
	r.Warnings = append(r.Warnings, text)
	r.notify(SeverityWarn, text)
}

// AddError appends a hard failure line.
func (r *VendorResult) AddError(text string) {
	if r.sealed {
		return
	}
	r.Errors = append(r.Errors, text)
	r.notify(SeverityError, text)
}

// AddEvidence records an artifact reference such as a screenshot path.
func (r *VendorResult) AddEvidence(ref string) {
	if r.sealed {
		return
	}
	r.Evidence = append(r.Evidence, ref)
}

// Seal fixes the outcome and sets EndTime. Success is forced to false when
// any error was recorded. Sealing twice is a no-op.
func (r *VendorResult) Seal(success bool) {
	if r.sealed {
		return
	}
	r.sealed = true
	r.EndTime = time.Now()
	r.Success = success && len(r.Errors) == 0
}

// Sealed reports whether the result has been finalized.
func (r *VendorResult) Sealed() bool {
	return r.sealed
}

// Duration returns the elapsed wall time of the vendor's provisioning.
// Zero until the result is sealed.
func (r *VendorResult) Duration() time.Duration {
	if !r.sealed {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

func (r *VendorResult) notify(severity Severity, text string) {
	if r.onAppend != nil {
		r.onAppend(severity, text)
	}
}
