package run

import (
	"time"

	"github.com/nexus-hq/nexus/driver"
	"github.com/nexus-hq/nexus/types"
)

// Summary is the sealed record of one provisioning run: the subject, every
// vendor's result in execution order, and the run window. It lives for
// exactly one run and is never persisted by the engine; the report package
// serializes it for the external PDF renderer.
type Summary struct {
	RunID     string                 `json:"run_id"`
	Subject   *types.Subject         `json:"subject"`
	Results   []*driver.VendorResult `json:"results"`
	StartTime time.Time              `json:"start_time"`
	EndTime   time.Time              `json:"end_time"`
}

// SuccessCount returns how many vendors provisioned successfully.
func (s *Summary) SuccessCount() int {
	n := 0
	for _, r := range s.Results {
		if r.Success {
			n++
		}
	}
	return n
}

// FailureCount returns how many vendors did not provision.
func (s *Summary) FailureCount() int {
	return len(s.Results) - s.SuccessCount()
}

// TotalDuration returns the wall time of the whole run.
func (s *Summary) TotalDuration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}
