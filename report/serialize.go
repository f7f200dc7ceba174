package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nexus-hq/nexus/run"
)

// document is the wire shape handed to the external PDF renderer. It wraps
// the run summary with the derived counts so the renderer never recomputes
// anything.
type document struct {
	RunID          string       `json:"run_id"`
	GeneratedAt    time.Time    `json:"generated_at"`
	Subject        subjectBlock `json:"subject"`
	Results        []resultRow  `json:"results"`
	StartTime      time.Time    `json:"start_time"`
	EndTime        time.Time    `json:"end_time"`
	SuccessCount   int          `json:"success_count"`
	FailureCount   int          `json:"failure_count"`
	TotalDurationS float64      `json:"total_duration_s"`
}

type subjectBlock struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	JobTitle    string `json:"job_title,omitempty"`
	Department  string `json:"department,omitempty"`
}

type resultRow struct {
	VendorID  string   `json:"vendor_id"`
	Label     string   `json:"label"`
	Success   bool     `json:"success"`
	DurationS float64  `json:"duration_s"`
	Messages  []string `json:"messages"`
	Warnings  []string `json:"warnings,omitempty"`
	Errors    []string `json:"errors,omitempty"`
	Evidence  []string `json:"evidence,omitempty"`
}

// Marshal serializes a sealed run summary for the PDF renderer.
func Marshal(s *run.Summary) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("summary is nil")
	}
	if s.Subject == nil {
		return nil, fmt.Errorf("summary has no subject")
	}

	doc := document{
		RunID:       s.RunID,
		GeneratedAt: time.Now().UTC(),
		Subject: subjectBlock{
			ID:          s.Subject.ID,
			DisplayName: s.Subject.DisplayName,
			Email:       s.Subject.Email(),
			JobTitle:    s.Subject.JobTitle,
			Department:  s.Subject.Department,
		},
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		SuccessCount:   s.SuccessCount(),
		FailureCount:   s.FailureCount(),
		TotalDurationS: s.TotalDuration().Seconds(),
	}

	for _, r := range s.Results {
		doc.Results = append(doc.Results, resultRow{
			VendorID:  r.VendorID,
			Label:     r.Label,
			Success:   r.Success,
			DurationS: r.Duration().Seconds(),
			Messages:  r.Messages,
			Warnings:  r.Warnings,
			Errors:    r.Errors,
			Evidence:  r.Evidence,
		})
	}

	return json.MarshalIndent(doc, "", "  ")
}
