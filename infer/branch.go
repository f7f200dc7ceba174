package infer

import (
	"fmt"
	"strings"
)

// MatchKind distinguishes a confident branch match from a fallback choice.
type MatchKind string

const (
	// MatchExact means the cost center appeared in exactly one dropdown label.
	MatchExact MatchKind = "exact"

	// MatchFallback means no unambiguous label matched and a default was chosen.
	MatchFallback MatchKind = "fallback"
)

// BranchMatch is the outcome of matching a cost center against a vendor's
// branch dropdown.
type BranchMatch struct {
	// Label is the dropdown label to select.
	Label string

	// Kind says whether the label was matched or defaulted.
	Kind MatchKind

	// Confidence is 1.0 for an exact match and 0 for any fallback.
	Confidence float64

	// Reason explains the choice in operator-readable terms.
	Reason string
}

// MatchBranch finds the dropdown label for a cost center. An exact match
// requires the cost-center substring to appear in exactly one label; an
// ambiguous cost center is treated the same as an absent one. The fallback
// order is: the first label containing "Main" (case-insensitive), then the
// first label outright.
func MatchBranch(costCenter string, options []string) BranchMatch {
	if len(options) == 0 {
		// No label can be selected; callers must treat an empty Label as
		// nothing to pick.
		return BranchMatch{
			Kind:       MatchFallback,
			Confidence: 0,
			Reason:     "no branch options available",
		}
	}

	if costCenter != "" {
		var hits []string
		for _, opt := range options {
			if strings.Contains(opt, costCenter) {
				hits = append(hits, opt)
			}
		}
		if len(hits) == 1 {
			return BranchMatch{
				Label:      hits[0],
				Kind:       MatchExact,
				Confidence: 1.0,
				Reason:     fmt.Sprintf("cost center %s found in branch name", costCenter),
			}
		}
		if len(hits) > 1 {
			return fallbackBranch(options, fmt.Sprintf("cost center %s matches %d branches", costCenter, len(hits)))
		}
		return fallbackBranch(options, fmt.Sprintf("no branch contains cost center %s", costCenter))
	}

	return fallbackBranch(options, "no cost center available")
}

func fallbackBranch(options []string, why string) BranchMatch {
	for _, opt := range options {
		if strings.Contains(strings.ToLower(opt), "main") {
			return BranchMatch{
				Label:      opt,
				Kind:       MatchFallback,
				Confidence: 0,
				Reason:     why + "; using Main branch",
			}
		}
	}
	return BranchMatch{
		Label:      options[0],
		Kind:       MatchFallback,
		Confidence: 0,
		Reason:     why + "; Main branch not available, using first option",
	}
}
