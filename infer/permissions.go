package infer

import "strings"

// PermissionConfig carries the vendor's permission tiers as loaded from its
// config file. The loan officer set is granted to everyone; the additional
// sets are layered on when the job title carries the matching keyword family.
type PermissionConfig struct {
	// LoanOfficerDefault is the base permission set every account receives.
	LoanOfficerDefault []string `json:"loan_officer_default"`

	// BranchManagerAdditional is added for manager-family titles.
	BranchManagerAdditional []string `json:"branch_manager_additional"`

	// ExecutiveAdditional is added for executive-family titles.
	ExecutiveAdditional []string `json:"executive_additional"`
}

// Keyword families that elevate a title above the base permission set.
var (
	managerKeywords   = []string{"branch manager", "area", "regional", "division", "production"}
	executiveKeywords = []string{"executive", "vp", "svp", "evp", "president", "chief", "director", "recruiter"}
)

// PermissionsForTitle derives the permission set for a job title: the base
// set, plus the manager tier when a manager-family keyword appears in the
// title, plus the executive tier likewise. Matching is case-insensitive
// substring. The result is always a superset of the base set, preserves
// config order, is de-duplicated, and is stable for a given title.
func PermissionsForTitle(jobTitle string, cfg PermissionConfig) []string {
	title := strings.ToLower(jobTitle)

	perms := make([]string, 0, len(cfg.LoanOfficerDefault))
	seen := make(map[string]bool)
	add := func(set []string) {
		for _, p := range set {
			if !seen[p] {
				seen[p] = true
				perms = append(perms, p)
			}
		}
	}

	add(cfg.LoanOfficerDefault)
	if titleHasAny(title, managerKeywords) {
		add(cfg.BranchManagerAdditional)
	}
	if titleHasAny(title, executiveKeywords) {
		add(cfg.ExecutiveAdditional)
	}
	return perms
}

func titleHasAny(lowerTitle string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowerTitle, kw) {
			return true
		}
	}
	return false
}
