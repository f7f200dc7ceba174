package infer

import (
	"regexp"
	"strings"
)

var (
	paddedCostCenter = regexp.MustCompile(`\b0*(\d{4})\b`)
	fourDigitRun     = regexp.MustCompile(`\b(\d{4})\b`)
	anyDigitRun      = regexp.MustCompile(`(\d+)`)
)

// ExtractCostCenter pulls the 4-digit cost-center code out of a free-text
// directory field such as "Dallas 0120" or "Branch 001200". It tries, in
// order: a 4-digit run with optional leading zeros, any bare 4-digit run,
// and finally any digit run (padded to 4 with leading zeros, or truncated
// to its last 4 digits when longer). The second return value is false when
// the text carries no digits at all.
//
// The extractor is idempotent: feeding a successful result back in returns
// the same code.
func ExtractCostCenter(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	if m := paddedCostCenter.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	if m := fourDigitRun.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	if m := anyDigitRun.FindStringSubmatch(text); m != nil {
		digits := m[1]
		switch {
		case len(digits) > 4:
			return digits[len(digits)-4:], true
		case len(digits) < 4:
			return strings.Repeat("0", 4-len(digits)) + digits, true
		default:
			return digits, true
		}
	}
	return "", false
}

// CostCenterFromSubject extracts a cost center from the office location
// first, then the department, mirroring how the directory fields are
// populated in practice. The second return names the field that yielded
// the code ("office location" or "department"); both are empty when
// neither field carries digits.
func CostCenterFromSubject(officeLocation, department string) (code, source string) {
	if cc, ok := ExtractCostCenter(officeLocation); ok {
		return cc, "office location"
	}
	if cc, ok := ExtractCostCenter(department); ok {
		return cc, "department"
	}
	return "", ""
}
