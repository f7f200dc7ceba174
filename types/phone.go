package types

import "strings"

// NormalizePhone reduces a free-text phone number to bare digits the way
// vendor forms expect. All non-digit characters are stripped; an 11-digit
// result starting with "1" loses the leading country code. The function is
// idempotent and the result is either empty or 10 digits when the input
// carried a valid North American number.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	return digits
}

// FormatPhoneDashed renders a normalized phone number as NNN-NNN-NNNN for
// vendors that require the dashed format. Inputs that do not normalize to
// exactly 10 digits are returned normalized but undashed.
func FormatPhoneDashed(raw string) string {
	digits := NormalizePhone(raw)
	if len(digits) != 10 {
		return digits
	}
	return digits[0:3] + "-" + digits[3:6] + "-" + digits[6:10]
}
