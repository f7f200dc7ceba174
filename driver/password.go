package driver

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	upperChars      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars      = "abcdefghijklmnopqrstuvwxyz"
	digitChars      = "0123456789"
	defaultSpecials = "!@#$%^&*"

	defaultPasswordLength = 14
)

// PasswordRules describes a vendor's password policy for generated new-user
// passwords. When Generate is false the driver uses the vaulted
// newuser-password secret instead.
type PasswordRules struct {
	Generate     bool   `json:"generate"`
	Length       int    `json:"length"`
	MinUppercase int    `json:"min_uppercase"`
	MinLowercase int    `json:"min_lowercase"`
	MinDigits    int    `json:"min_digits"`
	MinSpecial   int    `json:"min_special"`
	SpecialChars string `json:"special_chars"`

	// ExcludeChars removes ambiguous or vendor-rejected characters from
	// every character class.
	ExcludeChars string `json:"exclude_chars"`
}

// Validate checks that the policy is satisfiable.
func (r PasswordRules) Validate() error {
	if !r.Generate {
		return nil
	}
	for name, v := range map[string]int{
		"length":        r.Length,
		"min_uppercase": r.MinUppercase,
		"min_lowercase": r.MinLowercase,
		"min_digits":    r.MinDigits,
		"min_special":   r.MinSpecial,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	length := r.effectiveLength()
	required := r.MinUppercase + r.MinLowercase + r.MinDigits + r.MinSpecial
	if required > length {
		return fmt.Errorf("minimum class counts (%d) exceed length %d", required, length)
	}
	for _, class := range r.classes() {
		if class.min > 0 && class.chars == "" {
			return fmt.Errorf("character class exhausted by exclusions")
		}
	}
	return nil
}

// GeneratePassword produces a random password satisfying the policy, using
// crypto/rand throughout. The minimum counts per class are filled first and
// the remainder drawn from the union of all classes, then the result is
// shuffled so required characters do not cluster at the front.
func (r PasswordRules) GeneratePassword() (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}

	length := r.effectiveLength()
	classes := r.classes()

	var all strings.Builder
	out := make([]byte, 0, length)
	for _, class := range classes {
		if class.chars == "" {
			continue
		}
		all.WriteString(class.chars)
		for i := 0; i < class.min; i++ {
			ch, err := randomChar(class.chars)
			if err != nil {
				return "", err
			}
			out = append(out, ch)
		}
	}

	pool := all.String()
	if pool == "" {
		return "", fmt.Errorf("no characters available after exclusions")
	}
	for len(out) < length {
		ch, err := randomChar(pool)
		if err != nil {
			return "", err
		}
		out = append(out, ch)
	}

	if err := shuffle(out); err != nil {
		return "", err
	}
	return string(out), nil
}

type charClass struct {
	chars string
	min   int
}

func (r PasswordRules) classes() []charClass {
	specials := r.SpecialChars
	if specials == "" {
		specials = defaultSpecials
	}
	return []charClass{
		{chars: exclude(upperChars, r.ExcludeChars), min: r.MinUppercase},
		{chars: exclude(lowerChars, r.ExcludeChars), min: r.MinLowercase},
		{chars: exclude(digitChars, r.ExcludeChars), min: r.MinDigits},
		{chars: exclude(specials, r.ExcludeChars), min: r.MinSpecial},
	}
}

func (r PasswordRules) effectiveLength() int {
	if r.Length > 0 {
		return r.Length
	}
	return defaultPasswordLength
}

func exclude(chars, excluded string) string {
	if excluded == "" {
		return chars
	}
	var b strings.Builder
	for _, c := range chars {
		if !strings.ContainsRune(excluded, c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}

func randomChar(pool string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(pool))))
	if err != nil {
		return 0, fmt.Errorf("random source: %w", err)
	}
	return pool[n.Int64()], nil
}

func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("random source: %w", err)
		}
		j := n.Int64()
		b[i], b[j] = b[j], b[i]
	}
	return nil
}
