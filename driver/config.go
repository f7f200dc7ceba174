package driver

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/nexus-hq/nexus/types"
)

// Config is the per-vendor configuration file schema. Every key is optional;
// unknown keys are ignored so vendor files can carry selector data the engine
// does not interpret. A file that fails to parse or validate produces a
// CONFIG_INVALID error.
type Config struct {
	Mfa            MfaConfig            `json:"mfa"`
	Organization   Identifier           `json:"organization"`
	Location       Identifier           `json:"location"`
	UserSettings   UserSettings         `json:"user_settings"`
	Permissions    PermissionTiers      `json:"permissions"`
	Defaults       VendorDefaults       `json:"defaults"`
	Classification ClassificationConfig `json:"classification"`
	Password       PasswordRules        `json:"password"`
}

// MfaConfig controls the post-login challenge wait.
type MfaConfig struct {
	Enabled         bool         `json:"enabled"`
	WaitTimeoutMs   int          `json:"wait_timeout_ms"`
	CheckIntervalMs int          `json:"check_interval_ms"`
	Detection       MfaDetection `json:"detection"`

	// PreClicks are non-secret selectors clicked before polling begins,
	// such as a delivery-method radio or a "private computer" checkbox.
	PreClicks []string `json:"pre_clicks"`
}

// MfaDetection names the page signals that prove the challenge is passed.
type MfaDetection struct {
	// ChallengeText is the page text that marks the challenge as still
	// active. The wait succeeds only once this text is gone AND one of
	// the SuccessIndicators is visible.
	ChallengeText string `json:"challenge_text"`

	// SuccessIndicators are selectors that, when visible, mean the
	// session is past MFA.
	SuccessIndicators []string `json:"success_indicators"`
}

// Identifier is a fixed org or location the driver selects in the portal.
type Identifier struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserSettings are vendor-side defaults applied to the new account.
type UserSettings struct {
	DefaultRoles         map[string]any `json:"default_roles"`
	DefaultAccountActive bool           `json:"default_account_active"`
	DefaultUserProfile   string         `json:"default_user_profile"`
	DefaultComments      string         `json:"default_comments"`
}

// PermissionTiers carries the vendor's permission strings per tier.
type PermissionTiers struct {
	LoanOfficerDefault      []string `json:"loan_officer_default"`
	BranchManagerAdditional []string `json:"branch_manager_additional"`
	ExecutiveAdditional     []string `json:"executive_additional"`
}

// VendorDefaults are numeric knobs some portals expose on account creation.
type VendorDefaults struct {
	MinimumScoreToReply  float64 `json:"minimum_score_to_reply"`
	AutopostMinimumScore float64 `json:"autopost_minimum_score"`
	AutopostMaxPerDay    int     `json:"autopost_max_per_day"`
}

// ClassificationConfig extends the built-in post-submit classification
// dictionary with vendor-specific phrases, success URL prefixes, and optional
// CEL predicates evaluated over the captured page state.
type ClassificationConfig struct {
	Phrases            PhraseDictionary `json:"phrases"`
	SuccessURLPrefixes []string         `json:"success_url_prefixes"`
	Rules              []OutcomeRule    `json:"rules"`
}

// PhraseDictionary maps toast/alert phrases to outcomes. Matching is
// case-insensitive substring.
type PhraseDictionary struct {
	Success           []string `json:"success"`
	DuplicateUsername []string `json:"duplicate_username"`
	DuplicateEmail    []string `json:"duplicate_email"`
	DuplicateName     []string `json:"duplicate_name"`
	Error             []string `json:"error"`
}

// OutcomeRule is a CEL predicate over the page state variables
// {toast, body, url, modal_open}. When the expression evaluates true the
// named outcome is returned.
type OutcomeRule struct {
	Outcome Outcome `json:"outcome"`
	Expr    string  `json:"expr"`
}

// MfaPollConfig converts the millisecond knobs into a bounded poll config,
// applying the standard defaults when unset.
func (c *Config) MfaPollConfig() types.PollConfig {
	cfg := types.PollConfig{
		Timeout:  time.Duration(c.Mfa.WaitTimeoutMs) * time.Millisecond,
		Interval: time.Duration(c.Mfa.CheckIntervalMs) * time.Millisecond,
	}
	return cfg
}

// Validate checks the parsed config for schema violations.
func (c *Config) Validate() error {
	if c.Mfa.WaitTimeoutMs < 0 {
		return fmt.Errorf("mfa.wait_timeout_ms must not be negative")
	}
	if c.Mfa.CheckIntervalMs < 0 {
		return fmt.Errorf("mfa.check_interval_ms must not be negative")
	}
	if c.Mfa.WaitTimeoutMs > 0 && c.Mfa.CheckIntervalMs > c.Mfa.WaitTimeoutMs {
		return fmt.Errorf("mfa.check_interval_ms exceeds mfa.wait_timeout_ms")
	}
	for i, r := range c.Classification.Rules {
		if !r.Outcome.IsValid() {
			return fmt.Errorf("classification.rules[%d]: unknown outcome %q", i, r.Outcome)
		}
		if r.Expr == "" {
			return fmt.Errorf("classification.rules[%d]: empty expression", i)
		}
	}
	if err := c.Password.Validate(); err != nil {
		return fmt.Errorf("password: %w", err)
	}
	return nil
}

// LoadConfig reads and validates a vendor config file. Any failure is
// reported as a CONFIG_INVALID driver error for the given vendor.
func LoadConfig(vendorID, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, New(vendorID, "load-config", ErrCodeConfigInvalid,
			fmt.Sprintf("cannot read vendor config %s", path)).WithCause(err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, New(vendorID, "load-config", ErrCodeConfigInvalid,
			fmt.Sprintf("vendor config %s is not valid JSON", path)).WithCause(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, New(vendorID, "load-config", ErrCodeConfigInvalid,
			fmt.Sprintf("vendor config %s failed validation", path)).WithCause(err)
	}

	return &cfg, nil
}
