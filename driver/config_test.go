package driver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vendor.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfig(t, `{
		"mfa": {
			"enabled": true,
			"wait_timeout_ms": 600000,
			"check_interval_ms": 2000,
			"detection": {
				"challenge_text": "Enter the code we sent",
				"success_indicators": ["#dashboard", ".user-menu"]
			},
			"pre_clicks": ["#delivery-email"]
		},
		"organization": {"id": "ORG-42", "name": "Example Lending"},
		"location": {"id": "LOC-7", "name": "Corporate"},
		"user_settings": {
			"default_account_active": true,
			"default_user_profile": "Loan Officer",
			"default_comments": "Provisioned automatically"
		},
		"permissions": {
			"loan_officer_default": ["view_reports", "order_services"],
			"branch_manager_additional": ["approve_orders"],
			"executive_additional": ["manage_users"]
		},
		"defaults": {"minimum_score_to_reply": 3.5, "autopost_minimum_score": 4.0, "autopost_max_per_day": 5}
	}`)

	cfg, err := LoadConfig("accountchek", path)
	require.NoError(t, err)
	assert.True(t, cfg.Mfa.Enabled)
	assert.Equal(t, "Enter the code we sent", cfg.Mfa.Detection.ChallengeText)
	assert.Equal(t, []string{"#delivery-email"}, cfg.Mfa.PreClicks)
	assert.Equal(t, "ORG-42", cfg.Organization.ID)
	assert.Equal(t, []string{"approve_orders"}, cfg.Permissions.BranchManagerAdditional)
	assert.Equal(t, 5, cfg.Defaults.AutopostMaxPerDay)
}

func TestLoadConfig_UnknownKeysIgnored(t *testing.T) {
	path := writeConfig(t, `{
		"organization": {"id": "1", "name": "x"},
		"selectors": {"submit_button": "#save"},
		"some_future_key": 42
	}`)

	cfg, err := LoadConfig("mmi", path)
	require.NoError(t, err)
	assert.Equal(t, "1", cfg.Organization.ID)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("mmi", filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Equal(t, ErrCodeConfigInvalid, CodeOf(err))
}

func TestLoadConfig_BadJSON(t *testing.T) {
	path := writeConfig(t, `{"mfa": `)
	_, err := LoadConfig("mmi", path)
	require.Error(t, err)
	assert.Equal(t, ErrCodeConfigInvalid, CodeOf(err))
}

func TestLoadConfig_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative timeout", `{"mfa": {"wait_timeout_ms": -1}}`},
		{"negative interval", `{"mfa": {"check_interval_ms": -5}}`},
		{"interval exceeds timeout", `{"mfa": {"wait_timeout_ms": 1000, "check_interval_ms": 5000}}`},
		{"unknown rule outcome", `{"classification": {"rules": [{"outcome": "partial", "expr": "true"}]}}`},
		{"empty rule expression", `{"classification": {"rules": [{"outcome": "success", "expr": ""}]}}`},
		{"unsatisfiable password policy", `{"password": {"generate": true, "length": 4, "min_digits": 3, "min_uppercase": 3}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := LoadConfig("mmi", path)
			require.Error(t, err)

			var de *Error
			require.True(t, errors.As(err, &de))
			assert.Equal(t, ErrCodeConfigInvalid, de.Code)
			assert.Equal(t, "mmi", de.Vendor)
		})
	}
}

func TestMfaPollConfig(t *testing.T) {
	cfg := &Config{}
	cfg.Mfa.WaitTimeoutMs = 600000
	cfg.Mfa.CheckIntervalMs = 3000

	pc := cfg.MfaPollConfig()
	assert.Equal(t, "10m0s", pc.ResolveTimeout().String())
	assert.Equal(t, "3s", pc.ResolveInterval().String())

	// Zero values fall back to engine defaults.
	pc = (&Config{}).MfaPollConfig()
	assert.Equal(t, "5m0s", pc.ResolveTimeout().String())
	assert.Equal(t, "2s", pc.ResolveInterval().String())
}
