package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier(t *testing.T, cfg ClassificationConfig) *Classifier {
	t.Helper()
	c, err := NewClassifier(cfg)
	require.NoError(t, err)
	return c
}

func TestClassify_BuiltinToastPhrases(t *testing.T) {
	c := newTestClassifier(t, ClassificationConfig{})

	tests := []struct {
		name  string
		toast string
		want  Outcome
	}{
		{"success toast", "User created successfully", OutcomeSuccess},
		{"username taken", "That username is already taken", OutcomeDuplicateUsername},
		{"email exists", "An account with this email already exists", OutcomeDuplicateEmail},
		{"name exists", "A user with this name already exists", OutcomeDuplicateName},
		{"generic error", "An error occurred while saving", OutcomeOtherError},
		{"case insensitive", "USER CREATED", OutcomeSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(PageState{Toast: tt.toast})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_DuplicateBeatsSuccessWording(t *testing.T) {
	c := newTestClassifier(t, ClassificationConfig{})
	// A duplicate toast that happens to contain success wording must still
	// classify as a duplicate.
	got := c.Classify(PageState{Toast: "User created before: username already exists"})
	assert.Equal(t, OutcomeDuplicateUsername, got)
}

func TestClassify_VendorPhrasesExtendDictionary(t *testing.T) {
	c := newTestClassifier(t, ClassificationConfig{
		Phrases: PhraseDictionary{
			DuplicateEmail: []string{"e-mail address on file"},
		},
	})
	got := c.Classify(PageState{Toast: "We found that e-mail address on file"})
	assert.Equal(t, OutcomeDuplicateEmail, got)
}

func TestClassify_BodyDuplicateMarkers(t *testing.T) {
	c := newTestClassifier(t, ClassificationConfig{})

	tests := []struct {
		name string
		body string
		want Outcome
	}{
		{"username marker", "The login name is already in use by another account", OutcomeDuplicateUsername},
		{"email marker", "This email already exists in the system", OutcomeDuplicateEmail},
		{"name marker", "A record with that value already exists", OutcomeDuplicateName},
		{"no marker", "Welcome to the user administration page", OutcomeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(PageState{Body: tt.body})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_SuccessURLPrefix(t *testing.T) {
	c := newTestClassifier(t, ClassificationConfig{
		SuccessURLPrefixes: []string{"https://portal.example.com/users/created"},
	})
	got := c.Classify(PageState{URL: "https://portal.example.com/users/created?id=42"})
	assert.Equal(t, OutcomeSuccess, got)

	got = c.Classify(PageState{URL: "https://portal.example.com/users/new"})
	assert.Equal(t, OutcomeUnknown, got)
}

func TestClassify_ClosedModalAloneIsUnknown(t *testing.T) {
	c := newTestClassifier(t, ClassificationConfig{})
	got := c.Classify(PageState{ModalOpen: false})
	assert.Equal(t, OutcomeUnknown, got)
}

func TestClassify_CelRules(t *testing.T) {
	c := newTestClassifier(t, ClassificationConfig{
		Rules: []OutcomeRule{
			{Outcome: OutcomeSuccess, Expr: `!modal_open && url.contains("/users")`},
			{Outcome: OutcomeDuplicateUsername, Expr: `body.contains("pick a different login")`},
		},
	})

	got := c.Classify(PageState{URL: "https://portal.example.com/users", ModalOpen: false})
	assert.Equal(t, OutcomeSuccess, got)

	got = c.Classify(PageState{Body: "Please pick a different login", ModalOpen: true})
	assert.Equal(t, OutcomeDuplicateUsername, got)
}

func TestClassify_CelRulesRunBeforeDictionary(t *testing.T) {
	c := newTestClassifier(t, ClassificationConfig{
		Rules: []OutcomeRule{
			{Outcome: OutcomeOtherError, Expr: `toast.contains("created") && body.contains("pending approval")`},
		},
	})
	got := c.Classify(PageState{Toast: "User created", Body: "Account is pending approval"})
	assert.Equal(t, OutcomeOtherError, got)
}

func TestNewClassifier_BadExpression(t *testing.T) {
	_, err := NewClassifier(ClassificationConfig{
		Rules: []OutcomeRule{{Outcome: OutcomeSuccess, Expr: `toast.`}},
	})
	assert.Error(t, err)
}

func TestNewClassifier_NonBoolExpression(t *testing.T) {
	_, err := NewClassifier(ClassificationConfig{
		Rules: []OutcomeRule{{Outcome: OutcomeSuccess, Expr: `toast + url`}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bool")
}

func TestOutcome_IsValid(t *testing.T) {
	for _, o := range []Outcome{OutcomeSuccess, OutcomeDuplicateUsername,
		OutcomeDuplicateEmail, OutcomeDuplicateName, OutcomeOtherError, OutcomeUnknown} {
		assert.True(t, o.IsValid(), string(o))
	}
	assert.False(t, Outcome("partial").IsValid())
}
