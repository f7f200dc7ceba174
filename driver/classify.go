package driver

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
)

// Outcome is the classified result of a form submission.
type Outcome string

const (
	OutcomeSuccess           Outcome = "success"
	OutcomeDuplicateUsername Outcome = "duplicate_username"
	OutcomeDuplicateEmail    Outcome = "duplicate_email"
	OutcomeDuplicateName     Outcome = "duplicate_name"
	OutcomeOtherError        Outcome = "other_error"
	OutcomeUnknown           Outcome = "unknown"
)

// IsValid reports whether o is a recognized outcome.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeSuccess, OutcomeDuplicateUsername, OutcomeDuplicateEmail,
		OutcomeDuplicateName, OutcomeOtherError, OutcomeUnknown:
		return true
	}
	return false
}

// PageState is the snapshot of the portal page captured after a submit.
// The classifier only ever sees this snapshot, never the live page.
type PageState struct {
	// Toast is the text of the visible toast or alert element, empty if none.
	Toast string

	// Body is the rendered text of the page body.
	Body string

	// URL is the page address after the submit settled.
	URL string

	// ModalOpen reports whether the creation modal is still open.
	ModalOpen bool
}

// duplicateMarkers are the generic phrases that flag a duplicate identity
// when they appear in a visible error element.
var duplicateMarkers = []string{"already exists", "already taken", "in use", "duplicate"}

// builtinPhrases is the base toast dictionary shared by all vendors. Vendor
// configs extend it with their own phrases.
var builtinPhrases = PhraseDictionary{
	Success:           []string{"user created", "successfully created", "account created", "was added"},
	DuplicateUsername: []string{"username already exists", "username is already taken", "login name in use"},
	DuplicateEmail:    []string{"email already exists", "email address is already", "email is already in use"},
	DuplicateName:     []string{"a user with this name already exists", "name already exists"},
	Error:             []string{"an error occurred", "something went wrong", "required field"},
}

// Classifier turns a post-submit page snapshot into an Outcome using a
// prioritized rule chain: vendor CEL rules first, then the toast phrase
// dictionary, then generic duplicate text in the body, then known success
// URL prefixes. A closed modal on its own is a weak signal and classifies
// as Unknown.
type Classifier struct {
	phrases     PhraseDictionary
	urlPrefixes []string
	programs    []compiledRule
}

type compiledRule struct {
	outcome Outcome
	program cel.Program
}

// NewClassifier builds a classifier from a vendor's classification config.
// CEL expressions are compiled eagerly; a bad expression is a config error.
func NewClassifier(cfg ClassificationConfig) (*Classifier, error) {
	c := &Classifier{
		phrases:     mergePhrases(builtinPhrases, cfg.Phrases),
		urlPrefixes: cfg.SuccessURLPrefixes,
	}

	if len(cfg.Rules) == 0 {
		return c, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("toast", cel.StringType),
		cel.Variable("body", cel.StringType),
		cel.Variable("url", cel.StringType),
		cel.Variable("modal_open", cel.BoolType),
	)
	if err != nil {
		return nil, fmt.Errorf("classification environment: %w", err)
	}

	for i, rule := range cfg.Rules {
		ast, iss := env.Compile(rule.Expr)
		if iss.Err() != nil {
			return nil, fmt.Errorf("classification rule %d: %w", i, iss.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return nil, fmt.Errorf("classification rule %d: expression must yield bool, got %s", i, ast.OutputType())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("classification rule %d: %w", i, err)
		}
		c.programs = append(c.programs, compiledRule{outcome: rule.Outcome, program: prg})
	}

	return c, nil
}

// Classify applies the rule chain to the snapshot. It never returns an
// error: an unmatchable state classifies as Unknown, which the lifecycle
// treats as failure with a diagnostic note.
func (c *Classifier) Classify(state PageState) Outcome {
	args := map[string]any{
		"toast":      state.Toast,
		"body":       state.Body,
		"url":        state.URL,
		"modal_open": state.ModalOpen,
	}
	for _, rule := range c.programs {
		out, _, err := rule.program.Eval(args)
		if err != nil {
			continue
		}
		if matched, ok := out.Value().(bool); ok && matched {
			return rule.outcome
		}
	}

	if o, ok := matchPhrases(c.phrases, state.Toast); ok {
		return o
	}

	if o, ok := matchDuplicateBody(state.Body); ok {
		return o
	}

	for _, prefix := range c.urlPrefixes {
		if prefix != "" && strings.HasPrefix(state.URL, prefix) {
			return OutcomeSuccess
		}
	}

	// A closed modal used to pass as success; without a positive sentinel
	// it stays Unknown.
	return OutcomeUnknown
}

func mergePhrases(base, extra PhraseDictionary) PhraseDictionary {
	return PhraseDictionary{
		Success:           append(append([]string{}, extra.Success...), base.Success...),
		DuplicateUsername: append(append([]string{}, extra.DuplicateUsername...), base.DuplicateUsername...),
		DuplicateEmail:    append(append([]string{}, extra.DuplicateEmail...), base.DuplicateEmail...),
		DuplicateName:     append(append([]string{}, extra.DuplicateName...), base.DuplicateName...),
		Error:             append(append([]string{}, extra.Error...), base.Error...),
	}
}

func matchPhrases(d PhraseDictionary, toast string) (Outcome, bool) {
	if toast == "" {
		return OutcomeUnknown, false
	}
	lower := strings.ToLower(toast)
	// Duplicate phrases are checked before success so a vendor whose
	// duplicate toast happens to contain a success word still classifies
	// as a duplicate.
	for _, p := range d.DuplicateUsername {
		if strings.Contains(lower, strings.ToLower(p)) {
			return OutcomeDuplicateUsername, true
		}
	}
	for _, p := range d.DuplicateEmail {
		if strings.Contains(lower, strings.ToLower(p)) {
			return OutcomeDuplicateEmail, true
		}
	}
	for _, p := range d.DuplicateName {
		if strings.Contains(lower, strings.ToLower(p)) {
			return OutcomeDuplicateName, true
		}
	}
	for _, p := range d.Success {
		if strings.Contains(lower, strings.ToLower(p)) {
			return OutcomeSuccess, true
		}
	}
	for _, p := range d.Error {
		if strings.Contains(lower, strings.ToLower(p)) {
			return OutcomeOtherError, true
		}
	}
	return OutcomeUnknown, false
}

func matchDuplicateBody(body string) (Outcome, bool) {
	if body == "" {
		return OutcomeUnknown, false
	}
	lower := strings.ToLower(body)
	hit := false
	for _, m := range duplicateMarkers {
		if strings.Contains(lower, m) {
			hit = true
			break
		}
	}
	if !hit {
		return OutcomeUnknown, false
	}
	switch {
	case strings.Contains(lower, "username") || strings.Contains(lower, "login name"):
		return OutcomeDuplicateUsername, true
	case strings.Contains(lower, "email"):
		return OutcomeDuplicateEmail, true
	default:
		return OutcomeDuplicateName, true
	}
}
