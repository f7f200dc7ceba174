package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/nexus-hq/nexus/broker"
	"github.com/nexus-hq/nexus/browser"
	"github.com/nexus-hq/nexus/types"
	"github.com/nexus-hq/nexus/vault"
)

// maxConflictRounds bounds the duplicate-identity retry loop so a vendor
// that rejects every alternate value cannot spin forever.
const maxConflictRounds = 5

// Driver is the contract every vendor automation satisfies. The
// orchestrator treats drivers as opaque: it calls Provision once per run
// and receives a sealed VendorResult, never an error.
type Driver interface {
	// ID returns the stable short vendor name (e.g. "accountchek").
	ID() string

	// Label returns the human-readable vendor name.
	Label() string

	// Provision runs the full lifecycle for one subject. It must never
	// panic across this boundary and always returns a sealed result.
	Provision(ctx context.Context, env *Env) *VendorResult
}

// EvidenceSink receives artifacts captured during a run: result screenshots
// and extracted text snippets. Implementations write to the operator's
// desktop and downloads folders; tests collect to memory.
type EvidenceSink interface {
	// SaveScreenshot stores PNG bytes under the given file name and
	// returns a reference for the result's evidence list.
	SaveScreenshot(name string, png []byte) (string, error)

	// SaveText stores a text snippet under the given file name.
	SaveText(name, content string) (string, error)
}

// Env carries the run-scoped collaborators a driver needs. One Env is built
// per run and shared by every vendor in it.
type Env struct {
	Subject    *types.Subject
	ConfigPath string
	Broker     *broker.Broker
	Vault      *vault.Resolver
	Runtime    browser.Runtime
	Evidence   EvidenceSink
	Logger     *slog.Logger

	// Progress, when set, receives every message, warning, and error the
	// driver appends as it happens. The orchestrator turns these into
	// per-vendor progress events.
	Progress func(severity Severity, text string)
}

// Session is the per-vendor working state handed to each lifecycle phase.
// It owns the browser page from launch to teardown.
type Session struct {
	Subject     *types.Subject
	Config      *Config
	Page        browser.Page
	Credentials map[types.CredentialPurpose]string
	Result      *VendorResult
	Classifier  *Classifier
	Broker      *broker.Broker
	Evidence    EvidenceSink
	Logger      *slog.Logger

	// Attempted records the identity values last entered in the form, so
	// a duplicate can be described to the operator. FillForm and Resubmit
	// keep these current.
	Attempted struct {
		Username string
		Email    string
	}
}

// Credential returns a resolved secret by purpose. Purposes not requested
// at lifecycle start are not available.
func (s *Session) Credential(purpose types.CredentialPurpose) string {
	return s.Credentials[purpose]
}

// WaitPastMfa performs the non-secret pre-clicks and then polls until the
// challenge text is gone from the page AND at least one success indicator
// is visible. The challenge disappearing on its own is not enough.
func (s *Session) WaitPastMfa(ctx context.Context) error {
	mfa := s.Config.Mfa
	for _, sel := range mfa.PreClicks {
		if err := s.Page.Click(ctx, sel); err != nil {
			s.Logger.Warn("mfa pre-click failed", "selector", sel, "error", err)
		}
	}

	return Poll(ctx, s.Config.MfaPollConfig(), s.Logger, "mfa challenge", func(ctx context.Context) (bool, error) {
		if mfa.Detection.ChallengeText != "" {
			body, err := s.Page.BodyText(ctx)
			if err != nil {
				return false, err
			}
			if strings.Contains(body, mfa.Detection.ChallengeText) {
				return false, nil
			}
		}
		for _, sel := range mfa.Detection.SuccessIndicators {
			visible, err := s.Page.Visible(ctx, sel)
			if err != nil {
				return false, err
			}
			if visible {
				return true, nil
			}
		}
		return false, nil
	})
}

// CaptureResultScreenshot snapshots the page and stores it through the
// evidence sink under the standard result name. Capture failures degrade to
// a log line; evidence is best effort.
func (s *Session) CaptureResultScreenshot(ctx context.Context, vendorID string) {
	if s.Evidence == nil || s.Page == nil {
		return
	}
	png, err := s.Page.Screenshot(ctx)
	if err != nil {
		s.Logger.Warn("screenshot capture failed", "error", err)
		return
	}
	name := fmt.Sprintf("%s_result_%s.png", vendorID,
		strings.ReplaceAll(s.Subject.DisplayName, " ", "_"))
	ref, err := s.Evidence.SaveScreenshot(name, png)
	if err != nil {
		s.Logger.Warn("screenshot save failed", "name", name, "error", err)
		return
	}
	s.Result.AddEvidence(ref)
}

// Phases are the vendor-specific steps of the shared lifecycle. Authenticate,
// FillForm, and Submit are required; navigation, verification, and capture
// steps default to no-ops. Resubmit and ProceedAnyway are only reached
// through an operator resolution; leaving one nil fails the vendor cleanly
// if the operator picks that resolution.
type Phases struct {
	// Authenticate logs into the portal using the session credentials.
	Authenticate func(ctx context.Context, s *Session) error

	// Navigate moves from the authenticated landing page to the user
	// administration area.
	Navigate func(ctx context.Context, s *Session) error

	// OpenForm opens the new-user form.
	OpenForm func(ctx context.Context, s *Session) error

	// FillForm populates every field of the form. Each field's source is
	// explicit: a directory attribute, an inference helper, or a vendor
	// default from the config.
	FillForm func(ctx context.Context, s *Session) error

	// Submit submits the form and returns the settled page snapshot for
	// classification.
	Submit func(ctx context.Context, s *Session) (PageState, error)

	// Resubmit applies a retry resolution by updating only the offending
	// field(s) and submitting again. Upstream choices must be preserved.
	Resubmit func(ctx context.Context, s *Session, r broker.Resolution) (PageState, error)

	// ProceedAnyway clicks the vendor's "create anyway" control after the
	// operator chose to proceed past a duplicate name.
	ProceedAnyway func(ctx context.Context, s *Session) (PageState, error)

	// Verify confirms the success sentinel after a Success classification.
	Verify func(ctx context.Context, s *Session) error

	// Capture extracts side artifacts after verification, such as a
	// review widget embed code and a profile URL.
	Capture func(ctx context.Context, s *Session) error
}

// Lifecycle is the shared driver base. A concrete vendor driver embeds one
// with its phases and credential purposes; Provision then runs the uniform
// state machine: load config, acquire credentials, launch a fresh browser,
// authenticate, wait past MFA when enabled, navigate, fill, submit,
// classify, loop on conflicts, verify, tear down.
type Lifecycle struct {
	VendorID    string
	VendorLabel string

	// Purposes are the secret purposes resolved before the browser opens.
	// A missing secret fails the vendor without launching anything.
	Purposes []types.CredentialPurpose

	Phases Phases
}

// ID implements Driver.
func (l *Lifecycle) ID() string { return l.VendorID }

// Label implements Driver.
func (l *Lifecycle) Label() string { return l.VendorLabel }

// Provision implements Driver by running the shared state machine around
// the vendor's phases. The returned result is always sealed.
func (l *Lifecycle) Provision(ctx context.Context, env *Env) *VendorResult {
	result := NewVendorResult(l.VendorID, l.VendorLabel)
	if env.Progress != nil {
		result.OnAppend(env.Progress)
	}
	logger := env.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("vendor", l.VendorID)

	cfg, err := LoadConfig(l.VendorID, env.ConfigPath)
	if err != nil {
		return l.fail(ctx, nil, result, err)
	}

	classifier, err := NewClassifier(cfg.Classification)
	if err != nil {
		return l.fail(ctx, nil, result,
			New(l.VendorID, "load-config", ErrCodeConfigInvalid, "classification rules invalid").WithCause(err))
	}

	creds := make(map[types.CredentialPurpose]string, len(l.Purposes))
	for _, purpose := range l.Purposes {
		value, err := env.Vault.Get(ctx, l.VendorID, purpose)
		if err != nil {
			code := ErrCodeCredentialBackend
			if vault.IsMissing(err) {
				code = ErrCodeCredentialMissing
			}
			return l.fail(ctx, nil, result,
				New(l.VendorID, "acquire-credentials", code,
					fmt.Sprintf("cannot resolve %s", purpose)).WithCause(err))
		}
		creds[purpose] = value
	}
	result.AddMessage(fmt.Sprintf("Resolved %d credentials", len(creds)))

	page, err := env.Runtime.Launch(ctx)
	if err != nil {
		return l.fail(ctx, nil, result,
			New(l.VendorID, "launch-browser", ErrCodeBrowserLaunchFailed, "browser session failed to start").WithCause(err))
	}
	result.AddMessage("Browser session started")

	session := &Session{
		Subject:     env.Subject,
		Config:      cfg,
		Page:        page,
		Credentials: creds,
		Result:      result,
		Classifier:  classifier,
		Broker:      env.Broker,
		Evidence:    env.Evidence,
		Logger:      logger,
	}

	defer func() {
		if err := page.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("browser close failed",
				"code", ErrCodeTeardownError, "error", err)
		}
		result.Seal(result.Success)
	}()

	if err := l.run(ctx, session); err != nil {
		return l.fail(ctx, session, result, err)
	}

	result.Seal(true)
	return result
}

// run executes authenticate through verify. Returning nil means the account
// was created (or accepted) and the result may seal successful; a sealed
// skip returns nil with Success already forced false by the warning path.
func (l *Lifecycle) run(ctx context.Context, s *Session) error {
	if err := l.Phases.Authenticate(ctx, s); err != nil {
		return wrapPhase(l.VendorID, "authenticate", ErrCodeAuthFailed, err)
	}
	s.Result.AddMessage("Authenticated")

	if s.Config.Mfa.Enabled {
		if err := s.WaitPastMfa(ctx); err != nil {
			if errors.Is(err, ErrPollTimeout) {
				return New(l.VendorID, "mfa-wait", ErrCodeMfaTimeout,
					"MFA challenge was not completed in time")
			}
			return wrapPhase(l.VendorID, "mfa-wait", ErrCodeAuthFailed, err)
		}
		s.Result.AddMessage("MFA challenge passed")
	}

	if l.Phases.Navigate != nil {
		if err := l.Phases.Navigate(ctx, s); err != nil {
			return wrapPhase(l.VendorID, "navigate", ErrCodeNavigationFailed, err)
		}
	}
	if l.Phases.OpenForm != nil {
		if err := l.Phases.OpenForm(ctx, s); err != nil {
			return wrapPhase(l.VendorID, "open-form", ErrCodeNavigationFailed, err)
		}
	}

	if err := l.Phases.FillForm(ctx, s); err != nil {
		return wrapPhase(l.VendorID, "fill-form", ErrCodeFormFillFailed, err)
	}
	s.Result.AddMessage("Form filled")

	state, err := l.Phases.Submit(ctx, s)
	if err != nil {
		return wrapPhase(l.VendorID, "submit", ErrCodeSubmitFailed, err)
	}

	done, err := l.resolveOutcome(ctx, s, state)
	if err != nil || !done {
		return err
	}

	if l.Phases.Verify != nil {
		if err := l.Phases.Verify(ctx, s); err != nil {
			return wrapPhase(l.VendorID, "verify", ErrCodeUnknownOutcome, err)
		}
		s.Result.AddMessage("Creation verified")
	}
	if l.Phases.Capture != nil {
		if err := l.Phases.Capture(ctx, s); err != nil {
			s.Result.AddWarning(fmt.Sprintf("Side artifact capture failed: %v", err))
		}
	}
	return nil
}

// resolveOutcome classifies the post-submit snapshot and drives the
// conflict loop. It returns done=true when the account was created, or
// done=false with nil error when the operator skipped the vendor.
func (l *Lifecycle) resolveOutcome(ctx context.Context, s *Session, state PageState) (bool, error) {
	for round := 0; round < maxConflictRounds; round++ {
		outcome := s.Classifier.Classify(state)
		switch outcome {
		case OutcomeSuccess:
			return true, nil

		case OutcomeDuplicateUsername, OutcomeDuplicateEmail, OutcomeDuplicateName:
			conflict := conflictFor(outcome, l.VendorID, s)
			s.Result.AddMessage(fmt.Sprintf("Duplicate detected: %s", conflict))
			resolution, err := s.Broker.Ask(ctx, conflict)
			if err != nil {
				return false, wrapPhase(l.VendorID, "conflict", ErrCodeSubmitFailed, err)
			}

			switch resolution.Kind {
			case broker.ResolutionSkip:
				s.Result.AddWarning(fmt.Sprintf("Skipped after %s", conflict))
				s.Result.Seal(false)
				return false, nil
			case broker.ResolutionRetry:
				if l.Phases.Resubmit == nil {
					return false, New(l.VendorID, "resubmit", ErrCodeSubmitFailed,
						"driver has no resubmit step to apply a retry resolution")
				}
				s.Result.AddMessage(fmt.Sprintf("Retrying with alternate value after %s", conflict))
				state, err = l.Phases.Resubmit(ctx, s, resolution)
				if err != nil {
					return false, wrapPhase(l.VendorID, "resubmit", ErrCodeSubmitFailed, err)
				}
			case broker.ResolutionProceed:
				if l.Phases.ProceedAnyway == nil {
					return false, New(l.VendorID, "proceed", ErrCodeSubmitFailed,
						"driver has no proceed-anyway step to apply a proceed resolution")
				}
				s.Result.AddMessage("Proceeding despite duplicate name")
				state, err = l.Phases.ProceedAnyway(ctx, s)
				if err != nil {
					return false, wrapPhase(l.VendorID, "proceed", ErrCodeSubmitFailed, err)
				}
			}

		case OutcomeOtherError:
			return false, New(l.VendorID, "classify", ErrCodeSubmitFailed,
				fmt.Sprintf("vendor rejected the submission: %s", firstNonEmpty(state.Toast, "see page for details")))

		default:
			return false, New(l.VendorID, "classify", ErrCodeUnknownOutcome,
				"submission outcome could not be determined").WithDetails(map[string]any{
				"toast":      state.Toast,
				"url":        state.URL,
				"modal_open": state.ModalOpen,
			})
		}
	}

	return false, New(l.VendorID, "conflict", ErrCodeSubmitFailed,
		fmt.Sprintf("gave up after %d conflict rounds", maxConflictRounds))
}

// fail records the error, captures a result screenshot when a page is open,
// and seals the result as failed.
func (l *Lifecycle) fail(ctx context.Context, s *Session, result *VendorResult, err error) *VendorResult {
	result.AddError(err.Error())
	if s != nil {
		s.CaptureResultScreenshot(ctx, l.VendorID)
	}
	result.Seal(false)
	return result
}

func conflictFor(outcome Outcome, vendorID string, s *Session) broker.Conflict {
	switch outcome {
	case OutcomeDuplicateUsername:
		return broker.DuplicateUsername(vendorID, s.Attempted.Username)
	case OutcomeDuplicateEmail:
		return broker.DuplicateEmail(vendorID, firstNonEmpty(s.Attempted.Email, s.Subject.Email()))
	default:
		return broker.DuplicateName(vendorID, s.Subject.FullName())
	}
}

func wrapPhase(vendor, phase, code string, err error) error {
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return New(vendor, phase, code, "").WithCause(err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
