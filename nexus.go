package nexus

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nexus-hq/nexus/broker"
	"github.com/nexus-hq/nexus/browser"
	"github.com/nexus-hq/nexus/directory"
	"github.com/nexus-hq/nexus/infer"
	"github.com/nexus-hq/nexus/report"
	"github.com/nexus-hq/nexus/run"
	"github.com/nexus-hq/nexus/types"
	"github.com/nexus-hq/nexus/vault"
	"github.com/nexus-hq/nexus/vendorreg"
)

// Engine wires the vendor registry, drivers, credential resolver, browser
// runtime, and report sinks into one provisioning front door. Construct it
// once with NewEngine and reuse it across runs; each Run gets its own
// interaction broker and run ID.
type Engine struct {
	config       *EngineConfig
	registry     *vendorreg.Registry
	orchestrator *run.Orchestrator
	directory    directory.Client
	resolver     *vault.Resolver
	runtime      browser.Runtime
	suggester    *infer.RoleSuggester
	publisher    *report.Publisher
	logger       *slog.Logger
}

// NewEngine builds an Engine from the supplied options. A secret backend
// (WithSecrets), a browser runtime (WithRuntime), and a vendor registry
// (WithRegistry, or a manifest path in the config) are required.
//
// Example:
//
//	engine, err := nexus.NewEngine(
//	    nexus.WithConfig("/etc/nexus/engine.yaml"),
//	    nexus.WithSecrets(kvClient),
//	    nexus.WithRuntime(playwrightRuntime),
//	    nexus.WithDrivers(drivers...),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
func NewEngine(opts ...Option) (*Engine, error) {
	o := &engineOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	cfg := o.config
	if cfg == nil && o.configPath != "" {
		loaded, err := LoadEngineConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cfg == nil {
		cfg = &EngineConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}

	if o.secrets == nil {
		return nil, fmt.Errorf("a secret backend is required: use WithSecrets")
	}
	if o.runtime == nil {
		return nil, fmt.Errorf("a browser runtime is required: use WithRuntime")
	}

	registry := o.registry
	if registry == nil {
		if cfg.Manifest == "" {
			return nil, fmt.Errorf("a vendor registry is required: use WithRegistry or set manifest in the engine config")
		}
		loaded, err := vendorreg.Load(cfg.Manifest)
		if err != nil {
			return nil, fmt.Errorf("load vendor manifest: %w", err)
		}
		registry = loaded
	}

	evidence := o.evidence
	if evidence == nil {
		if cfg.Artifacts.DesktopDir != "" {
			evidence = &report.FilesystemSink{
				DesktopDir:   cfg.Artifacts.DesktopDir,
				DownloadsDir: cfg.Artifacts.DownloadsDir,
			}
		} else {
			evidence = report.NewMemorySink()
		}
	}

	resolver := vault.NewResolver(o.secrets, o.logger)

	runOpts := []run.Option{
		run.WithLogger(o.logger),
		run.WithEmitter(run.NewEmitter(cfg.Events.Buffer)),
		run.WithEvidenceSink(evidence),
	}
	if o.tracer != nil {
		runOpts = append(runOpts, run.WithTracer(o.tracer))
	}
	if o.meter != nil {
		runOpts = append(runOpts, run.WithMeter(o.meter))
	}
	if cfg.Broker.AskTimeout > 0 {
		runOpts = append(runOpts, run.WithAskTimeout(cfg.Broker.AskTimeout.Std()))
	}

	e := &Engine{
		config:       cfg,
		registry:     registry,
		orchestrator: run.New(registry, o.drivers, resolver, o.runtime, runOpts...),
		directory:    o.directory,
		resolver:     resolver,
		runtime:      o.runtime,
		suggester:    infer.NewRoleSuggester(o.llm, o.logger),
		logger:       o.logger,
	}

	if cfg.Redis.URL != "" {
		pub, err := report.NewPublisher(report.PublisherOptions{
			URL:     cfg.Redis.URL,
			Channel: cfg.Redis.Channel,
			Logger:  o.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("connect report publisher: %w", err)
		}
		e.publisher = pub
	}

	return e, nil
}

// Events returns the progress event stream shared by all runs on this
// engine. The channel is never closed.
func (e *Engine) Events() <-chan run.Event {
	return e.orchestrator.Events()
}

// Questions returns pending operator questions. Questions also appear on
// the event stream as interaction events, but the event buffer drops its
// oldest entries under pressure; this channel always holds the latest
// unanswered question.
func (e *Engine) Questions() <-chan *broker.Question {
	return e.orchestrator.Questions()
}

// Registry exposes the loaded vendor registry so embedding applications
// can list vendors for selection UIs.
func (e *Engine) Registry() *vendorreg.Registry {
	return e.registry
}

// Health reports whether the browser runtime is usable. A Run against an
// unhealthy runtime fails every selected vendor without launching.
func (e *Engine) Health() types.HealthStatus {
	return e.runtime.Health()
}

// Run provisions the subject across the given vendors. An empty vendorIDs
// selects every enabled vendor whose manifest group the subject belongs
// to. The summary is published to the configured Redis channel when one
// is set; publish failures are logged, not fatal.
func (e *Engine) Run(ctx context.Context, subject *types.Subject, vendorIDs []string) (*run.Summary, error) {
	if subject == nil {
		return nil, fmt.Errorf("subject is required")
	}
	if len(vendorIDs) == 0 {
		for _, desc := range e.registry.AutoSelect(subject) {
			vendorIDs = append(vendorIDs, desc.VendorID)
		}
	}
	if len(vendorIDs) == 0 {
		return nil, fmt.Errorf("no vendors selected for %s: none given and no manifest group matches the subject", subject.FullName())
	}

	summary := e.orchestrator.Run(ctx, subject, vendorIDs)

	if e.publisher != nil {
		if err := e.publisher.Publish(ctx, summary); err != nil {
			e.logger.Warn("report publish failed", "run_id", summary.RunID, "error", err)
		}
	}
	return summary, nil
}

// RunForSubject loads the subject from the directory by id, then runs.
// Requires a directory client.
func (e *Engine) RunForSubject(ctx context.Context, subjectID string, vendorIDs []string) (*run.Summary, error) {
	if e.directory == nil {
		return nil, fmt.Errorf("no directory client configured: use WithDirectory or call Run with a subject")
	}
	subject, err := e.directory.GetSubject(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("load subject %s: %w", subjectID, err)
	}
	return e.Run(ctx, &subject, vendorIDs)
}

// SearchSubjects finds directory users matching the query. Requires a
// directory client.
func (e *Engine) SearchSubjects(ctx context.Context, query string, field directory.SearchField) ([]types.Subject, error) {
	if e.directory == nil {
		return nil, fmt.Errorf("no directory client configured: use WithDirectory")
	}
	return e.directory.Search(ctx, query, field)
}

// SuggestRole picks the best catalog role for a job title, consulting the
// configured language model first when one is present.
func (e *Engine) SuggestRole(ctx context.Context, jobTitle string, catalog []infer.Role, department string) (infer.RoleSuggestion, error) {
	return e.suggester.Suggest(ctx, jobTitle, catalog, department)
}

// Close releases held connections. Safe to call on an engine without a
// publisher.
func (e *Engine) Close() error {
	if e.publisher != nil {
		return e.publisher.Close()
	}
	return nil
}
