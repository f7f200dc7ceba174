package run

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/nexus-hq/nexus/broker"
	"github.com/nexus-hq/nexus/browser"
	"github.com/nexus-hq/nexus/driver"
	"github.com/nexus-hq/nexus/types"
	"github.com/nexus-hq/nexus/vault"
	"github.com/nexus-hq/nexus/vendorreg"
)

// Orchestrator runs the selected vendors for one subject, strictly in
// order, one at a time. Each driver invocation is isolated: a failure,
// panic, or timeout in one vendor never prevents the next from running.
type Orchestrator struct {
	registry *vendorreg.Registry
	drivers  map[string]driver.Driver
	vault    *vault.Resolver
	runtime  browser.Runtime
	evidence driver.EvidenceSink
	emitter  *Emitter
	// questions delivers pending broker questions outside the lossy event
	// stream. The broker holds at most one open question, so capacity 1.
	questions chan *broker.Question
	logger    *slog.Logger
	tracer    trace.Tracer

	askTimeout time.Duration

	successes metric.Int64Counter
	failures  metric.Int64Counter
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger. Defaults to discarding.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTracer sets an OpenTelemetry tracer; one span covers the run and one
// nested span covers each vendor.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithMeter registers the vendor success/failure counters on the given meter.
func WithMeter(meter metric.Meter) Option {
	return func(o *Orchestrator) {
		o.successes, _ = meter.Int64Counter("nexus.vendor.successes")
		o.failures, _ = meter.Int64Counter("nexus.vendor.failures")
	}
}

// WithEmitter sets the progress event emitter the UI subscribes to.
func WithEmitter(emitter *Emitter) Option {
	return func(o *Orchestrator) {
		if emitter != nil {
			o.emitter = emitter
		}
	}
}

// WithEvidenceSink sets where screenshots and captured snippets go.
func WithEvidenceSink(sink driver.EvidenceSink) Option {
	return func(o *Orchestrator) {
		o.evidence = sink
	}
}

// WithAskTimeout overrides how long a driver's question to the operator may
// stay unanswered before it resolves as Skip.
func WithAskTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.askTimeout = d
		}
	}
}

// New builds an orchestrator over the given registry, drivers, credential
// resolver, and browser runtime.
func New(registry *vendorreg.Registry, drivers []driver.Driver, resolver *vault.Resolver, runtime browser.Runtime, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry:   registry,
		drivers:    make(map[string]driver.Driver, len(drivers)),
		vault:      resolver,
		runtime:    runtime,
		emitter:    NewEmitter(0),
		questions:  make(chan *broker.Question, 1),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:     tracenoop.NewTracerProvider().Tracer("nexus"),
		askTimeout: broker.DefaultAskTimeout,
	}
	meter := metricnoop.NewMeterProvider().Meter("nexus")
	o.successes, _ = meter.Int64Counter("nexus.vendor.successes")
	o.failures, _ = meter.Int64Counter("nexus.vendor.failures")

	for _, d := range drivers {
		o.drivers[d.ID()] = d
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Events returns the progress event channel for the UI to drain.
func (o *Orchestrator) Events() <-chan Event {
	return o.emitter.Events()
}

// Questions returns pending operator questions. Unlike the event mirror of
// the same question, this channel is never subject to drop-oldest eviction;
// a question stays here until read or replaced by a newer one.
func (o *Orchestrator) Questions() <-chan *broker.Question {
	return o.questions
}

// Run provisions the subject into every selected vendor and returns the
// sealed summary. Vendors run in the order given; cancellation is honored
// between vendors, never mid-driver. Every selected vendor gets exactly one
// result, even when the run fails preflight or is cancelled early.
func (o *Orchestrator) Run(ctx context.Context, subject *types.Subject, vendorIDs []string) *Summary {
	runID := uuid.NewString()
	logger := o.logger.With("run_id", runID)

	ctx, span := o.tracer.Start(ctx, "nexus.run",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("subject.id", subject.ID),
			attribute.Int("vendors.selected", len(vendorIDs)),
		))
	defer span.End()

	summary := &Summary{
		RunID:     runID,
		Subject:   subject,
		StartTime: time.Now(),
	}

	b := broker.New(broker.WithTimeout(o.askTimeout), broker.WithLogger(logger))
	forwardCtx, stopForwarding := context.WithCancel(context.Background())
	defer stopForwarding()
	go o.forwardQuestions(forwardCtx, b)

	logger.Info("run started", "subject", subject.DisplayName, "vendors", len(vendorIDs))

	if health := o.runtime.Health(); health.IsUnhealthy() {
		// Every selected vendor fails with the same actionable message and
		// no browser is ever launched.
		logger.Error("browser runtime preflight failed", "reason", health.Message)
		for _, id := range vendorIDs {
			result := o.preflightFailure(id, health.Message)
			summary.Results = append(summary.Results, result)
			o.emitUnrun(result)
		}
		return o.seal(logger, summary)
	}

	for _, id := range vendorIDs {
		if ctx.Err() != nil {
			result := driver.NewVendorResult(id, o.labelFor(id))
			result.AddWarning("Run cancelled before this vendor started")
			result.Seal(false)
			summary.Results = append(summary.Results, result)
			o.emitUnrun(result)
			continue
		}

		result := o.runVendor(ctx, b, subject, id)
		summary.Results = append(summary.Results, result)

		if result.Success {
			o.successes.Add(ctx, 1, metric.WithAttributes(attribute.String("vendor", id)))
		} else {
			o.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("vendor", id)))
		}
	}

	return o.seal(logger, summary)
}

// runVendor resolves the descriptor and driver, then invokes the driver
// inside the isolation guard. It always returns a sealed result.
func (o *Orchestrator) runVendor(ctx context.Context, b *broker.Broker, subject *types.Subject, vendorID string) *driver.VendorResult {
	ctx, span := o.tracer.Start(ctx, "nexus.vendor",
		trace.WithAttributes(attribute.String("vendor", vendorID)))
	defer span.End()

	o.emitter.Emit(Event{Kind: EventVendorStarted, VendorID: vendorID})

	desc, err := o.registry.Resolve(vendorID)
	if err != nil {
		result := driver.NewVendorResult(vendorID, o.labelFor(vendorID))
		result.AddError(fmt.Sprintf("Vendor cannot run: %v", err))
		result.Seal(false)
		o.emitFinished(result)
		return result
	}

	d, ok := o.drivers[vendorID]
	if !ok {
		result := driver.NewVendorResult(vendorID, desc.Label)
		result.AddError(fmt.Sprintf("No driver registered for vendor %q", vendorID))
		result.Seal(false)
		o.emitFinished(result)
		return result
	}

	env := &driver.Env{
		Subject:    subject,
		ConfigPath: desc.ConfigPath,
		Broker:     b,
		Vault:      o.vault,
		Runtime:    o.runtime,
		Evidence:   o.evidence,
		Logger:     o.logger,
		Progress: func(severity driver.Severity, text string) {
			o.emitter.Emit(Event{
				Kind:     EventVendorMessage,
				VendorID: vendorID,
				Text:     text,
				Severity: severity,
			})
		},
	}

	result := o.invoke(ctx, d, env, desc)
	o.emitFinished(result)
	return result
}

// invoke runs the driver behind a recover guard so an escaped panic becomes
// an error on that vendor's result instead of ending the run.
func (o *Orchestrator) invoke(ctx context.Context, d driver.Driver, env *driver.Env, desc vendorreg.Descriptor) (result *driver.VendorResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("driver panicked", "vendor", desc.VendorID, "panic", r)
			if result == nil {
				result = driver.NewVendorResult(desc.VendorID, desc.Label)
			}
			result.AddError(fmt.Sprintf("Driver crashed: %v", r))
			result.Seal(false)
		}
	}()

	result = d.Provision(ctx, env)
	if result == nil {
		result = driver.NewVendorResult(desc.VendorID, desc.Label)
		result.AddError("Driver returned no result")
	}
	if !result.Sealed() {
		result.Seal(result.Success)
	}
	return result
}

// forwardQuestions surfaces broker questions for the life of one run, both
// on the dedicated Questions channel and as an event. Answering either copy
// resolves the question; the duplicate answer is ignored.
func (o *Orchestrator) forwardQuestions(ctx context.Context, b *broker.Broker) {
	for {
		select {
		case <-ctx.Done():
			return
		case q := <-b.Questions():
			for {
				select {
				case o.questions <- q:
				default:
					// An unread question from an earlier ask is stale by
					// now; replace it.
					select {
					case <-o.questions:
					default:
					}
					continue
				}
				break
			}
			o.emitter.Emit(Event{
				Kind:     EventInteractionRequested,
				VendorID: q.Conflict.VendorID,
				Question: q,
			})
		}
	}
}

func (o *Orchestrator) preflightFailure(vendorID, reason string) *driver.VendorResult {
	result := driver.NewVendorResult(vendorID, o.labelFor(vendorID))
	result.AddError(reason)
	result.Seal(false)
	return result
}

// emitUnrun emits the started/finished pair for a vendor that never ran a driver.
func (o *Orchestrator) emitUnrun(result *driver.VendorResult) {
	o.emitter.Emit(Event{Kind: EventVendorStarted, VendorID: result.VendorID})
	o.emitFinished(result)
}

func (o *Orchestrator) emitFinished(result *driver.VendorResult) {
	o.emitter.Emit(Event{
		Kind:      EventVendorFinished,
		VendorID:  result.VendorID,
		Success:   result.Success,
		DurationS: result.Duration().Seconds(),
	})
}

func (o *Orchestrator) seal(logger *slog.Logger, summary *Summary) *Summary {
	summary.EndTime = time.Now()
	logger.Info("run finished",
		"succeeded", summary.SuccessCount(),
		"failed", summary.FailureCount(),
		"duration", summary.TotalDuration().Round(time.Millisecond))
	o.emitter.Emit(Event{Kind: EventRunFinished, Summary: summary})
	return summary
}

func (o *Orchestrator) labelFor(vendorID string) string {
	if d, ok := o.registry.Lookup(vendorID); ok {
		return d.Label
	}
	return vendorID
}
