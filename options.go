package nexus

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/nexus-hq/nexus/browser"
	"github.com/nexus-hq/nexus/directory"
	"github.com/nexus-hq/nexus/driver"
	"github.com/nexus-hq/nexus/llm"
	"github.com/nexus-hq/nexus/vault"
	"github.com/nexus-hq/nexus/vendorreg"
)

// Option configures the Engine.
type Option func(*engineOptions)

// engineOptions collects everything NewEngine needs before wiring.
type engineOptions struct {
	configPath string
	config     *EngineConfig
	registry   *vendorreg.Registry
	drivers    []driver.Driver
	secrets    vault.SecretClient
	runtime    browser.Runtime
	directory  directory.Client
	evidence   driver.EvidenceSink
	llm        llm.Client
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter
}

// WithConfig sets the YAML engine config file path. The config is loaded
// and validated during NewEngine.
func WithConfig(path string) Option {
	return func(o *engineOptions) {
		o.configPath = path
	}
}

// WithEngineConfig supplies an already-built config, bypassing the file
// loader. Useful when the embedding application assembles config itself.
func WithEngineConfig(cfg EngineConfig) Option {
	return func(o *engineOptions) {
		o.config = &cfg
	}
}

// WithRegistry supplies a pre-loaded vendor registry instead of loading
// the manifest named by the config.
func WithRegistry(reg *vendorreg.Registry) Option {
	return func(o *engineOptions) {
		o.registry = reg
	}
}

// WithDrivers registers the vendor drivers the engine can run. Each
// driver's ID must match a manifest vendor_name.
func WithDrivers(drivers ...driver.Driver) Option {
	return func(o *engineOptions) {
		o.drivers = append(o.drivers, drivers...)
	}
}

// WithSecrets sets the secret backend client. Required.
func WithSecrets(client vault.SecretClient) Option {
	return func(o *engineOptions) {
		o.secrets = client
	}
}

// WithRuntime sets the browser automation runtime. Required.
func WithRuntime(rt browser.Runtime) Option {
	return func(o *engineOptions) {
		o.runtime = rt
	}
}

// WithDirectory sets the corporate directory client. Optional; without it
// the subject lookup helpers return an error and callers must hand
// NewEngine fully-populated subjects.
func WithDirectory(client directory.Client) Option {
	return func(o *engineOptions) {
		o.directory = client
	}
}

// WithEvidenceSink overrides the evidence sink the config would select.
func WithEvidenceSink(sink driver.EvidenceSink) Option {
	return func(o *engineOptions) {
		o.evidence = sink
	}
}

// WithLLM sets the optional language-model client backing role
// suggestions. Without it suggestions fall back to keyword scoring.
func WithLLM(client llm.Client) Option {
	return func(o *engineOptions) {
		o.llm = client
	}
}

// WithLogger sets a custom logger. If not provided, a default JSON
// logger writing to stdout is created.
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer for run and vendor spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *engineOptions) {
		o.tracer = tracer
	}
}

// WithMeter sets an OpenTelemetry meter for the vendor outcome counters.
func WithMeter(meter metric.Meter) Option {
	return func(o *engineOptions) {
		o.meter = meter
	}
}
