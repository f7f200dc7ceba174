package nexus

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so engine config files can spell timeouts
// as human-readable strings ("5m", "90s").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// EngineConfig is the engine's own YAML configuration. It covers the
// collaborator endpoints and cross-vendor defaults; per-vendor behavior
// lives in the JSON vendor configs referenced by the manifest.
type EngineConfig struct {
	// Manifest is the path to the vendor manifest JSON. Relative paths
	// are resolved against the config file's directory when loaded from
	// disk.
	Manifest string `yaml:"manifest"`

	Browser   BrowserConfig   `yaml:"browser"`
	Vault     VaultConfig     `yaml:"vault"`
	Broker    BrokerConfig    `yaml:"broker"`
	Events    EventsConfig    `yaml:"events"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Redis     RedisConfig     `yaml:"redis"`
	LLM       LLMConfig       `yaml:"llm"`
}

// BrowserConfig names the browser automation binary the preflight probe
// looks for.
type BrowserConfig struct {
	Binary string `yaml:"binary"`
}

// VaultConfig points at the secret backend. The URL is handed to whatever
// SecretClient implementation the embedding application constructs; the
// engine itself never dials the vault directly.
type VaultConfig struct {
	URL string `yaml:"url"`
}

// BrokerConfig tunes the operator interaction broker.
type BrokerConfig struct {
	// AskTimeout bounds how long a vendor run waits for an operator
	// answer before the question resolves to skip. Zero means the
	// broker default.
	AskTimeout Duration `yaml:"ask_timeout"`
}

// EventsConfig tunes the progress event stream.
type EventsConfig struct {
	// Buffer is the event channel capacity. Zero means the default.
	Buffer int `yaml:"buffer"`
}

// ArtifactsConfig names the directories evidence artifacts land in. When
// both are empty the engine keeps evidence in memory.
type ArtifactsConfig struct {
	DesktopDir   string `yaml:"desktop_dir"`
	DownloadsDir string `yaml:"downloads_dir"`
}

// RedisConfig enables the optional pub/sub hand-off of sealed run
// summaries. An empty URL disables publishing.
type RedisConfig struct {
	URL     string `yaml:"url"`
	Channel string `yaml:"channel"`
}

// LLMConfig names the completion model behind the optional role
// suggester. Like the vault URL, the value is consumed by whatever
// llm.Client the embedding application constructs; the keyword scorer
// always remains available without one.
type LLMConfig struct {
	Model string `yaml:"model"`
}

// Validate checks the config for values that cannot work.
func (c *EngineConfig) Validate() error {
	if c.Events.Buffer < 0 {
		return fmt.Errorf("events.buffer must not be negative, got %d", c.Events.Buffer)
	}
	if c.Broker.AskTimeout < 0 {
		return fmt.Errorf("broker.ask_timeout must not be negative, got %s", c.Broker.AskTimeout.Std())
	}
	if (c.Artifacts.DesktopDir == "") != (c.Artifacts.DownloadsDir == "") {
		return fmt.Errorf("artifacts.desktop_dir and artifacts.downloads_dir must be set together")
	}
	return nil
}

// LoadEngineConfig reads and validates a YAML engine config. The manifest
// path, when relative, is resolved against the config file's directory so
// a config can ship next to its manifest.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read engine config: %w", err)
	}
	var cfg EngineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse engine config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config %s: %w", path, err)
	}
	if cfg.Manifest != "" && !filepath.IsAbs(cfg.Manifest) {
		cfg.Manifest = filepath.Join(filepath.Dir(path), cfg.Manifest)
	}
	return &cfg, nil
}
