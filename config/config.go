// Package config loads and validates the options recognized by the
// shipper's transmission engine (spec.md §6): a single struct with
// field-level defaults, loadable from a YAML or TOML file, plus
// resolution of the configured transmission kind to a transmit.Sender.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Transmission names one of the sink variants spec.md §4.7/§6 describes.
type Transmission string

const (
	TransmissionBase    Transmission = "base"
	TransmissionNull    Transmission = "null"
	TransmissionMock    Transmission = "mock"
	TransmissionConsole Transmission = "console"
	TransmissionStdout  Transmission = "stdout"
	TransmissionWriter  Transmission = "writer" // deprecated alias for stdout
)

// ErrUnknownTransmission is returned by BuildSender when Transmission
// names a kind it doesn't recognize (spec.md §7, "configuration error").
var ErrUnknownTransmission = errors.New("config: unknown transmission kind")

// classicKeyLength is the length of a "classic" Honeycomb write key,
// which requires a non-empty dataset (spec.md §6, §9).
const classicKeyLength = 32

// Config is the option set spec.md §6 names, with the defaults from that
// section's table applied by Load via struct tags.
type Config struct {
	APIHost  string `yaml:"api_host" toml:"api_host" default:"https://api.honeycomb.io/"`
	WriteKey string `yaml:"write_key" toml:"write_key"`
	Dataset  string `yaml:"dataset" toml:"dataset"`

	SampleRate int `yaml:"sample_rate" toml:"sample_rate" default:"1"`

	BatchSizeTrigger     int           `yaml:"batch_size_trigger" toml:"batch_size_trigger" default:"50"`
	BatchTimeTrigger     time.Duration `yaml:"batch_time_trigger" toml:"batch_time_trigger" default:"100ms"`
	MaxConcurrentBatches int           `yaml:"max_concurrent_batches" toml:"max_concurrent_batches" default:"10"`
	PendingWorkCapacity  int           `yaml:"pending_work_capacity" toml:"pending_work_capacity" default:"10000"`
	MaxResponseQueueSize int           `yaml:"max_response_queue_size" toml:"max_response_queue_size" default:"1000"`
	Timeout              time.Duration `yaml:"timeout" toml:"timeout" default:"60s"`

	Disabled          bool         `yaml:"disabled" toml:"disabled"`
	UserAgentAddition string       `yaml:"user_agent_addition" toml:"user_agent_addition"`
	Transmission      Transmission `yaml:"transmission" toml:"transmission" default:"base"`
	BrowserContext    bool         `yaml:"browser_context" toml:"browser_context"`

	// Logger and Metrics select the ambient backends; empty means the
	// package defaults (logrus, null metrics).
	Logger  LoggerConfig  `yaml:"logger" toml:"logger"`
	Metrics MetricsConfig `yaml:"metrics" toml:"metrics"`
}

// LoggerConfig selects and configures the logger backend.
type LoggerConfig struct {
	Backend string `yaml:"backend" toml:"backend" default:"logrus"` // logrus | null | telemetry
	Level   string `yaml:"level" toml:"level" default:"info"`
	Dataset string `yaml:"dataset" toml:"dataset" default:"shipper-internal"`
}

// MetricsConfig selects and configures the metrics backend.
type MetricsConfig struct {
	Backend      string `yaml:"backend" toml:"backend" default:"null"` // null | prometheus | legacy | otel
	ListenAddr   string `yaml:"listen_addr" toml:"listen_addr" default:":9090"`
	Prefix       string `yaml:"prefix" toml:"prefix" default:"shipper_"`
	OTLPEndpoint string `yaml:"otlp_endpoint" toml:"otlp_endpoint"`
}

// Default returns a Config with every field-level default applied and
// nothing else — equivalent to decoding an empty file.
func Default() (*Config, error) {
	c := &Config{}
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("config: applying defaults: %w", err)
	}
	return c, nil
}

// Load reads path, decodes it according to its extension (.yaml/.yml or
// .toml), applies field-level defaults to whatever the file left zero,
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	c := &Config{}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("config: parsing %s as YAML: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("config: parsing %s as TOML: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config: unrecognized extension %q for %s", ext, path)
	}

	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("config: applying defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the classic-key/dataset coupling described in spec.md
// §6/§9: a 32-character write key is "classic" and requires a non-empty
// dataset; any other key silently gets "unknown_dataset" when empty.
func (c *Config) Validate() error {
	if c.WriteKey == "" {
		return errors.New("config: write_key is required")
	}
	if len(c.WriteKey) == classicKeyLength && c.Dataset == "" {
		return errors.New("config: a classic write key (32 characters) requires a non-empty dataset")
	}
	if c.Dataset == "" {
		c.Dataset = "unknown_dataset"
	}
	return nil
}

// IsClassicKey reports whether WriteKey is a classic (32-character) key.
func (c *Config) IsClassicKey() bool {
	return len(c.WriteKey) == classicKeyLength
}
