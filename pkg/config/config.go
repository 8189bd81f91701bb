// Package config loads and validates solver run configuration from YAML.
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/markovkit/markovkit/pkg/backend"
	"github.com/markovkit/markovkit/pkg/errors"
	"github.com/markovkit/markovkit/pkg/logging"
	"github.com/markovkit/markovkit/pkg/runlog"
	"github.com/markovkit/markovkit/pkg/solver"
)

// Backend kinds accepted by BackendConfig.Kind.
const (
	KindSequential = "sequential"
	KindParallel   = "parallel"
)

// Config represents the complete configuration for a solver run.
type Config struct {
	// Solver configuration
	Solver SolverConfig `yaml:"solver,omitempty"`

	// Backend configuration
	Backend BackendConfig `yaml:"backend,omitempty"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging,omitempty"`

	// Run log configuration
	RunLog RunLogConfig `yaml:"run_log,omitempty"`
}

// SolverConfig holds engine-level settings shared by the MDP and POMDP
// solvers.
type SolverConfig struct {
	// Alpha-vector capacity per horizon. Zero keeps one slot per stored
	// belief.
	MaxAlphaVectors int `yaml:"max_alpha_vectors" validate:"min=0"`

	// Seed for belief sampling and expansion. Zero selects a time-based
	// seed.
	Seed int64 `yaml:"seed"`

	// Number of beliefs to add through random trajectory expansion before
	// solving. Zero skips expansion.
	ExpandBeliefs int `yaml:"expand_beliefs" validate:"min=0"`
}

// BackendConfig selects and tunes the execution backend.
type BackendConfig struct {
	// Backend kind (sequential, parallel)
	Kind string `yaml:"kind" validate:"required,oneof=sequential parallel"`

	// Threads per work group; must be a multiple of the warp size
	WorkGroupSize int `yaml:"work_group_size" validate:"min=0"`

	// Cap on goroutines executing work groups
	MaxGoroutines int `yaml:"max_goroutines" validate:"min=0"`

	// Arena capacity for staged value tables
	DeviceWords int `yaml:"device_words" validate:"min=0"`

	// Arena capacity for staged index tables
	DeviceIndexes int `yaml:"device_indexes" validate:"min=0"`
}

// LoggingConfig controls solve logging.
type LoggingConfig struct {
	// Severity threshold (DEBUG, INFO, WARN, ERROR)
	Severity string `yaml:"severity,omitempty" validate:"omitempty,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Optional log file path; console output stays on regardless
	File string `yaml:"file,omitempty"`
}

// RunLogConfig configures persistent sweep telemetry.
type RunLogConfig struct {
	// SQLite database path. Empty disables recording.
	Path string `yaml:"path,omitempty"`
}

// Load reads a YAML configuration file on top of the defaults and validates
// the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidData, "failed to read configuration file"),
			errors.Fields{"path": path},
		)
	}

	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidData, "failed to parse configuration file"),
			errors.Fields{"path": path},
		)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the structural constraints declared on the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, errors.InvalidData, "invalid configuration")
	}
	return nil
}

// NewBackend builds the execution backend this configuration selects.
func (c *Config) NewBackend() (backend.Backend, error) {
	switch c.Backend.Kind {
	case "", KindSequential:
		return backend.NewSequential(), nil
	case KindParallel:
		var opts []backend.ParallelOption
		if c.Backend.WorkGroupSize > 0 {
			opts = append(opts, backend.WithWorkGroupSize(c.Backend.WorkGroupSize))
		}
		if c.Backend.MaxGoroutines > 0 {
			opts = append(opts, backend.WithMaxGoroutines(c.Backend.MaxGoroutines))
		}
		if c.Backend.DeviceWords > 0 && c.Backend.DeviceIndexes > 0 {
			opts = append(opts, backend.WithDeviceCapacity(c.Backend.DeviceWords, c.Backend.DeviceIndexes))
		}
		return backend.NewParallel(opts...)
	default:
		return nil, errors.WithFields(
			errors.New(errors.InvalidData, "unknown backend kind"),
			errors.Fields{"kind": c.Backend.Kind},
		)
	}
}

// NewLogger builds a logger with the configured severity and outputs.
func (c *Config) NewLogger() (*logging.Logger, error) {
	outputs := []logging.Output{logging.NewConsoleOutput(true)}
	if c.Logging.File != "" {
		f, err := logging.NewFileOutput(c.Logging.File)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, f)
	}

	return logging.NewLogger(logging.Config{
		Severity: logging.ParseSeverity(strings.ToUpper(c.Logging.Severity)),
		Outputs:  outputs,
	}), nil
}

// NewRecorder opens the configured sweep recorder. A NoopRecorder is
// returned when no run log path is set; the caller owns Close on the
// returned store when one is opened.
func (c *Config) NewRecorder() (solver.Recorder, func() error, error) {
	if c.RunLog.Path == "" {
		return solver.NoopRecorder{}, func() error { return nil }, nil
	}
	store, err := runlog.Open(c.RunLog.Path)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}
