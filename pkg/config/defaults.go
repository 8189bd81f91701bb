package config

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// GetDefaultConfig returns the default configuration: a sequential backend,
// INFO console logging, no belief expansion, and no persistent run log.
func GetDefaultConfig() *Config {
	return &Config{
		Solver: SolverConfig{
			MaxAlphaVectors: 0,
			Seed:            0,
			ExpandBeliefs:   0,
		},
		Backend: BackendConfig{
			Kind:          KindSequential,
			WorkGroupSize: 256,
			MaxGoroutines: 10,
			DeviceWords:   1 << 24,
			DeviceIndexes: 1 << 24,
		},
		Logging: LoggingConfig{
			Severity: "INFO",
		},
	}
}
