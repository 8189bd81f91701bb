package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markovkit/markovkit/pkg/errors"
	"github.com/markovkit/markovkit/pkg/solver"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "markovkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, KindSequential, cfg.Backend.Kind)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
solver:
  max_alpha_vectors: 64
  seed: 42
  expand_beliefs: 100
backend:
  kind: parallel
  work_group_size: 64
  max_goroutines: 4
logging:
  severity: debug
run_log:
  path: runs.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Solver.MaxAlphaVectors)
	assert.Equal(t, int64(42), cfg.Solver.Seed)
	assert.Equal(t, 100, cfg.Solver.ExpandBeliefs)
	assert.Equal(t, KindParallel, cfg.Backend.Kind)
	assert.Equal(t, 64, cfg.Backend.WorkGroupSize)
	assert.Equal(t, 4, cfg.Backend.MaxGoroutines)
	assert.Equal(t, "debug", cfg.Logging.Severity)
	assert.Equal(t, "runs.db", cfg.RunLog.Path)

	// Untouched sections keep their defaults.
	assert.Equal(t, 1<<24, cfg.Backend.DeviceWords)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.True(t, errors.HasCode(err, errors.InvalidData))
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "backend: [not a mapping")
	_, err := Load(path)
	assert.True(t, errors.HasCode(err, errors.InvalidData))
}

func TestValidateRejectsUnknownKind(t *testing.T) {
	path := writeConfig(t, `
backend:
  kind: cuda
`)
	_, err := Load(path)
	assert.True(t, errors.HasCode(err, errors.InvalidData))
}

func TestNewBackend(t *testing.T) {
	t.Run("sequential", func(t *testing.T) {
		cfg := GetDefaultConfig()
		be, err := cfg.NewBackend()
		require.NoError(t, err)
		assert.Equal(t, "sequential", be.Name())
	})

	t.Run("parallel", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.Backend.Kind = KindParallel
		be, err := cfg.NewBackend()
		require.NoError(t, err)
		assert.Equal(t, "parallel", be.Name())
	})

	t.Run("parallel rejects bad work group size", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.Backend.Kind = KindParallel
		cfg.Backend.WorkGroupSize = 17
		_, err := cfg.NewBackend()
		assert.True(t, errors.HasCode(err, errors.InvalidLaunchConfig))
	})

	t.Run("unknown kind", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.Backend.Kind = "cuda"
		_, err := cfg.NewBackend()
		assert.True(t, errors.HasCode(err, errors.InvalidData))
	})
}

func TestNewLogger(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Severity = "warn"
	cfg.Logging.File = filepath.Join(t.TempDir(), "solve.log")

	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestNewRecorder(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		cfg := GetDefaultConfig()
		rec, closeFn, err := cfg.NewRecorder()
		require.NoError(t, err)
		assert.IsType(t, solver.NoopRecorder{}, rec)
		assert.NoError(t, closeFn())
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.RunLog.Path = filepath.Join(t.TempDir(), "runs.db")
		rec, closeFn, err := cfg.NewRecorder()
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.NoError(t, closeFn())
	})
}
