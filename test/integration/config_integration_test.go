//go:build integration

package integration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/reqctx/internal/platform/config"
)

// writeConfigFile writes a YAML config file under configs/ in the current
// working directory (the tests chdir into a temp dir first).
func writeConfigFile(t *testing.T, name, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll("configs", 0o755))
	require.NoError(t, os.WriteFile(filepath.Join("configs", name), []byte(content), 0o600))
}

// TestConfig_LayeredLoading verifies the full precedence chain:
// defaults, base file, profile file, environment variables.
func TestConfig_LayeredLoading(t *testing.T) {
	t.Chdir(t.TempDir())

	writeConfigFile(t, "base.yaml", `
app:
  name: layered-service
server:
  port: 9090
context:
  collision_warn: always
`)

	writeConfigFile(t, "staging.yaml", `
server:
  port: 9191
log:
  level: debug
`)

	cfg, err := config.Load("staging")
	require.NoError(t, err)

	// Profile file overrides base file.
	assert.Equal(t, 9191, cfg.Server.Port)

	// Base file values survive where the profile is silent.
	assert.Equal(t, "layered-service", cfg.App.Name)
	assert.Equal(t, "always", cfg.Context.CollisionWarn)

	// Profile values override defaults.
	assert.Equal(t, "debug", cfg.Log.Level)

	// Defaults fill everything else.
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, config.DefaultInspectWorkers, cfg.Inspect.DefaultWorkers)

	require.NoError(t, cfg.Validate())
}

// TestConfig_EnvOverridesFiles verifies environment variables win over
// every file layer.
func TestConfig_EnvOverridesFiles(t *testing.T) {
	t.Chdir(t.TempDir())

	writeConfigFile(t, "base.yaml", `
server:
  port: 9090
context:
  collision_warn: always
`)

	t.Setenv("APP_SERVER_PORT", "7777")
	t.Setenv("APP_LOG_LEVEL", "warn")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)

	// File layers still apply where no env var is set.
	assert.Equal(t, "always", cfg.Context.CollisionWarn)
	require.NoError(t, cfg.Validate())
}

// TestConfig_NoFiles verifies defaults alone produce a valid config.
func TestConfig_NoFiles(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "reqctx-service", cfg.App.Name)
	assert.Equal(t, "once_per_key", cfg.Context.CollisionWarn)
	require.NoError(t, cfg.Validate())
}

// TestConfig_MalformedYAML verifies a parse failure is surfaced instead of
// silently falling back to defaults.
func TestConfig_MalformedYAML(t *testing.T) {
	t.Chdir(t.TempDir())

	writeConfigFile(t, "base.yaml", "server: [not: valid: yaml")

	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base config")
}

// TestConfig_InvalidValuesRejectedByValidation verifies that file values the
// loader accepts are still caught by validation.
func TestConfig_InvalidValuesRejectedByValidation(t *testing.T) {
	t.Chdir(t.TempDir())

	writeConfigFile(t, "base.yaml", `
context:
  collision_warn: sometimes
`)

	cfg, err := config.Load("")
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context.collisionwarn")
}
