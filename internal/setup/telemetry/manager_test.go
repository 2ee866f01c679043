package telemetry_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/robalyx/gatekeeper/internal/setup/config"
	"github.com/robalyx/gatekeeper/internal/setup/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerWritesSessionLog(t *testing.T) {
	t.Parallel()

	logDir := t.TempDir()

	// Older sessions beyond the retention limit are removed. Unrelated entries stay.
	for _, name := range []string{"2024-01-01_00-00-00", "2024-01-02_00-00-00", "2024-01-03_00-00-00"} {
		require.NoError(t, os.Mkdir(filepath.Join(logDir, name), 0o755))
	}
	require.NoError(t, os.Mkdir(filepath.Join(logDir, "keep-me"), 0o755))

	manager := telemetry.NewManager(t.Context(), "gatekeeper", logDir,
		&config.Debug{LogLevel: "info", MaxLogsToKeep: 2, MaxLogLines: 100},
		&config.Loki{})

	var stdout bytes.Buffer
	manager.SetStdout(&stdout)

	log, err := manager.GetLogger()
	require.NoError(t, err)

	log.Info("Reconciling roles")
	log.Debug("hidden")
	manager.Stop()

	content, err := os.ReadFile(filepath.Join(manager.GetCurrentSessionDir(), "main.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Reconciling roles")
	assert.Contains(t, string(content), manager.GetInstanceID())
	assert.NotContains(t, string(content), "hidden")
	assert.Contains(t, stdout.String(), "Reconciling roles")

	assert.NoDirExists(t, filepath.Join(logDir, "2024-01-01_00-00-00"))
	assert.NoDirExists(t, filepath.Join(logDir, "2024-01-02_00-00-00"))
	assert.DirExists(t, filepath.Join(logDir, "2024-01-03_00-00-00"))
	assert.DirExists(t, filepath.Join(logDir, "keep-me"))
}

func TestManagerRejectsInvalidLevel(t *testing.T) {
	t.Parallel()

	manager := telemetry.NewManager(t.Context(), "gatekeeper", t.TempDir(),
		&config.Debug{LogLevel: "loud", MaxLogsToKeep: 1}, &config.Loki{})
	manager.SetStdout(nil)

	_, err := manager.GetLogger()
	require.Error(t, err)
}
