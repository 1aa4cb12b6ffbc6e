package archive

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uarch-dse/uarch-dse/dse/design"
	"github.com/uarch-dse/uarch-dse/dse/pipeline"
)

func testConfig() design.Configuration {
	return design.DefaultSpace().Decode(make([]int, 12))
}

func TestStore_CopiesExistingArtifactsAndWritesSummary(t *testing.T) {
	scratch := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(scratch, pipeline.StatsFile), []byte("system.cpu.cpi 2.5\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(scratch, pipeline.ConfigJSONFile), []byte("{}"), 0o644))
	// config.ini, config.xml and the power report deliberately absent.

	a, err := New(filepath.Join(t.TempDir(), "archive"))
	require.NoError(t, err)

	m := design.Derive(2.5, 0.001, 1000, 0.8, 0.2)
	require.NoError(t, a.Store(42, scratch, testConfig(), m))

	dir := a.Dir(42)
	assert.Equal(t, "sim_0042", filepath.Base(dir))
	assert.FileExists(t, filepath.Join(dir, pipeline.StatsFile))
	assert.FileExists(t, filepath.Join(dir, pipeline.ConfigJSONFile))
	assert.NoFileExists(t, filepath.Join(dir, pipeline.PowerReportFile))

	raw, err := os.ReadFile(filepath.Join(dir, "summary.json"))
	require.NoError(t, err)
	var summary map[string]any
	require.NoError(t, json.Unmarshal(raw, &summary))
	assert.Equal(t, float64(42), summary["sim_id"])
	metrics := summary["metrics"].(map[string]any)
	assert.Equal(t, 2.5, metrics["energy"])
}

func TestStore_SentinelMetricsEncodeNonFiniteAsStrings(t *testing.T) {
	a, err := New(filepath.Join(t.TempDir(), "archive"))
	require.NoError(t, err)

	require.NoError(t, a.Store(1, t.TempDir(), testConfig(), design.InvalidMetrics()))

	raw, err := os.ReadFile(filepath.Join(a.Dir(1), "summary.json"))
	require.NoError(t, err)
	var summary map[string]any
	require.NoError(t, json.Unmarshal(raw, &summary))
	metrics := summary["metrics"].(map[string]any)
	assert.Equal(t, "inf", metrics["cpi"])
	assert.Equal(t, "inf", metrics["edp"])
	assert.Equal(t, float64(0), metrics["ipc"])
}

func TestDir_ZeroPadsToFourDigits(t *testing.T) {
	a, err := New(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "sim_0007", filepath.Base(a.Dir(7)))
	assert.Equal(t, "sim_12345", filepath.Base(a.Dir(12345)))
}
