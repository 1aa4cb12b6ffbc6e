package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uarch-dse/uarch-dse/dse/design"
)

// Stub executables stand in for the simulator, the translator, and the
// power estimator so the full choreography runs in-process test time.

const simScriptOK = `#!/bin/sh
out=""
for a in "$@"; do
  case "$a" in --outdir=*) out="${a#--outdir=}" ;; esac
done
cat > "$out/stats.txt" <<EOF
simSeconds                                   0.001000
simTicks                                   1000000
system.cpu.cpi                               2.500000
EOF
echo '{"system": {"cpu": {}}}' > "$out/config.json"
echo 'dummy' > "$out/config.ini"
`

const translateScriptOK = `#!/bin/sh
echo '<component id="system"/>' > config.xml
`

const powerScriptOK = `#!/bin/sh
echo "Runtime Dynamic = 0.8 W"
echo "Total Leakage = 0.2 W"
`

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}

func writeFixture(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(name+" fixture\n"), 0o644))
	return path
}

// stubTools builds a complete, verifiable toolchain from script bodies.
func stubTools(t *testing.T, simScript, translateScript, powerScript string) Tools {
	t.Helper()
	dir := t.TempDir()
	return Tools{
		SimulatorBin:  writeScript(t, dir, "simulator", simScript),
		ConfigScript:  writeFixture(t, dir, "cpu_model.py"),
		WorkloadBin:   writeFixture(t, dir, "workload"),
		WorkloadInput: writeFixture(t, dir, "input.wav"),
		TranslateBin:  writeScript(t, dir, "translate", translateScript),
		PowerTemplate: writeFixture(t, dir, "template.xml"),
		PowerBin:      writeScript(t, dir, "estimator", powerScript),
	}
}

func testRunner(t *testing.T, tools Tools, opts Options) *Runner {
	t.Helper()
	opts.ScratchRoot = t.TempDir()
	if opts.SettleDelay == 0 {
		opts.SettleDelay = time.Millisecond
	}
	r, err := NewRunner(tools, opts)
	require.NoError(t, err)
	return r
}

func testConfig() design.Configuration {
	return design.DefaultSpace().Decode(make([]int, 12))
}

func TestRun_FullSuccess(t *testing.T) {
	r := testRunner(t, stubTools(t, simScriptOK, translateScriptOK, powerScriptOK), Options{})

	res := r.Run(context.Background(), 1, testConfig(), nil)

	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, FailureNone, res.Failure)
	assert.Equal(t, 2.5, res.Stats.CPI)
	assert.Equal(t, 0.8, res.Power.RuntimeDynamic)
	assert.Equal(t, 0.2, res.Power.TotalLeakage)
}

func TestRun_ScratchDirRemovedOnEveryPath(t *testing.T) {
	cases := map[string]Tools{
		"success":       stubTools(t, simScriptOK, translateScriptOK, powerScriptOK),
		"sim exit 1":    stubTools(t, "#!/bin/sh\nexit 1\n", translateScriptOK, powerScriptOK),
		"missing stats": stubTools(t, "#!/bin/sh\nexit 0\n", translateScriptOK, powerScriptOK),
	}
	for name, tools := range cases {
		r := testRunner(t, tools, Options{})
		scratch := r.ScratchDir(7)

		r.Run(context.Background(), 7, testConfig(), nil)

		_, err := os.Stat(scratch)
		assert.True(t, os.IsNotExist(err), "%s: scratch dir %s must be removed", name, scratch)
	}
}

func TestRun_SimulatorExitError(t *testing.T) {
	r := testRunner(t, stubTools(t, "#!/bin/sh\nexit 3\n", translateScriptOK, powerScriptOK), Options{})

	res := r.Run(context.Background(), 2, testConfig(), nil)

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, FailureExit, res.Failure)
	assert.Equal(t, "stage-a", res.Stage)
	assert.False(t, res.Stats.ValidCPI())
}

func TestRun_SimulatorTimeout(t *testing.T) {
	r := testRunner(t, stubTools(t, "#!/bin/sh\nexec sleep 5\n", translateScriptOK, powerScriptOK),
		Options{StageATimeout: 100 * time.Millisecond})

	start := time.Now()
	res := r.Run(context.Background(), 3, testConfig(), nil)

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, FailureTimeout, res.Failure)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestRun_MissingStatsArtifact(t *testing.T) {
	r := testRunner(t, stubTools(t, "#!/bin/sh\nexit 0\n", translateScriptOK, powerScriptOK), Options{})

	res := r.Run(context.Background(), 4, testConfig(), nil)

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, FailureMissingArtifact, res.Failure)
}

func TestRun_EmptyConfigJSONIsTerminal(t *testing.T) {
	script := `#!/bin/sh
out=""
for a in "$@"; do
  case "$a" in --outdir=*) out="${a#--outdir=}" ;; esac
done
echo "system.cpu.cpi 2.000000" > "$out/stats.txt"
: > "$out/config.json"
`
	r := testRunner(t, stubTools(t, script, translateScriptOK, powerScriptOK), Options{})

	res := r.Run(context.Background(), 5, testConfig(), nil)

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, FailureMissingArtifact, res.Failure)
}

func TestRun_StatsWithoutCPI_FailsButKeepsSecondaryFields(t *testing.T) {
	script := `#!/bin/sh
out=""
for a in "$@"; do
  case "$a" in --outdir=*) out="${a#--outdir=}" ;; esac
done
printf 'simSeconds 0.002000\nsimTicks 99\n' > "$out/stats.txt"
echo '{}' > "$out/config.json"
`
	r := testRunner(t, stubTools(t, script, translateScriptOK, powerScriptOK), Options{})

	res := r.Run(context.Background(), 6, testConfig(), nil)

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, FailureBadReport, res.Failure)
	assert.Equal(t, 0.002, res.Stats.SimSeconds)
	assert.Equal(t, int64(99), res.Stats.SimTicks)
}

func TestRun_PowerStageFailure_YieldsPartial(t *testing.T) {
	cases := map[string]Tools{
		"translator exits": stubTools(t, simScriptOK, "#!/bin/sh\nexit 1\n", powerScriptOK),
		"estimator exits":  stubTools(t, simScriptOK, translateScriptOK, "#!/bin/sh\nexit 1\n"),
	}
	for name, tools := range cases {
		r := testRunner(t, tools, Options{})

		res := r.Run(context.Background(), 8, testConfig(), nil)

		assert.Equal(t, StatusPartial, res.Status, name)
		assert.Equal(t, "stage-b", res.Stage, name)
		assert.Equal(t, 2.5, res.Stats.CPI, name)
		assert.Equal(t, PowerReport{}, res.Power, name)
	}
}

func TestRun_KeepScratchSeesArtifactsBeforeRemoval(t *testing.T) {
	r := testRunner(t, stubTools(t, simScriptOK, translateScriptOK, powerScriptOK), Options{})

	var seen []string
	r.Run(context.Background(), 9, testConfig(), func(scratch string, res Result) {
		for _, name := range ArtifactNames {
			if _, err := os.Stat(filepath.Join(scratch, name)); err == nil {
				seen = append(seen, name)
			}
		}
		assert.Equal(t, StatusOK, res.Status)
	})

	assert.Contains(t, seen, StatsFile)
	assert.Contains(t, seen, ConfigJSONFile)
	assert.Contains(t, seen, PowerInputFile)
	assert.Contains(t, seen, PowerReportFile)
}

func TestNewRunner_MissingToolIsFatal(t *testing.T) {
	tools := stubTools(t, simScriptOK, translateScriptOK, powerScriptOK)
	tools.PowerBin = filepath.Join(t.TempDir(), "missing")

	_, err := NewRunner(tools, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "power estimator")
}
