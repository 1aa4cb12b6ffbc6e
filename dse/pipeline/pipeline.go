package pipeline

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/uarch-dse/uarch-dse/dse/design"
)

// Artifact names produced inside an evaluation's scratch directory.
const (
	StatsFile       = "stats.txt"        // Stage A statistics dump
	ConfigJSONFile  = "config.json"      // Stage A machine-readable config
	ConfigINIFile   = "config.ini"       // Stage A ini-format config
	PowerInputFile  = "config.xml"       // translator output, estimator input
	PowerReportFile = "power_report.txt" // estimator stdout capture
)

// ArtifactNames lists every raw artifact an archiver may want to keep.
var ArtifactNames = []string{
	StatsFile, ConfigJSONFile, ConfigINIFile, PowerInputFile, PowerReportFile,
}

// Runner executes the two-stage simulation pipeline for one candidate at a
// time. A Runner is stateless across calls and safe for concurrent use;
// isolation between concurrent evaluations comes from the SimID-keyed
// scratch directories.
type Runner struct {
	tools Tools
	opts  Options
}

// NewRunner verifies the toolchain and returns a Runner.
func NewRunner(tools Tools, opts Options) (*Runner, error) {
	if err := tools.Verify(); err != nil {
		return nil, err
	}
	return &Runner{tools: tools, opts: opts.withDefaults()}, nil
}

// ScratchDir exposes the scratch path the Runner would use for a SimID.
func (r *Runner) ScratchDir(simID int64) string {
	return r.opts.scratchDir(simID)
}

// Run executes Stage A and, when possible, Stage B for one configuration.
// Expected tool failures are folded into the returned Result; the only
// error-like outcome is FailureInternal for faults such as an un-creatable
// scratch directory. The scratch directory is removed on every exit path.
//
// When keepScratch is non-nil it is called with the scratch path and the
// finished result before removal, letting the archiver copy raw artifacts
// out.
func (r *Runner) Run(ctx context.Context, simID int64, cfg design.Configuration, keepScratch func(scratch string, res Result)) Result {
	scratch := r.opts.scratchDir(simID)
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		logrus.Errorf("[sim %d] creating scratch dir %s: %v", simID, scratch, err)
		return failed("scratch", FailureInternal)
	}
	defer os.RemoveAll(scratch)

	result := r.run(ctx, simID, cfg, scratch)
	if keepScratch != nil {
		keepScratch(scratch, result)
	}
	return result
}

func (r *Runner) run(ctx context.Context, simID int64, cfg design.Configuration, scratch string) Result {
	// Stage A: cycle-accurate simulation.
	if kind := r.runSimulator(ctx, simID, cfg, scratch); kind != FailureNone {
		return failed("stage-a", kind)
	}

	// The simulator flushes its output files asynchronously on exit; give
	// the filesystem a moment before the existence checks.
	time.Sleep(r.opts.SettleDelay)

	statsPath := filepath.Join(scratch, StatsFile)
	if !nonEmptyFile(statsPath) {
		logrus.Warnf("[sim %d] stage-a produced no %s", simID, StatsFile)
		return failed("stage-a", FailureMissingArtifact)
	}
	configJSON := filepath.Join(scratch, ConfigJSONFile)
	if !nonEmptyFile(configJSON) {
		logrus.Warnf("[sim %d] stage-a produced no usable %s", simID, ConfigJSONFile)
		return failed("stage-a", FailureMissingArtifact)
	}

	stats, err := ParseStatsFile(statsPath)
	if err != nil {
		logrus.Warnf("[sim %d] reading %s: %v", simID, StatsFile, err)
		return failed("stage-a", FailureInternal)
	}
	if !stats.ValidCPI() {
		// The dump exists but reports no usable cpi. Record the failure
		// rather than dropping the candidate; power would be discarded
		// with the sentinel anyway, so Stage B is skipped.
		logrus.Warnf("[sim %d] stats dump has no positive cpi", simID)
		res := failed("stage-a", FailureBadReport)
		res.Stats = stats
		return res
	}

	// Stage B: power estimation. Failure here degrades the evaluation to
	// zero power instead of invalidating the timing result.
	power, ok := r.runPowerStage(ctx, simID, statsPath, configJSON, scratch)
	if !ok {
		return Result{Status: StatusPartial, Failure: FailureNone, Stage: "stage-b", Stats: stats}
	}
	return Result{Status: StatusOK, Stats: stats, Power: power}
}

// runSimulator invokes Stage A under its wall-clock budget.
func (r *Runner) runSimulator(ctx context.Context, simID int64, cfg design.Configuration, scratch string) FailureKind {
	tctx, cancel := context.WithTimeout(ctx, r.opts.StageATimeout)
	defer cancel()

	cmd := exec.CommandContext(tctx, r.tools.SimulatorBin, r.tools.simulatorArgs(cfg, scratch)...)
	cmd.Dir = r.opts.WorkDir
	start := time.Now()
	err := cmd.Run()
	if err == nil {
		logrus.Debugf("[sim %d] stage-a finished in %s", simID, time.Since(start).Round(time.Second))
		return FailureNone
	}
	if errors.Is(tctx.Err(), context.DeadlineExceeded) {
		logrus.Warnf("[sim %d] stage-a timed out after %s", simID, r.opts.StageATimeout)
		return FailureTimeout
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		logrus.Warnf("[sim %d] stage-a exited with code %d", simID, exitErr.ExitCode())
		return FailureExit
	}
	logrus.Warnf("[sim %d] stage-a failed to run: %v", simID, err)
	return FailureInternal
}

// runPowerStage translates Stage A outputs into the estimator's input
// format and runs the estimator. Either step failing, for any reason,
// yields zero power.
func (r *Runner) runPowerStage(ctx context.Context, simID int64, statsPath, configJSON, scratch string) (PowerReport, bool) {
	tctx, cancel := context.WithTimeout(ctx, r.opts.StageBTimeout)
	translate := exec.CommandContext(tctx, r.tools.TranslateBin, statsPath, configJSON, r.tools.PowerTemplate)
	translate.Dir = scratch
	err := translate.Run()
	cancel()
	if err != nil {
		logrus.Warnf("[sim %d] stage-b translation failed: %v", simID, err)
		return PowerReport{}, false
	}

	reportPath := filepath.Join(scratch, PowerReportFile)
	report, err := os.Create(reportPath)
	if err != nil {
		logrus.Warnf("[sim %d] creating %s: %v", simID, PowerReportFile, err)
		return PowerReport{}, false
	}

	tctx, cancel = context.WithTimeout(ctx, r.opts.StageBTimeout)
	estimator := exec.CommandContext(tctx, r.tools.PowerBin,
		"-infile", filepath.Join(scratch, PowerInputFile),
		"-print_level", "1")
	estimator.Dir = scratch
	estimator.Stdout = report
	err = estimator.Run()
	cancel()
	report.Close()
	if err != nil {
		logrus.Warnf("[sim %d] stage-b estimator failed: %v", simID, err)
		return PowerReport{}, false
	}

	return ParsePowerFile(reportPath), true
}

// nonEmptyFile reports whether path exists as a regular file with size > 0.
func nonEmptyFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}
