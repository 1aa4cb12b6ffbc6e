package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/uarch-dse/uarch-dse/dse"
	"github.com/uarch-dse/uarch-dse/dse/archive"
	"github.com/uarch-dse/uarch-dse/dse/design"
	"github.com/uarch-dse/uarch-dse/dse/ledger"
	"github.com/uarch-dse/uarch-dse/dse/pipeline"
)

var (
	logLevel  string // Log verbosity level
	spaceFile string // Optional YAML override of the design-space table

	// External toolchain paths
	simulatorBin  string // Cycle-accurate simulator executable
	configScript  string // CPU model script for the simulator
	workloadBin   string // Benchmark binary run inside the simulator
	workloadInput string // Benchmark input file
	translateBin  string // Stats-to-power-model translator
	powerTemplate string // Hardware template for the translator
	powerBin      string // Power estimator executable

	// Execution controls
	workDir       string        // Working directory for simulator processes
	scratchRoot   string        // Parent of per-evaluation scratch dirs
	stageATimeout time.Duration // Simulator wall-clock budget
	stageBTimeout time.Duration // Power-stage per-step budget
	settleDelay   time.Duration // Post-simulation filesystem settle wait
	workers       int           // Worker pool size (max concurrent simulators)

	// Outputs
	resultsFile string // Ledger CSV path ("" = results_<runid>.csv)
	archiveDir  string // Raw artifact archive root ("" = archiving disabled)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "uarch-dse",
	Short: "Multi-objective design-space exploration for microarchitecture configurations",
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging applies the --log flag; shared by every subcommand.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// loadSpace returns the design-space table, applying the --space override
// when given.
func loadSpace() *design.DesignSpace {
	if spaceFile == "" {
		return design.DefaultSpace()
	}
	space, err := design.LoadSpace(spaceFile)
	if err != nil {
		logrus.Fatalf("unable to load design space: %v", err)
	}
	return space
}

// buildHarness assembles the full evaluation stack from CLI flags: tool
// verification, ledger creation, optional archiver, worker pool. Fatal on
// any infrastructure fault; per-evaluation faults are the harness's job.
func buildHarness(space *design.DesignSpace) *dse.Harness {
	tools := pipeline.Tools{
		SimulatorBin:  simulatorBin,
		ConfigScript:  configScript,
		WorkloadBin:   workloadBin,
		WorkloadInput: workloadInput,
		TranslateBin:  translateBin,
		PowerTemplate: powerTemplate,
		PowerBin:      powerBin,
	}
	runner, err := pipeline.NewRunner(tools, pipeline.Options{
		ScratchRoot:   scratchRoot,
		WorkDir:       workDir,
		StageATimeout: stageATimeout,
		StageBTimeout: stageBTimeout,
		SettleDelay:   settleDelay,
	})
	if err != nil {
		logrus.Fatalf("pipeline setup failed: %v", err)
	}

	if resultsFile == "" {
		resultsFile = fmt.Sprintf("results_%s.csv", xid.New())
	}
	led, err := ledger.Create(resultsFile)
	if err != nil {
		logrus.Fatalf("ledger setup failed: %v", err)
	}

	var arch *archive.Archiver
	if archiveDir != "" {
		arch, err = archive.New(archiveDir)
		if err != nil {
			logrus.Fatalf("archive setup failed: %v", err)
		}
	}

	harness, err := dse.NewHarness(space, runner, led, arch, workers)
	if err != nil {
		logrus.Fatalf("harness setup failed: %v", err)
	}
	return harness
}

// init sets up CLI flags shared by the evaluation subcommands
func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	pf.StringVar(&spaceFile, "space", "", "YAML design-space override file")

	// Toolchain paths
	pf.StringVar(&simulatorBin, "simulator-bin", "", "Path to the cycle-accurate simulator binary")
	pf.StringVar(&configScript, "config-script", "", "Path to the CPU model script")
	pf.StringVar(&workloadBin, "workload-bin", "", "Path to the workload binary")
	pf.StringVar(&workloadInput, "workload-input", "", "Path to the workload input file")
	pf.StringVar(&translateBin, "translate-bin", "", "Path to the stats-to-power translator")
	pf.StringVar(&powerTemplate, "power-template", "", "Path to the hardware template XML")
	pf.StringVar(&powerBin, "power-bin", "", "Path to the power estimator binary")

	// Execution controls
	pf.StringVar(&workDir, "workdir", "", "Working directory for simulator processes")
	pf.StringVar(&scratchRoot, "scratch-root", "/dev/shm", "Parent directory for per-evaluation scratch dirs")
	pf.DurationVar(&stageATimeout, "stage-a-timeout", 30*time.Minute, "Simulator wall-clock timeout")
	pf.DurationVar(&stageBTimeout, "stage-b-timeout", 60*time.Second, "Power-stage per-step timeout")
	pf.DurationVar(&settleDelay, "settle-delay", time.Second, "Wait after the simulator exits before checking its outputs")
	pf.IntVar(&workers, "workers", 2, "Worker pool size (max concurrent simulator processes)")

	// Outputs
	pf.StringVar(&resultsFile, "results", "", "Ledger CSV path (default results_<runid>.csv)")
	pf.StringVar(&archiveDir, "archive-dir", "", "Archive root for raw artifacts (empty = disabled)")
}
