package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/uarch-dse/uarch-dse/dse/design"
)

// Tools holds the absolute paths of every external artifact the pipeline
// invokes or feeds. All paths are verified at construction so a misplaced
// toolchain fails the run up front instead of failing every evaluation.
type Tools struct {
	SimulatorBin  string // cycle-accurate simulator executable
	ConfigScript  string // CPU model script passed to the simulator
	WorkloadBin   string // benchmark executable run inside the simulator
	WorkloadInput string // benchmark input file
	TranslateBin  string // stats + config -> power-model input translator
	PowerTemplate string // hardware description template for the translator
	PowerBin      string // power estimator executable
}

// Verify checks that every tool path exists.
func (t Tools) Verify() error {
	paths := map[string]string{
		"simulator binary": t.SimulatorBin,
		"config script":    t.ConfigScript,
		"workload binary":  t.WorkloadBin,
		"workload input":   t.WorkloadInput,
		"translator":       t.TranslateBin,
		"power template":   t.PowerTemplate,
		"power estimator":  t.PowerBin,
	}
	for name, path := range paths {
		if path == "" {
			return fmt.Errorf("%s path is empty", name)
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%s not found at %s: %w", name, path, err)
		}
	}
	return nil
}

// Options tunes pipeline execution. Zero values select the defaults.
type Options struct {
	ScratchRoot   string        // per-evaluation scratch parent (default /dev/shm)
	WorkDir       string        // working directory for the simulator process
	StageATimeout time.Duration // simulator wall-clock budget (default 30m)
	StageBTimeout time.Duration // per-step power-stage budget (default 60s)
	SettleDelay   time.Duration // wait after Stage A exit before artifact checks (default 1s)
}

func (o Options) withDefaults() Options {
	if o.ScratchRoot == "" {
		o.ScratchRoot = "/dev/shm"
	}
	if o.StageATimeout <= 0 {
		o.StageATimeout = 30 * time.Minute
	}
	if o.StageBTimeout <= 0 {
		o.StageBTimeout = 60 * time.Second
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = 0
	} else if o.SettleDelay == 0 {
		o.SettleDelay = time.Second
	}
	return o
}

// scratchDir returns the private scratch directory for one evaluation.
// SimIDs are unique per run, so no two concurrent evaluations ever share
// a path.
func (o Options) scratchDir(simID int64) string {
	return filepath.Join(o.ScratchRoot, fmt.Sprintf("sim_%04d", simID))
}

// simulatorArgs builds the Stage A command line: output directory, CPU
// script, workload, and one flag per design-space parameter. Cache sizes
// are passed as literal capacity strings; everything else as integers.
func (t Tools) simulatorArgs(cfg design.Configuration, outdir string) []string {
	workloadOut := filepath.Join(outdir, "workload_out")
	return []string{
		"--outdir=" + outdir,
		t.ConfigScript,
		"--cmd", t.WorkloadBin,
		"--options", t.WorkloadInput + " " + workloadOut,

		"--l1i_size", cfg.L1ISize,
		"--l1i_assoc", strconv.Itoa(cfg.L1IAssoc),
		"--l1d_size", cfg.L1DSize,
		"--l1d_assoc", strconv.Itoa(cfg.L1DAssoc),
		"--l2_size", cfg.L2Size,
		"--l2_assoc", strconv.Itoa(cfg.L2Assoc),
		"--l3_size", cfg.L3Size,
		"--l3_assoc", strconv.Itoa(cfg.L3Assoc),

		"--lq_entries", strconv.Itoa(cfg.LoadQueue),
		"--sq_entries", strconv.Itoa(cfg.StoreQueue),

		"--num_fu_read", strconv.Itoa(cfg.NumFURead),
		"--num_fu_write", strconv.Itoa(cfg.NumFUWrite),
	}
}
