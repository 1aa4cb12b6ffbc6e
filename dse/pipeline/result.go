// Package pipeline choreographs the two-stage external toolchain behind one
// evaluation: Stage A runs the cycle-accurate simulator and Stage B feeds
// its outputs through the power estimator. Expected failures never surface
// as Go errors; every run produces an explicit Result the harness can
// persist.
package pipeline

import "math"

// Status classifies the outcome of one pipeline run.
type Status int

const (
	// StatusOK: both stages succeeded and produced parseable reports.
	StatusOK Status = iota
	// StatusPartial: Stage A produced valid timing but Stage B failed;
	// power figures are zero and energy collapses to zero with them.
	StatusPartial
	// StatusFailed: Stage A failed; only the invalid sentinel can be
	// recorded for this evaluation.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusPartial:
		return "partial"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// FailureKind identifies which class of fault terminated a stage.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureExit: the external process exited non-zero.
	FailureExit
	// FailureTimeout: the external process exceeded its wall-clock budget.
	FailureTimeout
	// FailureMissingArtifact: an expected output file is absent or empty.
	FailureMissingArtifact
	// FailureBadReport: a report exists but a required field is missing
	// or non-positive.
	FailureBadReport
	// FailureInternal: an unexpected runtime fault (I/O, permissions).
	FailureInternal
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureExit:
		return "process exit"
	case FailureTimeout:
		return "timeout"
	case FailureMissingArtifact:
		return "missing artifact"
	case FailureBadReport:
		return "unreadable report"
	case FailureInternal:
		return "internal fault"
	}
	return "unknown"
}

// StatsReport holds the numeric fields scraped from the simulator's
// statistics dump.
type StatsReport struct {
	CPI        float64
	IPC        float64
	SimSeconds float64
	SimTicks   int64
}

// ValidCPI reports whether the simulator produced a usable cpi figure.
func (r StatsReport) ValidCPI() bool {
	return r.CPI > 0 && !math.IsInf(r.CPI, 1)
}

// invalidStats is recorded when the cpi line is absent or non-positive.
func invalidStats() StatsReport {
	return StatsReport{CPI: math.Inf(1), IPC: 0}
}

// PowerReport holds the two labeled power figures from the estimator's
// text report, in watts. Zero values mean the estimator failed or the
// label was absent.
type PowerReport struct {
	RuntimeDynamic float64
	TotalLeakage   float64
}

// Result is the full outcome of one pipeline run.
type Result struct {
	Status  Status
	Failure FailureKind // FailureNone unless Status != StatusOK
	Stage   string      // failing stage name, "" on success
	Stats   StatsReport
	Power   PowerReport
}

func failed(stage string, kind FailureKind) Result {
	return Result{
		Status:  StatusFailed,
		Failure: kind,
		Stage:   stage,
		Stats:   invalidStats(),
	}
}
