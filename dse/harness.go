// Package dse wires the design-space codec, the external simulation
// pipeline, and the durable result ledger into the evaluation harness a
// multi-objective search driver calls one candidate at a time.
package dse

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/uarch-dse/uarch-dse/dse/archive"
	"github.com/uarch-dse/uarch-dse/dse/design"
	"github.com/uarch-dse/uarch-dse/dse/ledger"
	"github.com/uarch-dse/uarch-dse/dse/pipeline"
)

// PipelineRunner abstracts the two-stage simulation pipeline so the harness
// can be exercised without external tools. *pipeline.Runner satisfies it.
type PipelineRunner interface {
	Run(ctx context.Context, simID int64, cfg design.Configuration, keepScratch func(scratch string, res pipeline.Result)) pipeline.Result
}

// Harness is the only component the search driver talks to. It allocates a
// unique SimID per candidate, fans evaluations out to a fixed-size worker
// pool, records every outcome in the ledger, and always returns a
// well-formed objective vector, sentinel or not.
type Harness struct {
	space    *design.DesignSpace
	runner   PipelineRunner
	ledger   *ledger.Ledger
	archiver *archive.Archiver // nil when archiving is disabled
	ids      *IDAllocator

	requests chan evalRequest
	done     chan struct{}
}

// evalRequest carries one evaluation through the pool: just the identity
// and the decoded configuration, nothing heavier.
type evalRequest struct {
	simID int64
	cfg   design.Configuration
	reply chan design.ObjectiveVector
}

// NewHarness starts a pool of `workers` goroutines, each of which blocks on
// one external-simulator invocation at a time; the pool size is therefore
// the bound on simultaneous simulator processes. The archiver may be nil.
func NewHarness(space *design.DesignSpace, runner PipelineRunner, led *ledger.Ledger, arch *archive.Archiver, workers int) (*Harness, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("worker pool size must be positive, got %d", workers)
	}
	h := &Harness{
		space:    space,
		runner:   runner,
		ledger:   led,
		archiver: arch,
		ids:      NewIDAllocator(),
		requests: make(chan evalRequest),
		done:     make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		go h.worker()
	}
	return h, nil
}

// Bounds returns the per-parameter inclusive index bounds of the space.
func (h *Harness) Bounds() (lo, hi []int) { return h.space.Bounds() }

// NumObjectives returns the dimensionality of the objective vector.
func (h *Harness) NumObjectives() int { return 3 }

// Evaluate runs one candidate through the full pipeline and returns its
// objective vector. Safe to call from any number of goroutines; execution
// is bounded by the worker pool. It never panics past this boundary and
// never drops a candidate: every call appends exactly one ledger row.
func (h *Harness) Evaluate(candidate []int) design.ObjectiveVector {
	simID := h.ids.Next()
	if len(candidate) != h.space.NumParams() {
		logrus.Warnf("[sim %d] candidate has %d genes, space has %d parameters",
			simID, len(candidate), h.space.NumParams())
	}
	req := evalRequest{
		simID: simID,
		cfg:   h.space.Decode(candidate),
		reply: make(chan design.ObjectiveVector, 1),
	}
	select {
	case h.requests <- req:
		return <-req.reply
	case <-h.done:
		// Harness already closed; record the candidate as failed rather
		// than blocking forever.
		h.record(simID, req.cfg, design.InvalidMetrics())
		return design.InvalidMetrics().Objectives()
	}
}

// Close stops accepting work and closes the ledger. In-flight evaluations
// own their reply channels and finish independently; callers should not
// race Close against outstanding Evaluate calls.
func (h *Harness) Close() error {
	close(h.done)
	return h.ledger.Close()
}

func (h *Harness) worker() {
	for {
		select {
		case req := <-h.requests:
			req.reply <- h.evaluateOne(req.simID, req.cfg)
		case <-h.done:
			return
		}
	}
}

// evaluateOne executes the five pipeline steps for one candidate strictly
// in order: simulate, parse, estimate power, derive, persist. Any panic
// from the pipeline is converted to the invalid sentinel so the search
// loop stays alive.
func (h *Harness) evaluateOne(simID int64, cfg design.Configuration) (obj design.ObjectiveVector) {
	metrics := design.InvalidMetrics()
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("[sim %d] evaluation panicked: %v", simID, r)
			metrics = design.InvalidMetrics()
		}
		h.record(simID, cfg, metrics)
		obj = metrics.Objectives()
	}()

	res := h.runner.Run(context.Background(), simID, cfg, func(scratch string, res pipeline.Result) {
		if h.archiver == nil {
			return
		}
		if err := h.archiver.Store(simID, scratch, cfg, metricsOf(res)); err != nil {
			logrus.Warnf("[sim %d] archiving failed: %v", simID, err)
		}
	})
	metrics = metricsOf(res)

	switch res.Status {
	case pipeline.StatusOK:
		logrus.Infof("[sim %d] ok ipc=%.4f energy=%.4f edp=%.6f", simID, metrics.IPC, metrics.Energy, metrics.EDP)
	case pipeline.StatusPartial:
		logrus.Warnf("[sim %d] power estimation failed, recording zero power (ipc=%.4f)", simID, metrics.IPC)
	case pipeline.StatusFailed:
		logrus.Warnf("[sim %d] failed at %s: %s", simID, res.Stage, res.Failure)
	}
	return metrics.Objectives()
}

// metricsOf folds a pipeline result into the persisted metrics record.
// Failed runs collapse to the invalid sentinel; partial runs keep real
// timing with zero power.
func metricsOf(res pipeline.Result) design.Metrics {
	if res.Status == pipeline.StatusFailed {
		return design.InvalidMetrics()
	}
	return design.Derive(res.Stats.CPI, res.Stats.SimSeconds, res.Stats.SimTicks,
		res.Power.RuntimeDynamic, res.Power.TotalLeakage)
}

// record appends the evaluation to the ledger unconditionally. A ledger
// write failure is the one fault that cannot be folded into the record
// itself; it is logged and the run continues.
func (h *Harness) record(simID int64, cfg design.Configuration, m design.Metrics) {
	rec := ledger.Record{
		SimID:     simID,
		Timestamp: time.Now(),
		Config:    cfg,
		Metrics:   m,
	}
	if err := h.ledger.Append(rec); err != nil {
		logrus.Errorf("[sim %d] ledger append failed: %v", simID, err)
	}
}
