// Package archive optionally preserves the raw artifacts of each
// evaluation. Archiving is independent of the ledger: it can fail or be
// disabled without affecting the durable record of the run.
package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/uarch-dse/uarch-dse/dse/design"
	"github.com/uarch-dse/uarch-dse/dse/pipeline"
)

// Summary is the structured per-evaluation record written next to the
// archived artifacts.
type Summary struct {
	SimID   int64                `json:"sim_id"`
	Config  design.Configuration `json:"config"`
	Metrics map[string]any       `json:"metrics"`
}

// summaryMetrics renders the metrics record for JSON. encoding/json rejects
// non-finite floats, and the invalid sentinel carries +Inf, so those fields
// are emitted as the string "inf".
func summaryMetrics(m design.Metrics) map[string]any {
	out := map[string]any{
		"ipc":           jsonFloat(m.IPC),
		"cpi":           jsonFloat(m.CPI),
		"energy":        jsonFloat(m.Energy),
		"edp":           jsonFloat(m.EDP),
		"runtime_power": jsonFloat(m.RuntimePower),
		"leakage_power": jsonFloat(m.LeakagePower),
		"total_power":   jsonFloat(m.TotalPower),
		"sim_seconds":   jsonFloat(m.SimSeconds),
		"sim_ticks":     m.SimTicks,
	}
	return out
}

func jsonFloat(v float64) any {
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	if math.IsNaN(v) {
		return "nan"
	}
	return v
}

// Archiver copies raw pipeline artifacts into one directory per SimID.
type Archiver struct {
	root string
}

// New creates (if necessary) the archive root and returns an Archiver.
func New(root string) (*Archiver, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive root: %w", err)
	}
	return &Archiver{root: root}, nil
}

// Dir returns the archive directory for a SimID (zero-padded to 4 digits).
func (a *Archiver) Dir(simID int64) string {
	return filepath.Join(a.root, fmt.Sprintf("sim_%04d", simID))
}

// Store copies whichever known artifacts exist in the scratch directory
// into the per-SimID archive directory and writes summary.json. Missing
// artifacts are skipped silently; an evaluation that failed early simply
// archives less.
func (a *Archiver) Store(simID int64, scratch string, cfg design.Configuration, m design.Metrics) error {
	dir := a.Dir(simID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating archive dir for sim %d: %w", simID, err)
	}

	for _, name := range pipeline.ArtifactNames {
		src := filepath.Join(scratch, name)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := copyFile(src, filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("archiving %s for sim %d: %w", name, simID, err)
		}
	}

	summary, err := json.MarshalIndent(Summary{SimID: simID, Config: cfg, Metrics: summaryMetrics(m)}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding summary for sim %d: %w", simID, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "summary.json"), summary, 0o644); err != nil {
		return fmt.Errorf("writing summary for sim %d: %w", simID, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
