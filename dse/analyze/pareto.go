// Package analyze post-processes a run's result ledger: it filters invalid
// evaluations, extracts the Pareto front over (ipc, energy, edp), and
// summarizes the front. It never touches the live ledger of a running
// exploration — input is a finished CSV.
package analyze

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/uarch-dse/uarch-dse/dse/ledger"
)

// Row is one ledger row with the three objective values decoded. Fields
// keeps the raw cells so the row can be re-emitted in ledger schema.
type Row struct {
	Fields []string
	SimID  int64
	IPC    float64
	Energy float64
	EDP    float64
}

// column indices into the ledger schema, resolved once.
var (
	colSimID  = columnIndex("sim_id")
	colIPC    = columnIndex("ipc")
	colEnergy = columnIndex("energy")
	colEDP    = columnIndex("edp")
)

func columnIndex(name string) int {
	for i, h := range ledger.Header {
		if h == name {
			return i
		}
	}
	panic(fmt.Sprintf("unknown ledger column %q", name))
}

// Load reads a ledger CSV and returns every row whose schema matches.
// The header must match the ledger schema exactly.
func Load(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("ledger %s is empty", path)
	}
	if got := strings.Join(records[0], ","); got != strings.Join(ledger.Header, ",") {
		return nil, fmt.Errorf("ledger %s has unexpected header", path)
	}

	rows := make([]Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		row, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("ledger row %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(rec []string) (Row, error) {
	if len(rec) != len(ledger.Header) {
		return Row{}, fmt.Errorf("expected %d columns, got %d", len(ledger.Header), len(rec))
	}
	simID, err := strconv.ParseInt(rec[colSimID], 10, 64)
	if err != nil {
		return Row{}, fmt.Errorf("sim_id: %w", err)
	}
	ipc, err := strconv.ParseFloat(rec[colIPC], 64)
	if err != nil {
		return Row{}, fmt.Errorf("ipc: %w", err)
	}
	energy, err := strconv.ParseFloat(rec[colEnergy], 64)
	if err != nil {
		return Row{}, fmt.Errorf("energy: %w", err)
	}
	edp, err := strconv.ParseFloat(rec[colEDP], 64)
	if err != nil {
		return Row{}, fmt.Errorf("edp: %w", err)
	}
	return Row{Fields: rec, SimID: simID, IPC: ipc, Energy: energy, EDP: edp}, nil
}

// Valid drops sentinel rows (ipc <= 0).
func Valid(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.IPC > 0 {
			out = append(out, r)
		}
	}
	return out
}

// dominates reports whether a dominates b: at least as good on every
// objective (ipc maximized, energy and edp minimized) and strictly better
// on one.
func dominates(a, b Row) bool {
	if a.IPC < b.IPC || a.Energy > b.Energy || a.EDP > b.EDP {
		return false
	}
	return a.IPC > b.IPC || a.Energy < b.Energy || a.EDP < b.EDP
}

// ParetoFront returns the non-dominated subset of rows, preserving input
// order.
func ParetoFront(rows []Row) []Row {
	front := make([]Row, 0, len(rows))
	for i, a := range rows {
		dominated := false
		for j, b := range rows {
			if i != j && dominates(b, a) {
				dominated = true
				break
			}
		}
		if !dominated {
			front = append(front, a)
		}
	}
	return front
}

// WriteCSV emits rows in ledger schema (header included).
func WriteCSV(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(ledger.Header); err != nil {
		f.Close()
		return err
	}
	for _, r := range rows {
		if err := w.Write(r.Fields); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ObjectiveStats summarizes one objective across a set of rows.
type ObjectiveStats struct {
	Min, Max, Mean float64
}

// Summary holds per-objective statistics for a row set.
type Summary struct {
	IPC, Energy, EDP ObjectiveStats
	BestEDP          Row // the recommended trade-off configuration
}

// Summarize computes objective ranges and means and picks the best-EDP row.
// rows must be non-empty and pre-filtered with Valid.
func Summarize(rows []Row) (Summary, error) {
	if len(rows) == 0 {
		return Summary{}, fmt.Errorf("no valid rows to summarize")
	}
	ipc := make([]float64, len(rows))
	energy := make([]float64, len(rows))
	edp := make([]float64, len(rows))
	best := rows[0]
	for i, r := range rows {
		ipc[i], energy[i], edp[i] = r.IPC, r.Energy, r.EDP
		if r.EDP < best.EDP {
			best = r
		}
	}
	return Summary{
		IPC:     ObjectiveStats{Min: floats.Min(ipc), Max: floats.Max(ipc), Mean: stat.Mean(ipc, nil)},
		Energy:  ObjectiveStats{Min: floats.Min(energy), Max: floats.Max(energy), Mean: stat.Mean(energy, nil)},
		EDP:     ObjectiveStats{Min: floats.Min(edp), Max: floats.Max(edp), Mean: stat.Mean(edp, nil)},
		BestEDP: best,
	}, nil
}
