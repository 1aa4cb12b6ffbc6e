// Package ledger persists every evaluation to an append-only CSV file.
// The ledger is the durable record of a run: one row per evaluation,
// successful or failed, written exactly once and never rewritten.
package ledger

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/uarch-dse/uarch-dse/dse/design"
)

// Header is the fixed column schema: sim_id, timestamp, the twelve design
// parameters in canonical order, then the nine metrics.
var Header = append([]string{"sim_id", "timestamp"},
	append(append([]string{}, design.ParamNames...),
		"ipc", "cpi", "energy", "edp",
		"runtime_power", "leakage_power", "total_power",
		"sim_seconds", "sim_ticks")...)

// Record is the atomic unit appended to the ledger. Created once per
// evaluation, immutable, never updated or deleted.
type Record struct {
	SimID     int64
	Timestamp time.Time
	Config    design.Configuration
	Metrics   design.Metrics
}

// Ledger serializes appends from concurrent workers onto one O_APPEND file
// handle, so rows never interleave mid-line. Rows arrive in completion
// order, which is not SimID order.
type Ledger struct {
	mu   sync.Mutex
	file *os.File
}

// Create opens a fresh ledger at path and writes the header row. An
// existing file is not reused: a ledger belongs to exactly one run.
func Create(path string) (*Ledger, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating ledger: %w", err)
	}
	if _, err := f.WriteString(strings.Join(Header, ",") + "\n"); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing ledger header: %w", err)
	}
	return &Ledger{file: f}, nil
}

// Append writes one record as a single line. Safe for concurrent use.
func (l *Ledger) Append(rec Record) error {
	line := strings.Join(rec.fields(), ",") + "\n"
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.file.WriteString(line); err != nil {
		return fmt.Errorf("appending ledger row for sim %d: %w", rec.SimID, err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// fields renders the record in Header order. Metric floats use six decimal
// places except edp, which carries ten; sim_ticks is an unscaled integer.
func (r Record) fields() []string {
	m := r.Metrics
	out := make([]string, 0, len(Header))
	out = append(out, strconv.FormatInt(r.SimID, 10), r.Timestamp.Format(time.RFC3339))
	out = append(out, r.Config.Fields()...)
	out = append(out,
		fmt.Sprintf("%.6f", m.IPC),
		fmt.Sprintf("%.6f", m.CPI),
		fmt.Sprintf("%.6f", m.Energy),
		fmt.Sprintf("%.10f", m.EDP),
		fmt.Sprintf("%.6f", m.RuntimePower),
		fmt.Sprintf("%.6f", m.LeakagePower),
		fmt.Sprintf("%.6f", m.TotalPower),
		fmt.Sprintf("%.6f", m.SimSeconds),
		strconv.FormatInt(m.SimTicks, 10),
	)
	return out
}
