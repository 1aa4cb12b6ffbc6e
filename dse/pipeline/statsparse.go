package pipeline

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
)

// Stats dump labels emitted by the simulator. The dump is whitespace-aligned
// "label value [# comment]" lines; labels are matched as whole first fields
// so e.g. system.cpu.cpi does not match system.cpu.cpi_total.
const (
	statCPI        = "system.cpu.cpi"
	statSimSeconds = "simSeconds"
	statSimTicks   = "simTicks"
)

// ParseStatsFile reads a simulator statistics dump from disk.
func ParseStatsFile(path string) (StatsReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return invalidStats(), err
	}
	defer f.Close()
	return ParseStats(f), nil
}

// ParseStats scans a statistics dump line by line. A missing or
// non-positive cpi yields the invalid report (cpi=+Inf, ipc=0) rather than
// an error: the evaluation still produces a ledger row either way.
func ParseStats(r io.Reader) StatsReport {
	report := StatsReport{}
	sawCPI := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case statCPI:
			if v, err := strconv.ParseFloat(fields[1], 64); err == nil && v > 0 {
				report.CPI = v
				report.IPC = 1.0 / v
				sawCPI = true
			}
		case statSimSeconds:
			if v, err := strconv.ParseFloat(fields[1], 64); err == nil {
				report.SimSeconds = v
			}
		case statSimTicks:
			if v, err := strconv.ParseInt(fields[1], 10, 64); err == nil {
				report.SimTicks = v
			}
		}
	}

	if !sawCPI {
		invalid := invalidStats()
		invalid.SimSeconds = report.SimSeconds
		invalid.SimTicks = report.SimTicks
		return invalid
	}
	return report
}
