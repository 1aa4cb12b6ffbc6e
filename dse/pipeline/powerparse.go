package pipeline

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
)

// Power report labels. The estimator prints block-indented summaries of the
// form "Runtime Dynamic = 1.23456 W"; the first occurrence of each label
// (the processor total) wins.
const (
	labelRuntimeDynamic = "Runtime Dynamic"
	labelTotalLeakage   = "Total Leakage"
)

// ParsePowerFile reads a power-estimator report from disk. A missing file
// is not an error at this layer; it simply yields zero power.
func ParsePowerFile(path string) PowerReport {
	f, err := os.Open(path)
	if err != nil {
		return PowerReport{}
	}
	defer f.Close()
	return ParsePower(f)
}

// ParsePower scans an estimator report for the two labeled power figures.
// Absent labels default to zero watts, so a truncated or malformed report
// degrades to a zero-power (partial) evaluation instead of failing it.
func ParsePower(r io.Reader) PowerReport {
	var report PowerReport
	sawDynamic, sawLeakage := false, false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !sawDynamic {
			if v, ok := labeledWatts(line, labelRuntimeDynamic); ok {
				report.RuntimeDynamic = v
				sawDynamic = true
			}
		}
		if !sawLeakage {
			if v, ok := labeledWatts(line, labelTotalLeakage); ok {
				report.TotalLeakage = v
				sawLeakage = true
			}
		}
		if sawDynamic && sawLeakage {
			break
		}
	}
	return report
}

// labeledWatts extracts the float from a "<label> = <value> W" line.
func labeledWatts(line, label string) (float64, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, label) {
		return 0, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, label))
	if !strings.HasPrefix(rest, "=") {
		return 0, false
	}
	rest = strings.TrimSpace(strings.TrimPrefix(rest, "="))
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
