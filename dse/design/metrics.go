package design

import "math"

// Metrics is the fixed per-evaluation metrics record. A Metrics value is
// either fully valid (all fields finite, IPC > 0) or the canonical invalid
// sentinel returned by InvalidMetrics; no partially-valid state is ever
// persisted.
type Metrics struct {
	IPC          float64 `json:"ipc"`
	CPI          float64 `json:"cpi"`
	Energy       float64 `json:"energy"`
	EDP          float64 `json:"edp"`
	RuntimePower float64 `json:"runtime_power"`
	LeakagePower float64 `json:"leakage_power"`
	TotalPower   float64 `json:"total_power"`
	SimSeconds   float64 `json:"sim_seconds"`
	SimTicks     int64   `json:"sim_ticks"`
}

// InvalidMetrics returns the sentinel recorded for evaluations where the
// simulator failed to report a positive cpi: zero throughput, infinite
// cost on every minimized objective.
func InvalidMetrics() Metrics {
	return Metrics{
		IPC:    0,
		CPI:    math.Inf(1),
		Energy: math.Inf(1),
		EDP:    math.Inf(1),
	}
}

// Derive computes the full metrics record from a valid cpi and the two
// power figures.
//
//	total_power = runtime + leakage
//	energy      = total_power * cpi
//	edp         = energy * cpi
//
// cpi is deliberately the time proxy in both formulas (not sim_seconds),
// matching the normalized-cycle energy model the ledger has always used.
// A non-positive or infinite cpi yields the invalid sentinel.
func Derive(cpi, simSeconds float64, simTicks int64, runtimeW, leakageW float64) Metrics {
	if cpi <= 0 || math.IsInf(cpi, 1) || math.IsNaN(cpi) {
		return InvalidMetrics()
	}
	total := runtimeW + leakageW
	energy := total * cpi
	return Metrics{
		IPC:          1.0 / cpi,
		CPI:          cpi,
		Energy:       energy,
		EDP:          energy * cpi,
		RuntimePower: runtimeW,
		LeakagePower: leakageW,
		TotalPower:   total,
		SimSeconds:   simSeconds,
		SimTicks:     simTicks,
	}
}

// Valid reports whether m is a fully valid record (positive finite IPC).
func (m Metrics) Valid() bool {
	return m.IPC > 0 && !math.IsInf(m.CPI, 1)
}

// ObjectiveVector is the 3-tuple handed back to the search driver:
// (-ipc, energy, edp). IPC is negated because the driver is a minimizer
// and throughput must be maximized.
type ObjectiveVector [3]float64

// Objectives converts the metrics record into the minimizer's view.
func (m Metrics) Objectives() ObjectiveVector {
	return ObjectiveVector{-m.IPC, m.Energy, m.EDP}
}
