// Package design defines the enumerated microarchitecture design space: the
// codec between integer candidate vectors and typed configurations, and the
// per-evaluation metrics model shared by the pipeline, ledger, and harness.
package design

import (
	"fmt"
	"strconv"
)

// Canonical parameter names, in encoding and CSV column order.
const (
	ParamL1ISize    = "L1I_size"
	ParamL1IAssoc   = "L1I_assoc"
	ParamL1DSize    = "L1D_size"
	ParamL1DAssoc   = "L1D_assoc"
	ParamL2Size     = "L2_size"
	ParamL2Assoc    = "L2_assoc"
	ParamL3Size     = "L3_size"
	ParamL3Assoc    = "L3_assoc"
	ParamLoadQueue  = "load_queue"
	ParamStoreQueue = "store_queue"
	ParamNumFURead  = "num_fu_read"
	ParamNumFUWrite = "num_fu_write"
)

// ParamNames lists every design-space parameter in canonical order. The
// order fixes both the integer-vector encoding and the ledger column order,
// and never changes across space-file versions.
var ParamNames = []string{
	ParamL1ISize, ParamL1IAssoc,
	ParamL1DSize, ParamL1DAssoc,
	ParamL2Size, ParamL2Assoc,
	ParamL3Size, ParamL3Assoc,
	ParamLoadQueue, ParamStoreQueue,
	ParamNumFURead, ParamNumFUWrite,
}

// sizeParams marks parameters whose values are literal capacity strings
// ("64kB", "1MB") rather than integers.
var sizeParams = map[string]bool{
	ParamL1ISize: true,
	ParamL1DSize: true,
	ParamL2Size:  true,
	ParamL3Size:  true,
}

// DesignSpace maps every parameter to its ordered list of allowed values.
// Size parameters hold capacity strings; all other parameters hold decimal
// integer strings. Immutable after construction.
type DesignSpace struct {
	values map[string][]string
}

// DefaultSpace returns the built-in design-space table: 31,104 unique
// configurations across 12 parameters (L3 is fixed at 2MB/16-way).
func DefaultSpace() *DesignSpace {
	return &DesignSpace{values: map[string][]string{
		ParamL1ISize:    {"64kB", "128kB"},
		ParamL1IAssoc:   {"4"},
		ParamL1DSize:    {"64kB", "128kB", "512kB", "1MB"},
		ParamL1DAssoc:   {"2", "4", "8"},
		ParamL2Size:     {"128kB", "256kB", "512kB", "1MB"},
		ParamL2Assoc:    {"8", "16"},
		ParamL3Size:     {"2MB"},
		ParamL3Assoc:    {"16"},
		ParamLoadQueue:  {"48", "64", "72"},
		ParamStoreQueue: {"64", "72", "80"},
		ParamNumFURead:  {"2", "3", "4"},
		ParamNumFUWrite: {"1", "2"},
	}}
}

// NumParams returns the number of design-space parameters (the candidate
// vector length).
func (s *DesignSpace) NumParams() int { return len(ParamNames) }

// Values returns the allowed-value list for a parameter, nil if unknown.
func (s *DesignSpace) Values(param string) []string { return s.values[param] }

// Bounds returns the inclusive per-parameter index bounds [0, len(values)-1],
// in canonical parameter order. The search driver uses these to constrain
// candidate generation.
func (s *DesignSpace) Bounds() (lo, hi []int) {
	lo = make([]int, len(ParamNames))
	hi = make([]int, len(ParamNames))
	for i, name := range ParamNames {
		hi[i] = len(s.values[name]) - 1
	}
	return lo, hi
}

// Size returns the total number of distinct configurations in the space.
func (s *DesignSpace) Size() int {
	n := 1
	for _, name := range ParamNames {
		n *= len(s.values[name])
	}
	return n
}

// Decode maps a candidate vector to a Configuration. It is total: every
// index is clamped into its parameter's valid range before lookup, so any
// full-length integer vector decodes to a valid point in the space.
// Candidate length must equal NumParams; the harness checks this before
// dispatch.
func (s *DesignSpace) Decode(candidate []int) Configuration {
	decoded := make(map[string]string, len(ParamNames))
	for i, name := range ParamNames {
		vals := s.values[name]
		idx := 0
		if i < len(candidate) {
			idx = candidate[i]
		}
		if idx < 0 {
			idx = 0
		}
		if idx > len(vals)-1 {
			idx = len(vals) - 1
		}
		decoded[name] = vals[idx]
	}
	cfg, err := NewConfiguration(decoded)
	if err != nil {
		// Unreachable: decoded always holds exactly the canonical keys
		// with values drawn from the validated table.
		panic(err)
	}
	return cfg
}

// Configuration is one decoded point in the design space, with a typed
// field per parameter. Cache sizes are literal capacity strings passed
// verbatim to the simulator; all other fields are integers. Immutable once
// built.
type Configuration struct {
	L1ISize    string `json:"L1I_size"`
	L1IAssoc   int    `json:"L1I_assoc"`
	L1DSize    string `json:"L1D_size"`
	L1DAssoc   int    `json:"L1D_assoc"`
	L2Size     string `json:"L2_size"`
	L2Assoc    int    `json:"L2_assoc"`
	L3Size     string `json:"L3_size"`
	L3Assoc    int    `json:"L3_assoc"`
	LoadQueue  int    `json:"load_queue"`
	StoreQueue int    `json:"store_queue"`
	NumFURead  int    `json:"num_fu_read"`
	NumFUWrite int    `json:"num_fu_write"`
}

// NewConfiguration builds a Configuration from a decoded parameter map.
// Every canonical parameter must be present and no unknown keys are
// accepted; integer-valued parameters must parse as decimal integers.
func NewConfiguration(decoded map[string]string) (Configuration, error) {
	var cfg Configuration
	if len(decoded) != len(ParamNames) {
		for k := range decoded {
			if !knownParam(k) {
				return cfg, fmt.Errorf("unknown parameter %q", k)
			}
		}
		return cfg, fmt.Errorf("expected %d parameters, got %d", len(ParamNames), len(decoded))
	}
	for _, name := range ParamNames {
		raw, ok := decoded[name]
		if !ok {
			return cfg, fmt.Errorf("missing parameter %q", name)
		}
		if sizeParams[name] {
			switch name {
			case ParamL1ISize:
				cfg.L1ISize = raw
			case ParamL1DSize:
				cfg.L1DSize = raw
			case ParamL2Size:
				cfg.L2Size = raw
			case ParamL3Size:
				cfg.L3Size = raw
			}
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return cfg, fmt.Errorf("parameter %q: value %q is not an integer: %w", name, raw, err)
		}
		switch name {
		case ParamL1IAssoc:
			cfg.L1IAssoc = n
		case ParamL1DAssoc:
			cfg.L1DAssoc = n
		case ParamL2Assoc:
			cfg.L2Assoc = n
		case ParamL3Assoc:
			cfg.L3Assoc = n
		case ParamLoadQueue:
			cfg.LoadQueue = n
		case ParamStoreQueue:
			cfg.StoreQueue = n
		case ParamNumFURead:
			cfg.NumFURead = n
		case ParamNumFUWrite:
			cfg.NumFUWrite = n
		}
	}
	return cfg, nil
}

func knownParam(name string) bool {
	for _, p := range ParamNames {
		if p == name {
			return true
		}
	}
	return false
}

// Fields returns the configuration's values as strings in canonical
// parameter order, matching the ledger column layout.
func (c Configuration) Fields() []string {
	return []string{
		c.L1ISize, strconv.Itoa(c.L1IAssoc),
		c.L1DSize, strconv.Itoa(c.L1DAssoc),
		c.L2Size, strconv.Itoa(c.L2Assoc),
		c.L3Size, strconv.Itoa(c.L3Assoc),
		strconv.Itoa(c.LoadQueue), strconv.Itoa(c.StoreQueue),
		strconv.Itoa(c.NumFURead), strconv.Itoa(c.NumFUWrite),
	}
}
