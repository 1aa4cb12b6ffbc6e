package design

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// spaceFileVersion is the only accepted space-file schema version.
const spaceFileVersion = "1"

// spaceFile is the on-disk YAML form of a design-space override. The
// parameter set is fixed; only the allowed-value lists may be replaced.
//
//	version: "1"
//	parameters:
//	  L1D_size: [64kB, 128kB, 1MB]
//	  L1D_assoc: [2, 4, 8]
type spaceFile struct {
	Version    string           `yaml:"version"`
	Parameters map[string][]any `yaml:"parameters"`
}

// LoadSpace reads a versioned design-space file and returns the resulting
// table. Parameters omitted from the file keep their default value lists.
// Unknown parameter names, empty value lists, and non-scalar values are
// rejected.
func LoadSpace(path string) (*DesignSpace, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading design-space file: %w", err)
	}
	var sf spaceFile
	if err := yaml.Unmarshal(raw, &sf); err != nil {
		return nil, fmt.Errorf("parsing design-space file: %w", err)
	}
	if sf.Version != spaceFileVersion {
		return nil, fmt.Errorf("unsupported design-space file version %q (want %q)", sf.Version, spaceFileVersion)
	}

	space := DefaultSpace()
	for name, vals := range sf.Parameters {
		if !knownParam(name) {
			return nil, fmt.Errorf("unknown parameter %q", name)
		}
		if len(vals) == 0 {
			return nil, fmt.Errorf("parameter %q: value list is empty", name)
		}
		strs := make([]string, len(vals))
		for i, v := range vals {
			switch t := v.(type) {
			case string:
				strs[i] = t
			case int:
				strs[i] = strconv.Itoa(t)
			default:
				return nil, fmt.Errorf("parameter %q: value %v is not a string or integer", name, v)
			}
			if !sizeParams[name] {
				if _, err := strconv.Atoi(strs[i]); err != nil {
					return nil, fmt.Errorf("parameter %q: value %q is not an integer", name, strs[i])
				}
			}
		}
		space.values[name] = strs
	}
	return space, nil
}
