package design

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSpace_BoundsMatchValueLists(t *testing.T) {
	space := DefaultSpace()
	lo, hi := space.Bounds()

	require.Len(t, lo, space.NumParams())
	require.Len(t, hi, space.NumParams())
	for i, name := range ParamNames {
		assert.Equal(t, 0, lo[i], "lower bound for %s", name)
		assert.Equal(t, len(space.Values(name))-1, hi[i], "upper bound for %s", name)
	}
}

func TestDefaultSpace_Size(t *testing.T) {
	// 2*1*4*3*4*2*1*1*3*3*3*2
	assert.Equal(t, 31104, DefaultSpace().Size())
}

func TestDecode_InRangeCandidate(t *testing.T) {
	space := DefaultSpace()
	got := space.Decode([]int{1, 0, 2, 1, 3, 1, 0, 0, 2, 1, 0, 1})

	want := Configuration{
		L1ISize: "128kB", L1IAssoc: 4,
		L1DSize: "512kB", L1DAssoc: 4,
		L2Size: "1MB", L2Assoc: 16,
		L3Size: "2MB", L3Assoc: 16,
		LoadQueue: 72, StoreQueue: 72,
		NumFURead: 2, NumFUWrite: 2,
	}
	assert.Equal(t, want, got)
}

func TestDecode_EveryValueComesFromAllowedList(t *testing.T) {
	space := DefaultSpace()
	_, hi := space.Bounds()

	// Walk the diagonal-ish corners of the space.
	for _, candidate := range [][]int{
		make([]int, space.NumParams()), // all zeros
		hi,                             // all maxima
	} {
		cfg := space.Decode(candidate)
		fields := cfg.Fields()
		for i, name := range ParamNames {
			assert.Contains(t, space.Values(name), fields[i])
		}
	}
}

func TestDecode_ClampsOutOfRangeIndices(t *testing.T) {
	space := DefaultSpace()

	low := space.Decode([]int{-5, -1, -100, -1, -1, -1, -1, -1, -1, -1, -1, -1})
	assert.Equal(t, space.Decode(make([]int, 12)), low)

	high := space.Decode([]int{99, 99, 99, 99, 99, 99, 99, 99, 99, 99, 99, 99})
	_, hi := space.Bounds()
	assert.Equal(t, space.Decode(hi), high)
}

func TestDecode_IsDeterministic(t *testing.T) {
	space := DefaultSpace()
	candidate := []int{1, 0, 3, 2, 0, 1, 0, 0, 1, 2, 2, 0}
	assert.Equal(t, space.Decode(candidate), space.Decode(candidate))
}

func TestNewConfiguration_RejectsUnknownKey(t *testing.T) {
	decoded := map[string]string{}
	for _, name := range ParamNames {
		decoded[name] = DefaultSpace().Values(name)[0]
	}
	delete(decoded, ParamL2Size)
	decoded["l2_cache_size"] = "256kB"

	_, err := NewConfiguration(decoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "l2_cache_size")
}

func TestNewConfiguration_RejectsMissingKey(t *testing.T) {
	decoded := map[string]string{}
	for _, name := range ParamNames {
		decoded[name] = DefaultSpace().Values(name)[0]
	}
	delete(decoded, ParamStoreQueue)

	_, err := NewConfiguration(decoded)
	require.Error(t, err)
}

func TestConfigurationFields_CanonicalOrder(t *testing.T) {
	cfg := Configuration{
		L1ISize: "64kB", L1IAssoc: 4,
		L1DSize: "1MB", L1DAssoc: 8,
		L2Size: "256kB", L2Assoc: 8,
		L3Size: "2MB", L3Assoc: 16,
		LoadQueue: 48, StoreQueue: 80,
		NumFURead: 4, NumFUWrite: 1,
	}
	assert.Equal(t, []string{
		"64kB", "4", "1MB", "8", "256kB", "8", "2MB", "16", "48", "80", "4", "1",
	}, cfg.Fields())
}
