package dse

import "sync/atomic"

// IDAllocator hands out SimIDs: strictly increasing, starting at 1, never
// reused even when the evaluation they were allocated for fails. One
// allocator is shared by every worker in a run; it is injected at harness
// construction rather than living in package state.
type IDAllocator struct {
	next atomic.Int64
}

// NewIDAllocator returns an allocator whose first Next() is 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Next atomically allocates the next SimID. Concurrent callers never
// observe the same value.
func (a *IDAllocator) Next() int64 {
	return a.next.Add(1)
}
