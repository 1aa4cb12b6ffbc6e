package dse

import "github.com/uarch-dse/uarch-dse/dse/design"

// Problem is the contract between the harness and an external
// multi-objective optimizer: an element-wise objective function over
// integer vectors constrained by Bounds, minimizing NumObjectives values.
// The optimizer may evaluate candidates from concurrent goroutines; each
// call is independent.
//
// *Harness satisfies Problem. The evolutionary algorithm itself (sampling,
// crossover, mutation, non-domination ranking) lives outside this module.
type Problem interface {
	Bounds() (lo, hi []int)
	NumObjectives() int
	Evaluate(candidate []int) design.ObjectiveVector
}
