package dse

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/uarch-dse/uarch-dse/dse/design"
)

// Solution pairs a candidate with its evaluated objective vector.
type Solution struct {
	Candidate  []int
	Objectives design.ObjectiveVector
}

// RandomSampler is the baseline search driver shipped with the engine:
// seeded uniform integer sampling inside the problem bounds, with optional
// duplicate elimination. It exercises the harness end to end; evolutionary
// drivers plug in through the Problem interface instead.
type RandomSampler struct {
	Seed                int64
	Evaluations         int
	EliminateDuplicates bool
}

// Minimize draws candidates and evaluates them all concurrently; the
// harness worker pool bounds actual parallelism. With duplicate
// elimination the returned slice may hold fewer than Evaluations solutions
// when the space is small.
func (s RandomSampler) Minimize(p Problem) []Solution {
	lo, hi := p.Bounds()
	rng := rand.New(rand.NewSource(s.Seed))

	seen := map[string]bool{}
	var batch [][]int
	for len(batch) < s.Evaluations {
		candidate := make([]int, len(lo))
		for i := range candidate {
			candidate[i] = lo[i] + rng.Intn(hi[i]-lo[i]+1)
		}
		if s.EliminateDuplicates {
			key := fmt.Sprint(candidate)
			if seen[key] {
				if len(seen) >= spaceSize(lo, hi) {
					break
				}
				continue
			}
			seen[key] = true
		}
		batch = append(batch, candidate)
	}

	solutions := make([]Solution, len(batch))
	var wg sync.WaitGroup
	for i, candidate := range batch {
		wg.Add(1)
		go func(i int, candidate []int) {
			defer wg.Done()
			solutions[i] = Solution{Candidate: candidate, Objectives: p.Evaluate(candidate)}
		}(i, candidate)
	}
	wg.Wait()
	return solutions
}

func spaceSize(lo, hi []int) int {
	n := 1
	for i := range lo {
		n *= hi[i] - lo[i] + 1
	}
	return n
}
