package cmd

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/uarch-dse/uarch-dse/dse"
)

var (
	seed                int64 // Seed for candidate sampling
	evaluations         int   // Number of candidates to evaluate
	eliminateDuplicates bool  // Skip already-sampled candidates
)

// exploreCmd samples the design space and evaluates every candidate through
// the harness. It is the built-in baseline driver; an external evolutionary
// optimizer drives the same dse.Problem interface instead.
var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Evaluate randomly sampled configurations",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		space := loadSpace()
		harness := buildHarness(space)
		defer harness.Close()

		logrus.Infof("Exploring %d of %d configurations with %d workers (seed=%d)",
			evaluations, space.Size(), workers, seed)
		start := time.Now()

		driver := dse.RandomSampler{
			Seed:                seed,
			Evaluations:         evaluations,
			EliminateDuplicates: eliminateDuplicates,
		}
		solutions := driver.Minimize(harness)

		valid := 0
		for _, s := range solutions {
			if s.Objectives[0] < 0 { // -ipc < 0 means ipc > 0
				valid++
			}
		}
		logrus.Infof("Exploration complete: %d evaluations (%d valid) in %s; ledger at %s",
			len(solutions), valid, time.Since(start).Round(time.Second), resultsFile)
	},
}

func init() {
	exploreCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for candidate sampling")
	exploreCmd.Flags().IntVar(&evaluations, "evaluations", 36, "Number of candidates to evaluate")
	exploreCmd.Flags().BoolVar(&eliminateDuplicates, "eliminate-duplicates", true, "Skip duplicate candidates")

	rootCmd.AddCommand(exploreCmd)
}
