package cmd

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/uarch-dse/uarch-dse/dse/design"
)

var sweepParam string // Parameter to sweep across its full value list

// sweepCmd evaluates every value of one parameter with all other
// parameters held at their first listed value. Useful for isolating the
// sensitivity of a single structure (e.g. L1D size) before a full search.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep one parameter across its allowed values",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		space := loadSpace()
		values := space.Values(sweepParam)
		if values == nil {
			logrus.Fatalf("unknown parameter %q; valid parameters: %v", sweepParam, design.ParamNames)
		}

		paramIdx := -1
		for i, name := range design.ParamNames {
			if name == sweepParam {
				paramIdx = i
			}
		}

		harness := buildHarness(space)
		defer harness.Close()

		logrus.Infof("Sweeping %s across %d values", sweepParam, len(values))
		start := time.Now()
		for i := range values {
			candidate := make([]int, space.NumParams())
			candidate[paramIdx] = i
			obj := harness.Evaluate(candidate)
			logrus.Infof("%s=%s -> ipc=%.4f energy=%.4f edp=%.6f",
				sweepParam, values[i], -obj[0], obj[1], obj[2])
		}
		logrus.Infof("Sweep complete in %s; ledger at %s", time.Since(start).Round(time.Second), resultsFile)
	},
}

func init() {
	sweepCmd.Flags().StringVar(&sweepParam, "param", design.ParamL1DSize, "Design-space parameter to sweep")

	rootCmd.AddCommand(sweepCmd)
}
