package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/uarch-dse/uarch-dse/dse/analyze"
	"github.com/uarch-dse/uarch-dse/dse/design"
	"github.com/uarch-dse/uarch-dse/dse/ledger"
)

var (
	analyzeInput string // Finished ledger CSV to analyze
	paretoOut    string // Where to write the Pareto-front rows
)

// analyzeCmd extracts the Pareto front from a finished run's ledger and
// prints a summary of the trade-off space.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract the Pareto front from a results ledger",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		rows, err := analyze.Load(analyzeInput)
		if err != nil {
			logrus.Fatalf("unable to load results: %v", err)
		}
		valid := analyze.Valid(rows)
		front := analyze.ParetoFront(valid)

		fmt.Printf("Evaluations: %d total, %d valid\n", len(rows), len(valid))
		if len(front) == 0 {
			logrus.Warn("no valid evaluations; nothing to analyze")
			return
		}

		summary, err := analyze.Summarize(front)
		if err != nil {
			logrus.Fatalf("summarizing front: %v", err)
		}

		bold := color.New(color.Bold)
		bold.Printf("Pareto front: %d configurations\n", len(front))
		fmt.Printf("  ipc    [%.4f, %.4f]  mean %.4f\n", summary.IPC.Min, summary.IPC.Max, summary.IPC.Mean)
		fmt.Printf("  energy [%.4f, %.4f]  mean %.4f\n", summary.Energy.Min, summary.Energy.Max, summary.Energy.Mean)
		fmt.Printf("  edp    [%.4f, %.4f]  mean %.4f\n", summary.EDP.Min, summary.EDP.Max, summary.EDP.Mean)

		best := summary.BestEDP
		color.Green("Best trade-off (lowest edp): sim %d  ipc=%.4f energy=%.4f edp=%.4f",
			best.SimID, best.IPC, best.Energy, best.EDP)
		// Config cells sit between sim_id/timestamp and the metrics.
		for i, name := range design.ParamNames {
			fmt.Printf("  %-13s %s\n", name, best.Fields[2+i])
		}

		if paretoOut != "" {
			if err := analyze.WriteCSV(paretoOut, front); err != nil {
				logrus.Fatalf("writing pareto front: %v", err)
			}
			logrus.Infof("Pareto front written to %s (%d columns per row)", paretoOut, len(ledger.Header))
		}
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeInput, "input", "results.csv", "Results ledger CSV to analyze")
	analyzeCmd.Flags().StringVar(&paretoOut, "pareto-out", "pareto_configurations.csv", "Output CSV for Pareto-front rows (empty = skip)")

	rootCmd.AddCommand(analyzeCmd)
}
