package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"chooser-bench/internal/app"
)

var (
	simulateSpot  float64
	simulateSigma float64
	simulateRate  float64
	simulatePaths int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate price paths for an explicit market scenario",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateSpot <= 0 || simulateSigma < 0 {
			return errors.New("--spot must be positive and --sigma non-negative")
		}

		opts := app.SimulateOptions{
			Spot:  simulateSpot,
			Sigma: simulateSigma,
			Rate:  simulateRate,
			Paths: simulatePaths,
		}
		return getApp().Simulate(cmd.Context(), opts)
	},
}

func init() {
	simulateCmd.Flags().Float64Var(&simulateSpot, "spot", 0, "Spot price at valuation")
	simulateCmd.Flags().Float64Var(&simulateSigma, "sigma", 0, "Annualized volatility (decimal fraction)")
	simulateCmd.Flags().Float64Var(&simulateRate, "rate", 0, "Risk-free rate (decimal fraction)")
	simulateCmd.Flags().IntVar(&simulatePaths, "paths", 0, "Number of paths (defaults to config)")
}
