package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"chooser-bench/internal/app"
)

var (
	backtestFrom string
	backtestTo   string
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run the realized-proxy backtest and print error metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.BacktestOptions{}

		if backtestFrom != "" {
			from, err := time.Parse("2006-01-02", backtestFrom)
			if err != nil {
				return fmt.Errorf("invalid --from value: %w", err)
			}
			opts.From = &from
		}

		if backtestTo != "" {
			to, err := time.Parse("2006-01-02", backtestTo)
			if err != nil {
				return fmt.Errorf("invalid --to value: %w", err)
			}
			opts.To = &to
		}

		return getApp().Backtest(cmd.Context(), opts)
	},
}

func init() {
	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "First valuation date (YYYY-MM-DD, inclusive)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "Last valuation date (YYYY-MM-DD, inclusive)")
}
