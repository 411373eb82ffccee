package cli

import (
	"github.com/spf13/cobra"

	"chooser-bench/internal/app"
)

var priceDate string

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Value the chooser for a single trading day",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.PriceOptions{
			Date: priceDate,
		}
		return getApp().Price(cmd.Context(), opts)
	},
}

func init() {
	priceCmd.Flags().StringVar(&priceDate, "date", "", "Valuation date (YYYY-MM-DD, defaults to the latest trading day)")
}
