package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// Show prints recent stored valuations.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show valuations")
	}
	if closeStore != nil {
		defer closeStore()
	}

	records, err := store.ListRecentValuations(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stdout, "no valuations found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Bucket (UTC)\tDate\tSpot\tMC\tStdErr\tAnalytic\tCallRatio\tPolicy\tStatus\tError")

	for _, rec := range records {
		errMsg := ""
		if rec.Error != nil {
			errMsg = sanitizeInline(*rec.Error)
		}
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.Bucket.UTC().Format(time.RFC3339),
			rec.ValuationDate.Format("2006-01-02"),
			formatDecimal(rec.Spot, 2),
			formatDecimal(rec.MCPrice, 4),
			formatDecimal(rec.MCStdErr, 4),
			formatDecimal(rec.AnalyticPrice, 4),
			formatDecimal(rec.CallRatio, 3),
			rec.Policy,
			rec.Status,
			errMsg,
		)
	}

	writer.Flush()
	return nil
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
