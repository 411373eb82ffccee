package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"

	"chooser-bench/internal/backtest"
)

// Export renders the backtest sample as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	result, err := a.runBacktest(opts.From, opts.To)
	if err != nil {
		return err
	}
	if len(result.Records) == 0 {
		a.Logger.Info().Msg("no backtest records for export window")
		return nil
	}

	downsampled := downsampleRecords(result.Records, opts.MaxPoints)
	a.Logger.Info().Int("total", len(result.Records)).Int("exported", len(downsampled)).Msg("exporting backtest records")

	if opts.CSVPath != "" {
		if err := writeRecordsCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeRecordsPNG(opts.PNGPath, downsampled); err != nil {
			return err
		}
	}

	return nil
}

func downsampleRecords(records []backtest.Record, max int) []backtest.Record {
	if max <= 0 || len(records) <= max {
		return records
	}
	if max == 1 {
		return records[len(records)-1:]
	}

	result := make([]backtest.Record, 0, max)
	step := float64(len(records)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(records) {
			idx = len(records) - 1
		}
		result = append(result, records[idx])
	}
	return result
}

func deviationPct(rec backtest.Record) float64 {
	if rec.Actual == 0 {
		return math.NaN()
	}
	return (rec.Predicted - rec.Actual) / rec.Actual * 100
}

func writeRecordsCSV(path string, records []backtest.Record) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"date", "predicted", "realized_proxy", "deviation_pct", "vol_level", "sentiment"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		record := []string{
			rec.Date.Format("2006-01-02"),
			fmt.Sprintf("%.6f", rec.Predicted),
			fmt.Sprintf("%.6f", rec.Actual),
			fmt.Sprintf("%.4f", deviationPct(rec)),
			fmt.Sprintf("%.2f", rec.VolLevel),
			fmt.Sprintf("%.4f", rec.Sentiment),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeRecordsPNG(path string, records []backtest.Record) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(records))
	predicted := make([]float64, len(records))
	actual := make([]float64, len(records))
	deviation := make([]float64, len(records))

	for i, rec := range records {
		x[i] = rec.Date
		predicted[i] = rec.Predicted
		actual[i] = rec.Actual
		dev := deviationPct(rec)
		if math.IsNaN(dev) {
			dev = 0
		}
		deviation[i] = dev
	}

	priceFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Chooser price",
			ValueFormatter: priceFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name:           "Deviation (%)",
			ValueFormatter: priceFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Predicted",
				XValues: x,
				YValues: predicted,
			},
			chart.TimeSeries{
				Name:    "Realized proxy",
				XValues: x,
				YValues: actual,
			},
			chart.TimeSeries{
				Name:    "Deviation %",
				XValues: x,
				YValues: deviation,
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func formatDecimal(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}
