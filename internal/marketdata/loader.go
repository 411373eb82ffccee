package marketdata

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/gocarina/gocsv"
)

// rowDTO mirrors the processed dataset CSV. Pointer fields let an empty
// cell surface as NaN instead of a silent zero.
type rowDTO struct {
	Date     string   `csv:"date"`
	Close    *float64 `csv:"close"`
	High     *float64 `csv:"high"`
	Low      *float64 `csv:"low"`
	Volume   *float64 `csv:"volume"`
	Dividend *float64 `csv:"dividend"`
	VIX      *float64 `csv:"vix_close"`
	Rate     *float64 `csv:"treasury_10y"`
}

// LoadCSV reads the processed daily feature table and computes the derived
// features. The file must be chronological; gaps were already filled by the
// preprocessing pipeline upstream.
func LoadCSV(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var dtos []*rowDTO
	if err := gocsv.UnmarshalFile(f, &dtos); err != nil {
		return nil, fmt.Errorf("unmarshal dataset %s: %w", path, err)
	}

	rows := make([]Row, 0, len(dtos))
	for i, dto := range dtos {
		date, err := time.Parse(dateKeyLayout, dto.Date)
		if err != nil {
			return nil, fmt.Errorf("parse date on line %d: %w", i+2, err)
		}
		rows = append(rows, Row{
			Date:     date,
			Close:    deref(dto.Close),
			High:     deref(dto.High),
			Low:      deref(dto.Low),
			Volume:   deref(dto.Volume),
			Dividend: derefZero(dto.Dividend),
			VIX:      deref(dto.VIX),
			Rate:     deref(dto.Rate),
		})
	}

	series, err := NewSeries(rows)
	if err != nil {
		return nil, err
	}
	ComputeFeatures(series)
	return series, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// derefZero treats an absent cell as zero; dividends are sparse by nature.
func derefZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
