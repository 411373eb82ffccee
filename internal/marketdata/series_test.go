package marketdata

import (
	"errors"
	"math"
	"testing"
	"time"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad test date %s: %v", s, err)
	}
	return d
}

func TestNewSeriesRejectsUnorderedDates(t *testing.T) {
	rows := []Row{
		{Date: day(t, "2021-03-02"), Close: 150},
		{Date: day(t, "2021-03-01"), Close: 151},
	}
	if _, err := NewSeries(rows); !errors.Is(err, ErrUnorderedSeries) {
		t.Fatalf("out-of-order rows should fail, got %v", err)
	}

	rows[1].Date = rows[0].Date
	if _, err := NewSeries(rows); !errors.Is(err, ErrUnorderedSeries) {
		t.Fatalf("duplicate dates should fail, got %v", err)
	}
}

func TestSnapshotConversions(t *testing.T) {
	rows := []Row{{
		Date:          day(t, "2021-03-01"),
		Close:         156.70,
		VIX:           28.2,
		Rate:          0.0015,
		DividendYield: 0.0233,
	}}
	series, err := NewSeries(rows)
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}

	snap, err := series.Snapshot(0, 150, 0.5, 1.0, -1)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if snap.Spot != 156.70 || snap.Strike != 150 {
		t.Fatalf("spot/strike wrong: %+v", snap)
	}
	if math.Abs(snap.Sigma-0.282) > 1e-12 {
		t.Fatalf("sigma should be vix/100, got %g", snap.Sigma)
	}
	if snap.Dividend != 0.0233 {
		t.Fatalf("negative override should fall back to proxy, got %g", snap.Dividend)
	}

	snap, err = series.Snapshot(0, 150, 0.5, 1.0, 0.03)
	if err != nil {
		t.Fatalf("Snapshot with override: %v", err)
	}
	if snap.Dividend != 0.03 {
		t.Fatalf("explicit dividend yield should win, got %g", snap.Dividend)
	}
}

func TestSnapshotFailsOnMissingField(t *testing.T) {
	rows := []Row{{
		Date:          day(t, "2021-03-01"),
		Close:         156.70,
		VIX:           28.2,
		Rate:          math.NaN(),
		DividendYield: 0.02,
	}}
	series, err := NewSeries(rows)
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}

	if _, err := series.Snapshot(0, 150, 0.5, 1.0, 0.02); !errors.Is(err, ErrMissingField) {
		t.Fatalf("missing rate should fail explicitly, got %v", err)
	}

	rows[0].Rate = 0.0015
	rows[0].DividendYield = math.NaN()
	series, _ = NewSeries(rows)
	if _, err := series.Snapshot(0, 150, 0.5, 1.0, -1); !errors.Is(err, ErrMissingField) {
		t.Fatalf("missing dividend proxy should fail when relied upon, got %v", err)
	}
}
