package marketdata

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

const sampleCSV = `date,close,high,low,volume,dividend,vix_close,treasury_10y
2021-03-01,153.61,154.70,151.10,11200000,0,24.10,0.0142
2021-03-02,151.53,154.10,151.20,9800000,0.90,24.35,0.0141
2021-03-03,149.01,152.00,148.80,12500000,0,26.67,
2021-03-04,150.79,151.30,146.90,15100000,0,28.57,0.0154
`

func writeSample(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "processed_dataset.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write sample csv: %v", err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	series, err := LoadCSV(writeSample(t, sampleCSV))
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}

	if series.Len() != 4 {
		t.Fatalf("expected 4 rows, got %d", series.Len())
	}

	first := series.Row(0)
	if first.Close != 153.61 || first.VIX != 24.10 {
		t.Fatalf("first row mismatch: %+v", first)
	}
	if first.Dividend != 0 || series.Row(1).Dividend != 0.90 {
		t.Fatal("dividends not parsed")
	}

	// Empty treasury cell must surface as NaN, not zero.
	if !math.IsNaN(series.Row(2).Rate) {
		t.Fatalf("missing rate should be NaN, got %g", series.Row(2).Rate)
	}

	if i, ok := series.Index(day(t, "2021-03-04")); !ok || i != 3 {
		t.Fatalf("date index lookup failed: %d %v", i, ok)
	}
}

func TestLoadCSVBadDate(t *testing.T) {
	bad := "date,close,high,low,volume,dividend,vix_close,treasury_10y\n03/01/2021,1,1,1,1,0,20,0.01\n"
	if _, err := LoadCSV(writeSample(t, bad)); err == nil {
		t.Fatal("malformed date should fail")
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("missing file should fail")
	}
}
