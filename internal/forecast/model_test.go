package forecast

import (
	"math"
	"testing"
	"time"

	"stockcaster/internal/domain"
)

func syntheticSeries(start time.Time, days int) []domain.PricePoint {
	points := make([]domain.PricePoint, 0, days)
	for i := 0; i < days; i++ {
		t := float64(i)
		price := 100 + 0.05*t +
			3*math.Sin(2*math.Pi*t/365.25) +
			0.8*math.Sin(2*math.Pi*t/7)
		points = append(points, domain.PricePoint{
			Date:  start.AddDate(0, 0, i),
			Close: price,
		})
	}
	return points
}

func TestFitRecoversTrend(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	model, err := Fit(syntheticSeries(start, 3*365), DefaultFitOptions())
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	rows := model.Predict(DateRange(start, start.AddDate(0, 0, 3*365+30)))
	last := rows[len(rows)-1]
	wantTrend := 100 + 0.05*float64(3*365+30)
	if math.Abs(last.Trend-wantTrend) > 5 {
		t.Fatalf("trend %f too far from %f", last.Trend, wantTrend)
	}
	if math.Abs(last.Yhat-(last.Trend+last.Weekly+last.Yearly)) > 1e-9 {
		t.Fatalf("yhat is not the sum of components")
	}
	for _, r := range rows {
		if math.IsNaN(r.Trend) || math.IsInf(r.Trend, 0) {
			t.Fatalf("non-finite trend at %v", r.Date)
		}
	}
}

func TestFitRejectsShortSeries(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := Fit(syntheticSeries(start, 10), DefaultFitOptions()); err == nil {
		t.Fatal("expected error for short series")
	}
	if _, err := Fit(nil, DefaultFitOptions()); err == nil {
		t.Fatal("expected error for empty series")
	}
}

func TestFitRejectsNonFinitePrices(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	points := syntheticSeries(start, 120)
	points[17].Close = math.NaN()
	if _, err := Fit(points, DefaultFitOptions()); err == nil {
		t.Fatal("expected error for NaN price")
	}
}

func TestArtifactRoundTrip(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	model, err := Fit(syntheticSeries(start, 500), DefaultFitOptions())
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	blob, err := model.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	restored, err := UnmarshalBinary(blob)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	dates := DateRange(start, start.AddDate(0, 0, 520))
	got := restored.Predict(dates)
	want := model.Predict(dates)
	for i := range want {
		if math.Abs(got[i].Trend-want[i].Trend) > 1e-9 {
			t.Fatalf("round-trip changed trend at %v", want[i].Date)
		}
		if math.Abs(got[i].Yhat-want[i].Yhat) > 1e-9 {
			t.Fatalf("round-trip changed yhat at %v", want[i].Date)
		}
	}
}

func TestUnmarshalBinaryRejectsBadArtifacts(t *testing.T) {
	if _, err := UnmarshalBinary(nil); err == nil {
		t.Fatal("expected error for empty blob")
	}
	if _, err := UnmarshalBinary([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed blob")
	}
	if _, err := UnmarshalBinary([]byte(`{"coeffs":[1,2],"yearly_order":3,"weekly_order":3}`)); err == nil {
		t.Fatal("expected error for coefficient count mismatch")
	}
}

func TestDateRange(t *testing.T) {
	start := time.Date(2026, 2, 27, 15, 4, 5, 0, time.UTC)
	end := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	dates := DateRange(start, end)
	if len(dates) != 4 {
		t.Fatalf("expected 4 days, got %d", len(dates))
	}
	if !dates[0].Equal(time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected first day: %v", dates[0])
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			t.Fatalf("dates not strictly ascending at %d", i)
		}
	}
	if DateRange(end, start) != nil {
		t.Fatal("expected nil for inverted range")
	}
}

func TestPredictIsDeterministic(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	model, err := Fit(syntheticSeries(start, 400), DefaultFitOptions())
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	dates := DateRange(start, start.AddDate(0, 0, 410))
	a := model.Predict(dates)
	b := model.Predict(dates)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("prediction differs at index %d", i)
		}
	}
}
