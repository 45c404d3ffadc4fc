package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNormalizeTicker(t *testing.T) {
	tests := map[string]string{
		"msft":   "MSFT",
		" aapl ": "AAPL",
		"GOOG":   "GOOG",
		"":       "",
	}
	for in, want := range tests {
		if got := NormalizeTicker(in); got != want {
			t.Fatalf("NormalizeTicker(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestShapeForecastPreservesOrderAndLength(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]ForecastPoint, 0, 5)
	for i := 0; i < 5; i++ {
		rows = append(rows, ForecastPoint{
			Date:  base.AddDate(0, 0, i),
			Trend: 100 + float64(i),
			Yhat:  200 + float64(i),
		})
	}

	shaped := ShapeForecast(rows)
	if len(shaped) != len(rows) {
		t.Fatalf("expected %d entries, got %d", len(rows), len(shaped))
	}
	for i, e := range shaped {
		wantDate := rows[i].Date.Format(DateFormat)
		if e.Date != wantDate {
			t.Fatalf("entry %d: date %q, want %q", i, e.Date, wantDate)
		}
		if e.Value != rows[i].Trend {
			t.Fatalf("entry %d: value %f, want trend %f", i, e.Value, rows[i].Trend)
		}
	}
	if shaped[0].Date != "03/01/2026" {
		t.Fatalf("unexpected date format: %s", shaped[0].Date)
	}
}

func TestForecastMapJSONOrder(t *testing.T) {
	m := ForecastMap{
		{Date: "03/01/2026", Value: 101.5},
		{Date: "03/02/2026", Value: 102.25},
		{Date: "03/03/2026", Value: 103},
	}

	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	s := string(b)
	i1 := strings.Index(s, "03/01/2026")
	i2 := strings.Index(s, "03/02/2026")
	i3 := strings.Index(s, "03/03/2026")
	if i1 < 0 || i2 < 0 || i3 < 0 || !(i1 < i2 && i2 < i3) {
		t.Fatalf("keys not in chronological order: %s", s)
	}

	var back ForecastMap
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(back) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(back))
	}
	for i := range m {
		if back[i] != m[i] {
			t.Fatalf("entry %d changed on round-trip: %+v vs %+v", i, back[i], m[i])
		}
	}
}

func TestForecastMapGet(t *testing.T) {
	m := ForecastMap{{Date: "03/01/2026", Value: 42}}
	if v, ok := m.Get("03/01/2026"); !ok || v != 42 {
		t.Fatalf("expected (42, true), got (%f, %v)", v, ok)
	}
	if _, ok := m.Get("01/01/1999"); ok {
		t.Fatal("expected missing key")
	}
}

func TestForecastMapRejectsNonObject(t *testing.T) {
	var m ForecastMap
	if err := json.Unmarshal([]byte(`[1,2]`), &m); err == nil {
		t.Fatal("expected error for non-object JSON")
	}
}
