package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"stockcaster/internal/domain"
	"stockcaster/internal/store"
)

// countingStore wraps a store and records Load calls.
type countingStore struct {
	store.ArtifactStore
	loads int
}

func (c *countingStore) Load(ctx context.Context, ticker string) ([]byte, error) {
	c.loads++
	return c.ArtifactStore.Load(ctx, ticker)
}

func trainedStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	artifacts := store.NewMemoryStore()
	prov := &fakeProvider{points: syntheticHistory(testTrainStart, 3*365)}
	tr := NewTrainer(noopTracer(), prov, artifacts, testTrainStart)
	if _, err := tr.Train(context.Background(), "MSFT"); err != nil {
		t.Fatalf("setup training failed: %v", err)
	}
	return artifacts
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestForecastHorizonContract(t *testing.T) {
	artifacts := trainedStore(t)
	p := NewPredictor(noopTracer(), artifacts, testTrainStart)
	today := time.Date(2023, 6, 15, 10, 30, 0, 0, time.UTC)
	p.SetClock(fixedClock(today))

	rows, err := p.Forecast(context.Background(), "MSFT", 7)
	if err != nil {
		t.Fatalf("forecast failed: %v", err)
	}
	if len(rows) != 7 {
		t.Fatalf("expected 7 rows, got %d", len(rows))
	}

	wantFirst := time.Date(2023, 6, 16, 0, 0, 0, 0, time.UTC)
	if !rows[0].Date.Equal(wantFirst) {
		t.Fatalf("first row dated %v, want tomorrow %v", rows[0].Date, wantFirst)
	}
	wantLast := time.Date(2023, 6, 22, 0, 0, 0, 0, time.UTC)
	if !rows[6].Date.Equal(wantLast) {
		t.Fatalf("last row dated %v, want today+7 %v", rows[6].Date, wantLast)
	}
	for i, r := range rows {
		if i > 0 && !r.Date.After(rows[i-1].Date) {
			t.Fatalf("rows not strictly ascending at %d", i)
		}
		if math.IsNaN(r.Trend) || math.IsInf(r.Trend, 0) {
			t.Fatalf("non-finite trend at %v", r.Date)
		}
	}
}

func TestForecastIdempotent(t *testing.T) {
	artifacts := trainedStore(t)
	p := NewPredictor(noopTracer(), artifacts, testTrainStart)
	p.SetClock(fixedClock(time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)))

	a, err := p.Forecast(context.Background(), "MSFT", 14)
	if err != nil {
		t.Fatalf("first forecast failed: %v", err)
	}
	b, err := p.Forecast(context.Background(), "MSFT", 14)
	if err != nil {
		t.Fatalf("second forecast failed: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("forecasts differ at row %d", i)
		}
	}
}

func TestForecastUntrainedTicker(t *testing.T) {
	p := NewPredictor(noopTracer(), store.NewMemoryStore(), testTrainStart)
	_, err := p.Forecast(context.Background(), "ZZZZ", 7)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestForecastRejectsNonPositiveHorizonBeforeStoreAccess(t *testing.T) {
	counting := &countingStore{ArtifactStore: store.NewMemoryStore()}
	p := NewPredictor(noopTracer(), counting, testTrainStart)

	for _, days := range []int{0, -1, -30} {
		_, err := p.Forecast(context.Background(), "MSFT", days)
		if !errors.Is(err, domain.ErrInvalidHorizon) {
			t.Fatalf("days=%d: expected ErrInvalidHorizon, got %v", days, err)
		}
	}
	if counting.loads != 0 {
		t.Fatalf("store accessed %d times for invalid horizons", counting.loads)
	}
}

func TestForecastCorruptArtifact(t *testing.T) {
	artifacts := store.NewMemoryStore()
	if err := artifacts.Save(context.Background(), "MSFT", []byte("not a model")); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	p := NewPredictor(noopTracer(), artifacts, testTrainStart)

	_, err := p.Forecast(context.Background(), "MSFT", 7)
	if !errors.Is(err, store.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if errors.Is(err, store.ErrNotFound) {
		t.Fatal("corruption must not be reported as not-found")
	}
}

func TestPredictShapesResponse(t *testing.T) {
	artifacts := trainedStore(t)
	p := NewPredictor(noopTracer(), artifacts, testTrainStart)
	p.SetClock(fixedClock(time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)))

	resp, err := p.Predict(context.Background(), "msft", 7)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if resp.Ticker != "MSFT" || resp.Days != 7 {
		t.Fatalf("unexpected echo fields: %+v", resp)
	}
	if len(resp.Forecast) != 7 {
		t.Fatalf("expected 7 forecast entries, got %d", len(resp.Forecast))
	}
	if resp.Forecast[0].Date != "06/16/2023" {
		t.Fatalf("unexpected first key %q", resp.Forecast[0].Date)
	}
	if resp.Forecast[6].Date != "06/22/2023" {
		t.Fatalf("unexpected last key %q", resp.Forecast[6].Date)
	}
}

// Round-trip: a freshly fitted model and its stored artifact must produce
// identical forecasts for the same inputs.
func TestStoredArtifactMatchesFittedModel(t *testing.T) {
	artifacts := store.NewMemoryStore()
	prov := &fakeProvider{points: syntheticHistory(testTrainStart, 3*365)}
	tr := NewTrainer(noopTracer(), prov, artifacts, testTrainStart)
	ctx := context.Background()
	if _, err := tr.Train(ctx, "MSFT"); err != nil {
		t.Fatalf("train failed: %v", err)
	}

	p := NewPredictor(noopTracer(), artifacts, testTrainStart)
	clock := fixedClock(time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC))
	p.SetClock(clock)
	first, err := p.Forecast(ctx, "MSFT", 5)
	if err != nil {
		t.Fatalf("forecast failed: %v", err)
	}

	// Retrain on the same data: the replaced artifact must forecast the same.
	if _, err := tr.Train(ctx, "MSFT"); err != nil {
		t.Fatalf("retrain failed: %v", err)
	}
	second, err := p.Forecast(ctx, "MSFT", 5)
	if err != nil {
		t.Fatalf("forecast after retrain failed: %v", err)
	}
	for i := range first {
		if math.Abs(first[i].Trend-second[i].Trend) > 1e-9 {
			t.Fatalf("trend changed after identical retrain at row %d", i)
		}
	}
}
