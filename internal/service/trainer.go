package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockcaster/internal/domain"
	"stockcaster/internal/forecast"
	"stockcaster/internal/store"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// HistoryProvider fetches the raw daily price series used for training.
type HistoryProvider interface {
	FetchDailyHistory(ctx context.Context, ticker string, start, end time.Time) ([]domain.PricePoint, error)
}

// TrainResult summarizes one completed training run.
type TrainResult struct {
	Ticker string    `json:"ticker"`
	Points int       `json:"points"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
}

// Trainer fits a forecasting model per ticker and persists the artifact.
// It runs out-of-band of serving traffic: from the CLI, the retrain job, or
// the admin endpoint.
type Trainer struct {
	tracer   trace.Tracer
	provider HistoryProvider
	store    store.ArtifactStore
	start    time.Time
	now      func() time.Time
}

func NewTrainer(tracer trace.Tracer, provider HistoryProvider, artifacts store.ArtifactStore, trainStart time.Time) *Trainer {
	return &Trainer{
		tracer:   tracer,
		provider: provider,
		store:    artifacts,
		start:    trainStart,
		now:      time.Now,
	}
}

// SetClock overrides the wall clock. Used in tests.
func (t *Trainer) SetClock(now func() time.Time) { t.now = now }

// Train fetches history for the ticker over [trainStart, today], fits the
// model, and atomically replaces the stored artifact. On any failure the
// store is left untouched.
func (t *Trainer) Train(ctx context.Context, ticker string) (TrainResult, error) {
	ctx, span := t.tracer.Start(ctx, "trainer.train")
	defer span.End()

	ticker = domain.NormalizeTicker(ticker)
	if ticker == "" {
		return TrainResult{}, domain.ErrInvalidTicker
	}
	span.SetAttributes(attribute.String("ticker", ticker))

	end := t.now().UTC()
	points, err := t.provider.FetchDailyHistory(ctx, ticker, t.start, end)
	if err != nil {
		return TrainResult{}, fmt.Errorf("fetch history: %w", err)
	}
	if len(points) < 2 {
		return TrainResult{}, domain.ErrEmptyHistory
	}

	model, err := forecast.Fit(points, forecast.DefaultFitOptions())
	if err != nil {
		if errors.Is(err, domain.ErrEmptyHistory) {
			return TrainResult{}, err
		}
		return TrainResult{}, fmt.Errorf("fit model for %s: %w", ticker, err)
	}

	blob, err := model.MarshalBinary()
	if err != nil {
		return TrainResult{}, fmt.Errorf("serialize model for %s: %w", ticker, err)
	}
	if err := t.store.Save(ctx, ticker, blob); err != nil {
		return TrainResult{}, fmt.Errorf("save artifact for %s: %w", ticker, err)
	}

	return TrainResult{
		Ticker: ticker,
		Points: len(points),
		From:   points[0].Date,
		To:     points[len(points)-1].Date,
	}, nil
}
