package service

import (
	"context"
	"fmt"
	"time"

	"stockcaster/internal/domain"
	"stockcaster/internal/forecast"
	"stockcaster/internal/store"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Predictor loads a persisted model and generates forecasts. It is stateless
// between calls: every request reloads the artifact and recomputes the
// forecast over the full span from the training start date, because the
// additive model's trend/seasonal decomposition is only well-defined over
// the span it is asked to evaluate.
type Predictor struct {
	tracer trace.Tracer
	store  store.ArtifactStore
	start  time.Time
	now    func() time.Time
}

func NewPredictor(tracer trace.Tracer, artifacts store.ArtifactStore, trainStart time.Time) *Predictor {
	return &Predictor{
		tracer: tracer,
		store:  artifacts,
		start:  trainStart,
		now:    time.Now,
	}
}

// SetClock overrides the wall clock. Used in tests.
func (p *Predictor) SetClock(now func() time.Time) { p.now = now }

// Forecast returns exactly `days` rows, one per calendar day from tomorrow
// through today+days, in ascending order. A non-positive horizon is rejected
// before any store access. Missing artifacts surface store.ErrNotFound;
// artifacts that fail to deserialize surface store.ErrCorrupt.
func (p *Predictor) Forecast(ctx context.Context, ticker string, days int) ([]domain.ForecastPoint, error) {
	ctx, span := p.tracer.Start(ctx, "predictor.forecast")
	defer span.End()

	if days <= 0 {
		return nil, domain.ErrInvalidHorizon
	}
	ticker = domain.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, domain.ErrInvalidTicker
	}
	span.SetAttributes(attribute.String("ticker", ticker), attribute.Int("days", days))

	blob, err := p.store.Load(ctx, ticker)
	if err != nil {
		return nil, err
	}
	model, err := forecast.UnmarshalBinary(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", store.ErrCorrupt, ticker, err)
	}

	end := p.now().UTC().AddDate(0, 0, days)
	index := forecast.DateRange(p.start, end)
	rows := model.Predict(index)
	if len(rows) < days {
		return nil, fmt.Errorf("forecast index shorter than horizon: %d < %d", len(rows), days)
	}
	return rows[len(rows)-days:], nil
}

// Predict runs Forecast and shapes the result into the API response.
func (p *Predictor) Predict(ctx context.Context, ticker string, days int) (*domain.PredictionResponse, error) {
	rows, err := p.Forecast(ctx, ticker, days)
	if err != nil {
		return nil, err
	}
	return &domain.PredictionResponse{
		Ticker:   domain.NormalizeTicker(ticker),
		Days:     days,
		Forecast: domain.ShapeForecast(rows),
	}, nil
}
