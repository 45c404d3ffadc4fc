package forecast

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"stockcaster/internal/domain"

	"gonum.org/v1/gonum/mat"
)

const (
	daysPerYear = 365.25
	daysPerWeek = 7.0
)

// FitOptions control the additive regression.
type FitOptions struct {
	YearlyOrder int     // Fourier order for the yearly seasonality
	WeeklyOrder int     // Fourier order for the weekly seasonality
	Ridge       float64 // L2 penalty on the seasonal/trend coefficients
}

// DefaultFitOptions returns the options used by the trainer.
func DefaultFitOptions() FitOptions {
	return FitOptions{
		YearlyOrder: 3,
		WeeklyOrder: 3,
		Ridge:       0.001,
	}
}

type artifact struct {
	TrainStart  time.Time `json:"train_start"`
	TrainEnd    time.Time `json:"train_end"`
	Coeffs      []float64 `json:"coeffs"`
	YearlyOrder int       `json:"yearly_order"`
	WeeklyOrder int       `json:"weekly_order"`
	Ridge       float64   `json:"ridge"`
}

// Model is a fitted additive model: linear trend plus weekly and yearly
// Fourier seasonalities, fit by ridge-regularized least squares. The trend
// and seasonal decomposition is only well-defined over the span the model is
// asked to evaluate, so callers supply the full date index from the training
// start through the end of the horizon.
type Model struct {
	a artifact
}

// Fit estimates the additive model over an ascending daily price series.
func Fit(points []domain.PricePoint, opts FitOptions) (*Model, error) {
	if opts.YearlyOrder <= 0 {
		opts.YearlyOrder = DefaultFitOptions().YearlyOrder
	}
	if opts.WeeklyOrder <= 0 {
		opts.WeeklyOrder = DefaultFitOptions().WeeklyOrder
	}
	if opts.Ridge <= 0 {
		opts.Ridge = DefaultFitOptions().Ridge
	}

	p := 2 + 2*opts.YearlyOrder + 2*opts.WeeklyOrder
	if len(points) < 2*p {
		return nil, errors.New("not enough data points to fit the model")
	}

	start := points[0].Date
	end := points[len(points)-1].Date
	if !end.After(start) {
		return nil, errors.New("training series must span more than one day")
	}

	n := len(points)
	x := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	for i, pt := range points {
		if math.IsNaN(pt.Close) || math.IsInf(pt.Close, 0) {
			return nil, errors.New("training series contains a non-finite price")
		}
		x.SetRow(i, featureRow(start, pt.Date, opts.YearlyOrder, opts.WeeklyOrder))
		y.SetVec(i, pt.Close)
	}

	// Normal equations with a ridge penalty on everything but the intercept.
	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	sym := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			v := xtx.At(i, j)
			if i == j && i > 0 {
				v += opts.Ridge * float64(n)
			}
			sym.SetSym(i, j, v)
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(sym) {
		return nil, errors.New("design matrix is not positive definite")
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), y)
	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &xty); err != nil {
		return nil, err
	}

	coeffs := make([]float64, p)
	copy(coeffs, beta.RawVector().Data)

	return &Model{a: artifact{
		TrainStart:  start.UTC(),
		TrainEnd:    end.UTC(),
		Coeffs:      coeffs,
		YearlyOrder: opts.YearlyOrder,
		WeeklyOrder: opts.WeeklyOrder,
		Ridge:       opts.Ridge,
	}}, nil
}

// Predict evaluates the model over the given dates, in order. Output is
// deterministic for a fixed artifact and a fixed date index.
func (m *Model) Predict(dates []time.Time) []domain.ForecastPoint {
	out := make([]domain.ForecastPoint, 0, len(dates))
	for _, d := range dates {
		row := featureRow(m.a.TrainStart, d, m.a.YearlyOrder, m.a.WeeklyOrder)

		trend := m.a.Coeffs[0] + m.a.Coeffs[1]*row[1]
		yearly := 0.0
		for j := 2; j < 2+2*m.a.YearlyOrder; j++ {
			yearly += m.a.Coeffs[j] * row[j]
		}
		weekly := 0.0
		for j := 2 + 2*m.a.YearlyOrder; j < len(row); j++ {
			weekly += m.a.Coeffs[j] * row[j]
		}

		out = append(out, domain.ForecastPoint{
			Date:   d,
			Trend:  trend,
			Weekly: weekly,
			Yearly: yearly,
			Yhat:   trend + weekly + yearly,
		})
	}
	return out
}

// TrainStart returns the first date of the fitted series.
func (m *Model) TrainStart() time.Time { return m.a.TrainStart }

// TrainEnd returns the last date of the fitted series.
func (m *Model) TrainEnd() time.Time { return m.a.TrainEnd }

// MarshalBinary serializes the fitted model as a JSON artifact.
func (m *Model) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, errors.New("nil model")
	}
	return json.Marshal(m.a)
}

// UnmarshalBinary restores a model from a serialized artifact.
func UnmarshalBinary(data []byte) (*Model, error) {
	if len(data) == 0 {
		return nil, errors.New("empty artifact")
	}
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	want := 2 + 2*a.YearlyOrder + 2*a.WeeklyOrder
	if a.YearlyOrder <= 0 || a.WeeklyOrder <= 0 || len(a.Coeffs) != want {
		return nil, errors.New("invalid artifact")
	}
	if a.TrainStart.IsZero() {
		return nil, errors.New("artifact missing training window")
	}
	return &Model{a: a}, nil
}

// featureRow builds the regression features for one calendar day:
// intercept, trend in years, then yearly and weekly sin/cos pairs.
func featureRow(start, d time.Time, yearlyOrder, weeklyOrder int) []float64 {
	t := d.Sub(start).Hours() / 24

	row := make([]float64, 0, 2+2*yearlyOrder+2*weeklyOrder)
	row = append(row, 1, t/daysPerYear)
	for k := 1; k <= yearlyOrder; k++ {
		arg := 2 * math.Pi * float64(k) * t / daysPerYear
		row = append(row, math.Sin(arg), math.Cos(arg))
	}
	for k := 1; k <= weeklyOrder; k++ {
		arg := 2 * math.Pi * float64(k) * t / daysPerWeek
		row = append(row, math.Sin(arg), math.Cos(arg))
	}
	return row
}

// DateRange returns every calendar day from start through end inclusive.
// The index is calendar-based, not trading-day-based: weekends and holidays
// are included.
func DateRange(start, end time.Time) []time.Time {
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return nil
	}
	out := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
