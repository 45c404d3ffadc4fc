package domain

import (
	"strings"
	"time"
)

// DateFormat is the fixed output format for forecast map keys (MM/DD/YYYY).
const DateFormat = "01/02/2006"

// PricePoint is a single observation of the training series: one calendar
// day and its adjusted closing price.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// ForecastPoint is one row of a generated forecast. Trend is the
// de-seasonalized long-term estimate and the only field surfaced to API
// consumers; the seasonal components and Yhat are kept for diagnostics.
type ForecastPoint struct {
	Date   time.Time `json:"date"`
	Trend  float64   `json:"trend"`
	Weekly float64   `json:"weekly"`
	Yearly float64   `json:"yearly"`
	Yhat   float64   `json:"yhat"`
}

// PredictionResponse is the externally visible prediction shape: the request
// parameters echoed back plus a chronological date->trend map.
type PredictionResponse struct {
	Ticker   string      `json:"ticker"`
	Days     int         `json:"days"`
	Forecast ForecastMap `json:"forecast"`
}

// NormalizeTicker fixes the case convention for artifact keys so "msft" and
// "MSFT" never produce two artifacts for the same symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// ShapeForecast converts forecast rows into the ordered date->trend map
// returned to API consumers, discarding seasonal components and Yhat.
// Order of the input rows is preserved.
func ShapeForecast(rows []ForecastPoint) ForecastMap {
	out := make(ForecastMap, 0, len(rows))
	for _, row := range rows {
		out = append(out, ForecastEntry{
			Date:  row.Date.Format(DateFormat),
			Value: row.Trend,
		})
	}
	return out
}
