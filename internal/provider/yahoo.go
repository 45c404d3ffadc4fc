package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"stockcaster/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider fetches daily price history from the Yahoo Finance chart API.
type YahooProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewYahooProvider creates a new provider with built-in rate limiting.
// Yahoo throttles aggressively on unauthenticated traffic, so keep it slow.
func NewYahooProvider(tracer trace.Tracer) *YahooProvider {
	return &YahooProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: yahooBaseURL,
		tracer:  tracer,
		limiter: NewRateLimiter(5, 2*time.Second),
	}
}

// SetBaseURL overrides the API endpoint. Used in tests.
func (p *YahooProvider) SetBaseURL(u string) { p.baseURL = u }

// yahooChart is the response shape of the Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDailyHistory returns the daily adjusted-close series for a ticker over
// [start, end], ascending by date with null bars dropped.
func (p *YahooProvider) FetchDailyHistory(ctx context.Context, ticker string, start, end time.Time) ([]domain.PricePoint, error) {
	ctx, span := p.tracer.Start(ctx, "yahoo.fetch-daily-history")
	defer span.End()

	ticker = domain.NormalizeTicker(ticker)
	span.SetAttributes(attribute.String("ticker", ticker))

	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d&includeAdjustedClose=true",
		p.baseURL, url.PathEscape(ticker), start.Unix(), end.Unix())

	body, err := p.doRequest(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", ticker, err)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("parse history for %s: %w", ticker, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo API error for %s: %s", ticker, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, domain.ErrEmptyHistory
	}

	result := chart.Chart.Result[0]

	// Prefer the adjusted close series; fall back to raw close when the
	// response omits it.
	var closes []*float64
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) > 0 {
		closes = result.Indicators.AdjClose[0].AdjClose
	} else if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}
	if len(closes) == 0 {
		return nil, domain.ErrEmptyHistory
	}

	points := make([]domain.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue // null bars on holidays
		}
		d := time.Unix(ts, 0).UTC()
		points = append(points, domain.PricePoint{
			Date:  time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
			Close: *closes[i],
		})
	}
	if len(points) == 0 {
		return nil, domain.ErrEmptyHistory
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	// Drop duplicate days (Yahoo occasionally repeats the live bar).
	dedup := points[:1]
	for _, pt := range points[1:] {
		if pt.Date.Equal(dedup[len(dedup)-1].Date) {
			dedup[len(dedup)-1] = pt
			continue
		}
		dedup = append(dedup, pt)
	}

	span.SetAttributes(attribute.Int("points", len(dedup)))
	return dedup, nil
}

func (p *YahooProvider) doRequest(ctx context.Context, u string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("yahoo API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
