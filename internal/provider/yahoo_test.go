package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stockcaster/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

func newTestProvider(ts *httptest.Server) *YahooProvider {
	p := NewYahooProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.SetBaseURL(ts.URL)
	return p
}

func chartBody(timestamps []int64, adjCloses []string) string {
	tsParts := make([]string, len(timestamps))
	for i, ts := range timestamps {
		tsParts[i] = fmt.Sprintf("%d", ts)
	}
	return fmt.Sprintf(`{"chart":{"result":[{
		"timestamp":[%s],
		"indicators":{
			"quote":[{"close":[%s]}],
			"adjclose":[{"adjclose":[%s]}]
		}}],"error":null}}`,
		strings.Join(tsParts, ","),
		strings.Join(adjCloses, ","),
		strings.Join(adjCloses, ","))
}

func TestFetchDailyHistory(t *testing.T) {
	day := 24 * time.Hour
	base := time.Date(2020, 1, 2, 14, 30, 0, 0, time.UTC)
	timestamps := []int64{
		base.Unix(),
		base.Add(day).Unix(),
		base.Add(2 * day).Unix(),
		base.Add(3 * day).Unix(),
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/v8/finance/chart/MSFT") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		fmt.Fprint(w, chartBody(timestamps, []string{"100.5", "101.25", "null", "103"}))
	}))
	defer ts.Close()

	p := newTestProvider(ts)
	points, err := p.FetchDailyHistory(context.Background(), "msft",
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if len(points) != 3 {
		t.Fatalf("expected 3 points (null bar dropped), got %d", len(points))
	}
	if points[0].Close != 100.5 || points[2].Close != 103 {
		t.Fatalf("unexpected closes: %+v", points)
	}
	for i := 1; i < len(points); i++ {
		if !points[i].Date.After(points[i-1].Date) {
			t.Fatalf("dates not ascending at %d", i)
		}
	}
	if h := points[0].Date.Hour(); h != 0 {
		t.Fatalf("dates should be truncated to midnight, got hour %d", h)
	}
}

func TestFetchDailyHistoryEmptySeries(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	}))
	defer ts.Close()

	p := newTestProvider(ts)
	_, err := p.FetchDailyHistory(context.Background(), "ZZZZ", time.Now().AddDate(-1, 0, 0), time.Now())
	if !errors.Is(err, domain.ErrEmptyHistory) {
		t.Fatalf("expected ErrEmptyHistory, got %v", err)
	}
}

func TestFetchDailyHistoryAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	}))
	defer ts.Close()

	p := newTestProvider(ts)
	_, err := p.FetchDailyHistory(context.Background(), "ZZZZ", time.Now().AddDate(-1, 0, 0), time.Now())
	if err == nil || !strings.Contains(err.Error(), "delisted") {
		t.Fatalf("expected yahoo API error, got %v", err)
	}
}

func TestFetchDailyHistoryHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	p := newTestProvider(ts)
	_, err := p.FetchDailyHistory(context.Background(), "MSFT", time.Now().AddDate(-1, 0, 0), time.Now())
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestFetchDailyHistoryDeduplicatesDays(t *testing.T) {
	base := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	// Same calendar day twice: the live bar repeats the last close.
	timestamps := []int64{base.Unix(), base.Add(4 * time.Hour).Unix()}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartBody(timestamps, []string{"100", "101"}))
	}))
	defer ts.Close()

	p := newTestProvider(ts)
	points, err := p.FetchDailyHistory(context.Background(), "MSFT", base.AddDate(0, 0, -1), base.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected 1 deduplicated point, got %d", len(points))
	}
	if points[0].Close != 101 {
		t.Fatalf("expected the later bar to win, got %f", points[0].Close)
	}
}
