package job

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"stockcaster/internal/service"

	"go.opentelemetry.io/otel/trace"
)

// TickerTrainer runs one training cycle for a single ticker.
type TickerTrainer interface {
	Train(ctx context.Context, ticker string) (service.TrainResult, error)
}

// Notifier delivers retrain summaries to an external channel.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// RetrainJob refreshes every configured model once a day so forecasts
// keep tracking recent prices.
type RetrainJob struct {
	tracer   trace.Tracer
	trainer  TickerTrainer
	tickers  []string
	hour     int
	notifier Notifier
}

func NewRetrainJob(tracer trace.Tracer, trainer TickerTrainer, tickers []string, hourUTC int, notifier Notifier) *RetrainJob {
	if hourUTC < 0 || hourUTC > 23 {
		hourUTC = 0
	}
	return &RetrainJob{
		tracer:   tracer,
		trainer:  trainer,
		tickers:  tickers,
		hour:     hourUTC,
		notifier: notifier,
	}
}

// Start blocks until ctx is cancelled, retraining at the configured UTC hour.
func (j *RetrainJob) Start(ctx context.Context) {
	if j.trainer == nil || len(j.tickers) == 0 {
		log.Println("Retrain job disabled: no trainer or no tickers")
		<-ctx.Done()
		return
	}
	for {
		next := nextRunUTC(time.Now().UTC(), j.hour)
		wait := time.Until(next)
		if wait < time.Second {
			wait = time.Second
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			j.runOnce(ctx)
		}
	}
}

func (j *RetrainJob) runOnce(ctx context.Context) {
	ctx, span := j.tracer.Start(ctx, "retrain-job.run-once")
	defer span.End()

	var ok, failed int
	var lines []string
	for _, ticker := range j.tickers {
		res, err := j.trainer.Train(ctx, ticker)
		if err != nil {
			failed++
			log.Printf("Retrain error for %s: %v", ticker, err)
			lines = append(lines, fmt.Sprintf("%s: failed (%v)", ticker, err))
			continue
		}
		ok++
		log.Printf("Retrained %s points=%d window=%s..%s", res.Ticker, res.Points, res.From, res.To)
		lines = append(lines, fmt.Sprintf("%s: %d points", res.Ticker, res.Points))
	}
	log.Printf("Retrain cycle complete ok=%d failed=%d", ok, failed)

	if j.notifier != nil {
		summary := fmt.Sprintf("Nightly retrain: %d ok, %d failed\n%s", ok, failed, strings.Join(lines, "\n"))
		if err := j.notifier.Notify(ctx, summary); err != nil {
			log.Printf("Retrain notify error: %v", err)
		}
	}
}

func nextRunUTC(now time.Time, hour int) time.Time {
	run := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !run.After(now) {
		run = run.Add(24 * time.Hour)
	}
	return run
}
