package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"stockcaster/internal/cache"
	"stockcaster/internal/config"
	"stockcaster/internal/db"
	"stockcaster/internal/provider"
	"stockcaster/internal/service"
	"stockcaster/internal/store"

	"github.com/joho/godotenv"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	openStoreFunc  = openStore
	fetcherFunc    = newFetcher
)

func openStore(ctx context.Context, cfg *config.Config) (store.ArtifactStore, error) {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		cache.InitRedis(ctx, cfg.RedisURL)
		return store.NewRedisStore(cache.Client), nil
	case "postgres":
		db.InitPostgres(ctx, cfg.DatabaseURL)
		pg := store.NewPostgresStore(db.Pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return pg, nil
	default:
		return store.NewFSStore(cfg.ModelDir)
	}
}

func newFetcher(cfg *config.Config) service.HistoryProvider {
	tracer := sdktrace.NewTracerProvider().Tracer("stockcaster-train")
	yahoo := provider.NewYahooProvider(tracer)
	if cfg.YahooBaseURL != "" {
		yahoo.SetBaseURL(cfg.YahooBaseURL)
	}
	return yahoo
}

// run trains a model for the ticker, then prints a forecast for the
// requested horizon. A horizon of zero trains only.
func run(ctx context.Context, ticker string, days int, out io.Writer) error {
	cfg := loadConfigFunc()

	artifacts, err := openStoreFunc(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}

	tracer := sdktrace.NewTracerProvider().Tracer("stockcaster-train")
	trainer := service.NewTrainer(tracer, fetcherFunc(cfg), artifacts, cfg.TrainStart)
	predictor := service.NewPredictor(tracer, artifacts, cfg.TrainStart)

	res, err := trainer.Train(ctx, ticker)
	if err != nil {
		return fmt.Errorf("train %s: %w", ticker, err)
	}
	fmt.Fprintf(out, "Trained %s on %d points (%s .. %s)\n", res.Ticker, res.Points, res.From, res.To)

	if days <= 0 {
		return nil
	}

	resp, err := predictor.Predict(ctx, ticker, days)
	if err != nil {
		return fmt.Errorf("predict %s: %w", ticker, err)
	}
	fmt.Fprintf(out, "Forecast for %s, next %d days:\n", resp.Ticker, resp.Days)
	for _, entry := range resp.Forecast {
		fmt.Fprintf(out, "  %s  %.2f\n", entry.Date, entry.Value)
	}
	return nil
}

func main() {
	loadEnvFunc()

	ticker := flag.String("ticker", "", "ticker symbol to train, e.g. MSFT")
	days := flag.Int("days", 7, "forecast horizon in calendar days")
	flag.Parse()

	if *ticker == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), *ticker, *days, os.Stdout); err != nil {
		log.Fatal(err)
	}
}
