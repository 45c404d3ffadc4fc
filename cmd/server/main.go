package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockcaster/internal/bot"
	"stockcaster/internal/cache"
	"stockcaster/internal/config"
	"stockcaster/internal/db"
	"stockcaster/internal/handler"
	"stockcaster/internal/job"
	"stockcaster/internal/notify"
	"stockcaster/internal/provider"
	"stockcaster/internal/service"
	"stockcaster/internal/store"
	"stockcaster/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "stockcaster/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initPostgresFunc       = db.InitPostgres
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	openStoreFunc          = openStore
	startRetrainJobFunc    = func(j *job.RetrainJob, ctx context.Context) { go j.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// openStore picks the artifact store backend from config.
func openStore(ctx context.Context, cfg *config.Config) (store.ArtifactStore, error) {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		initRedisFunc(ctx, cfg.RedisURL)
		return store.NewRedisStore(cache.Client), nil
	case "postgres":
		initPostgresFunc(ctx, cfg.DatabaseURL)
		pg := store.NewPostgresStore(db.Pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return pg, nil
	default:
		return store.NewFSStore(cfg.ModelDir)
	}
}

// @title           Stockcaster API
// @version         1.0
// @description     Per-ticker stock price forecasting service.

// @host      localhost:8000
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Open the artifact store
	artifacts, err := openStoreFunc(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open artifact store: %v", err)
	}
	log.Printf("Artifact store ready backend=%s", cfg.StoreBackend)

	// Price feed and services
	yahoo := provider.NewYahooProvider(tracer)
	if cfg.YahooBaseURL != "" {
		yahoo.SetBaseURL(cfg.YahooBaseURL)
	}
	trainer := service.NewTrainer(tracer, yahoo, artifacts, cfg.TrainStart)
	predictor := service.NewPredictor(tracer, artifacts, cfg.TrainStart)

	// Nightly retrain (background goroutine, stopped by ctx cancel)
	if cfg.RetrainEnabled {
		var notifier job.Notifier
		if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
			n, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
			if err != nil {
				log.Printf("Telegram notifier disabled: %v", err)
			} else {
				notifier = n
			}
		}
		retrain := job.NewRetrainJob(tracer, trainer, cfg.Tickers, cfg.RetrainHourUTC, notifier)
		startRetrainJobFunc(retrain, ctx)
	}

	// Start Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	startTelegramBotFunc(predictor)

	// Create handlers and routes
	h := handler.New(tracer, predictor, trainer, artifacts, cfg.AdminAPIKey)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("stockcaster"))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
