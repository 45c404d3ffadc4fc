package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port         string
	ModelDir     string
	StoreBackend string
	DatabaseURL  string
	RedisURL     string

	TrainStart time.Time
	Tickers    []string

	RetrainEnabled bool
	RetrainHourUTC int

	AdminAPIKey      string
	TelegramBotToken string
	TelegramChatID   int64

	YahooBaseURL string
}

const defaultTrainStart = "2020-01-01"

func Load() *Config {
	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		AdminAPIKey:      os.Getenv("ADMIN_API_KEY"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	cfg.Port = strings.TrimSpace(os.Getenv("PORT"))
	if cfg.Port == "" {
		cfg.Port = "8000"
	}

	cfg.ModelDir = strings.TrimSpace(os.Getenv("MODEL_DIR"))
	if cfg.ModelDir == "" {
		cfg.ModelDir = "models"
	}

	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(os.Getenv("STORE_BACKEND")))
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = "fs"
	}
	switch cfg.StoreBackend {
	case "fs", "memory", "redis", "postgres":
	default:
		log.Printf("Warning: unsupported STORE_BACKEND=%q, defaulting to fs", cfg.StoreBackend)
		cfg.StoreBackend = "fs"
	}

	if cfg.StoreBackend == "postgres" && cfg.DatabaseURL == "" {
		log.Println("Warning: STORE_BACKEND=postgres but DATABASE_URL not set")
	}
	if cfg.StoreBackend == "redis" && cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	start := strings.TrimSpace(os.Getenv("TRAIN_START"))
	if start == "" {
		start = defaultTrainStart
	}
	ts, err := time.Parse("2006-01-02", start)
	if err != nil {
		log.Printf("Warning: invalid TRAIN_START=%q, defaulting to %s", start, defaultTrainStart)
		ts, _ = time.Parse("2006-01-02", defaultTrainStart)
	}
	cfg.TrainStart = ts

	if v := strings.TrimSpace(os.Getenv("TICKERS")); v != "" {
		for _, t := range strings.Split(v, ",") {
			t = strings.ToUpper(strings.TrimSpace(t))
			if t != "" {
				cfg.Tickers = append(cfg.Tickers, t)
			}
		}
	}

	cfg.RetrainEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("RETRAIN_ENABLED")), "true")
	if cfg.RetrainEnabled && len(cfg.Tickers) == 0 {
		log.Println("Warning: RETRAIN_ENABLED=true but TICKERS not set, nightly retrain will be idle")
	}

	cfg.RetrainHourUTC = 2
	if v := strings.TrimSpace(os.Getenv("RETRAIN_HOUR_UTC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 23 {
			cfg.RetrainHourUTC = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TelegramChatID = n
		} else {
			log.Printf("Warning: invalid TELEGRAM_CHAT_ID=%q, notifications disabled", v)
		}
	}

	cfg.YahooBaseURL = strings.TrimSpace(os.Getenv("YAHOO_BASE_URL"))

	return cfg
}
