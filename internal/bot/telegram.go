package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"stockcaster/internal/domain"

	tele "gopkg.in/telebot.v3"
)

// Forecaster is the slice of the prediction service the bot needs.
type Forecaster interface {
	Predict(ctx context.Context, ticker string, days int) (*domain.PredictionResponse, error)
}

// StartTelegramBot launches the interactive bot if TELEGRAM_BOT_TOKEN is set.
func StartTelegramBot(predictor Forecaster) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong!")
	})

	b.Handle("/predict", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send("Usage: /predict MSFT [days]\nDefault horizon is 7 days.")
		}
		ticker := domain.NormalizeTicker(args[0])
		days := 7
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				return c.Send("Days must be a positive number.")
			}
			days = n
		}
		resp, err := predictor.Predict(context.Background(), ticker, days)
		if err != nil {
			return c.Send(fmt.Sprintf("No forecast for %s: %v", ticker, err))
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s forecast, next %d days:\n", resp.Ticker, resp.Days)
		for _, entry := range resp.Forecast {
			fmt.Fprintf(&sb, "%s  $%.2f\n", entry.Date, entry.Value)
		}
		return c.Send(sb.String())
	})

	log.Println("Telegram bot started")
	go b.Start()
}
