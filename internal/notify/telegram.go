package notify

import (
	"context"
	"errors"

	tele "gopkg.in/telebot.v3"
)

// TelegramNotifier pushes retrain summaries to a fixed chat.
type TelegramNotifier struct {
	bot  *tele.Bot
	chat tele.ChatID
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	if token == "" {
		return nil, errors.New("telegram notifier requires a bot token")
	}
	if chatID == 0 {
		return nil, errors.New("telegram notifier requires a chat id")
	}
	// Send-only: no poller, the bot never consumes updates.
	b, err := tele.NewBot(tele.Settings{Token: token})
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{bot: b, chat: tele.ChatID(chatID)}, nil
}

func (n *TelegramNotifier) Notify(_ context.Context, message string) error {
	_, err := n.bot.Send(n.chat, message)
	return err
}
