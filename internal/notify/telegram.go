package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier forwards new pending work to an admin chat so reviewers
// hear about submissions without watching the dashboard.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *slog.Logger
}

func NewTelegramNotifier(token string, chatID int64, log *slog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID, log: log}, nil
}

// Run consumes hub events until ctx is done.
func (n *TelegramNotifier) Run(ctx context.Context, hub *Hub) {
	for event := range hub.Subscribe(ctx) {
		text := n.render(event)
		if text == "" {
			continue
		}
		msg := tgbotapi.NewMessage(n.chatID, text)
		if _, err := n.bot.Send(msg); err != nil {
			n.log.Error("telegram notify failed", "error", err, "table", event.Table)
		}
	}
}

func (n *TelegramNotifier) render(event Event) string {
	if event.Action != "created" {
		return ""
	}
	switch event.Table {
	case "translation_requests":
		return fmt.Sprintf("New translation request #%d waiting in the queue", event.ID)
	case "recharge_records":
		return fmt.Sprintf("New recharge #%d waiting for review", event.ID)
	default:
		return ""
	}
}
