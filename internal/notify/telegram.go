package notify

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const telegramTimeout = 10 * time.Second

// Telegram posts decisions into a single operators chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *zap.Logger
}

// NewTelegram connects to the Bot API (getMe). endpoint may be empty for the public API.
func NewTelegram(token string, chatID int64, endpoint string, log *zap.Logger) (*Telegram, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: telegramTimeout})
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	log.Info("telegram bot authorized", zap.String("username", bot.Self.UserName))
	return &Telegram{bot: bot, chatID: chatID, log: log}, nil
}

func (t *Telegram) NotifyDecision(ctx context.Context, d Decision) error {
	if t == nil || t.chatID == 0 {
		return nil
	}
	msg := tgbotapi.NewMessage(t.chatID, formatDecision(d))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	err := sendWithContext(ctx, func() error {
		_, err := t.bot.Send(msg)
		return err
	})
	if err != nil {
		t.log.Warn("telegram send failed", zap.Int("record_id", d.RecordID), zap.Error(err))
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func formatDecision(d Decision) string {
	kind := "Пользователь"
	if d.Kind == KindVehicle {
		kind = "Транспорт"
	}
	status := "❌ отклонено"
	if d.Verified {
		status = "✅ подтверждено"
	}
	action := "новое решение"
	if d.Action == ActionUpdated {
		action = "решение изменено"
	}
	return fmt.Sprintf("<b>%s</b> #%d: %s\n%s: <code>%s</code>\nДействует с %s",
		kind, d.RecordID, action, status, html.EscapeString(d.Subject),
		d.WillActAt.Format("02.01.2006 15:04"))
}
