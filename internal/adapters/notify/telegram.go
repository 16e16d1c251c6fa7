package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"photo-vote-bot/internal/domain"
)

// Telegram отправляет оператору сводку цикла в личный чат.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

var _ domain.Notifier = (*Telegram)(nil)

// NewTelegram создаёт уведомитель.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("инициализация бота: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// NotifyCycle шлёт короткую текстовую сводку завершённого цикла.
func (t *Telegram) NotifyCycle(ctx context.Context, report domain.CycleReport) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatReport(report))
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("отправка сводки: %w", err)
	}
	return nil
}

// FormatReport строит текст сводки цикла.
func FormatReport(report domain.CycleReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Цикл %s: челленджей %d, голосов %d, бустов %d",
		shortID(report.ID), len(report.Outcomes), report.Voted(), report.Boosted())
	if failed := report.Failed(); failed > 0 {
		fmt.Fprintf(&b, ", ошибок %d", failed)
	}
	for _, o := range report.Outcomes {
		if o.Err == "" {
			continue
		}
		fmt.Fprintf(&b, "\n— %s (%d): %s", o.Title, o.ChallengeID, o.Err)
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
