package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"roster-bot/internal/domain"
	"roster-bot/internal/infra/metrics"
)

// Poster отправляет тексты в групповой чат через Bot API.
type Poster struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewPoster создаёт отправителя для конкретного чата.
func NewPoster(bot *tgbotapi.BotAPI, chatID int64) *Poster {
	return &Poster{bot: bot, chatID: chatID}
}

var _ domain.ChatPoster = (*Poster)(nil)

// Post отправляет текст, при необходимости разбивая его на части.
func (p *Poster) Post(ctx context.Context, text string) error {
	for _, chunk := range SplitMessage(text) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := p.bot.Send(tgbotapi.NewMessage(p.chatID, chunk)); err != nil {
			metrics.BotSendErrors.Inc()
			return fmt.Errorf("отправка в чат: %w", err)
		}
	}
	return nil
}
