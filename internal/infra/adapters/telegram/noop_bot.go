package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"club-bridge/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.TelegramBotAdapter for local/dev runs.
// It logs messages instead of sending real Telegram messages.
type NoopBotAdapter struct {
	logger *zerolog.Logger
}

func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	l := logger.With().Str("component", "NoopBot").Logger()
	return &NoopBotAdapter{logger: &l}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, params adapter.SendMessageParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.logger.Info().
		Int64("chat_id", params.ChatID).
		Str("parse_mode", params.ParseMode).
		Int("button_rows", len(params.Buttons)).
		Msg(params.Text)
	return nil
}
