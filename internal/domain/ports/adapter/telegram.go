// File: internal/domain/ports/adapter/telegram.go
package adapter

import "context"

type InlineButton struct {
	Text string
	Data string
	URL  string
}

const (
	ParseModeHTML     = "HTML"
	ParseModeMarkdown = "Markdown"
)

type SendMessageParams struct {
	ChatID    int64
	Text      string
	ParseMode string
	Buttons   [][]InlineButton
	// DisablePreview suppresses link previews.
	DisablePreview bool
}

type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, params SendMessageParams) error
}
