package telegram

import (
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"club-bridge/internal/domain/model"
)

// convertInbound turns a telegram update into an InboundMessage. ok is false
// for updates that carry no message from a user.
func convertInbound(update *tgbotapi.Update) (model.InboundMessage, bool, error) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return model.InboundMessage{}, false, nil
	}

	raw, err := json.Marshal(update)
	if err != nil {
		return model.InboundMessage{}, false, fmt.Errorf("telegram: marshal update %d: %w", update.UpdateID, err)
	}

	inbound := model.InboundMessage{
		SenderID: msg.From.ID,
		ChatID:   msg.Chat.ID,
		Text:     msg.Text,
		Raw:      raw,
	}
	if msg.ReplyToMessage != nil {
		inbound.ReplyTo = convertQuoted(msg.ReplyToMessage)
	}
	return inbound, true, nil
}

// convertQuoted keeps the quoted text and its entities. Media posts carry
// their text in the caption.
func convertQuoted(m *tgbotapi.Message) *model.QuotedMessage {
	text, entities := m.Text, m.Entities
	if text == "" && len(entities) == 0 {
		text, entities = m.Caption, m.CaptionEntities
	}
	q := &model.QuotedMessage{ID: m.MessageID, Text: text}
	for _, e := range entities {
		q.Entities = append(q.Entities, model.MessageEntity{Type: e.Type, URL: e.URL})
	}
	return q
}
