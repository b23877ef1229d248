package model

import "encoding/json"

// EntityTextLink is the chat entity type carrying an explicit URL.
const EntityTextLink = "text_link"

// MessageEntity is a rich-text span inside a chat message.
type MessageEntity struct {
	Type string
	URL  string
}

// QuotedMessage is the message a user replied to.
type QuotedMessage struct {
	ID       int
	Text     string
	Entities []MessageEntity
}

// InboundMessage is a chat message normalised away from the telegram SDK types.
type InboundMessage struct {
	SenderID int64
	ChatID   int64
	Text     string
	ReplyTo  *QuotedMessage
	Raw      json.RawMessage
}
