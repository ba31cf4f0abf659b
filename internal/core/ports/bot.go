package ports

import (
	"context"
)

// SendMessageParams holds the options for sending a chat message.
type SendMessageParams struct {
	ChatID    int64
	Text      string
	ParseMode string // e.g., "HTML" or "MarkdownV2"
}

// BotClientPort sends messages to a chat service.
// Bus consumers that forward events outside the process depend on this.
type BotClientPort interface {
	// SendMessage returns the id of the sent message.
	SendMessage(ctx context.Context, params SendMessageParams) (int, error)
}
