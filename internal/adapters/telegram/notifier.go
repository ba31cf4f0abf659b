package telegram

import (
	"TopicBus/internal/bot/messages"
	"TopicBus/internal/core/ports"
	"TopicBus/internal/news"
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// NewsNotifier forwards news published on the bus to a Telegram chat.
type NewsNotifier struct {
	client ports.BotClientPort
	chatID int64
	log    zerolog.Logger
}

var _ ports.Handler = (*NewsNotifier)(nil)

// NewNewsNotifier creates a notifier posting into chatID.
func NewNewsNotifier(client ports.BotClientPort, chatID int64, baseLogger *zerolog.Logger) *NewsNotifier {
	return &NewsNotifier{
		client: client,
		chatID: chatID,
		log:    baseLogger.With().Str("component", "news_notifier").Int64("chat_id", chatID).Logger(),
	}
}

// Handle implements ports.Handler. Events that do not carry news are skipped.
func (n *NewsNotifier) Handle(ctx context.Context, event ports.Event) error {
	item, ok := event.Payload.(news.News)
	if !ok {
		n.log.Warn().Str("topic", event.Topic).Msgf("Skipping event with payload %T", event.Payload)
		return nil
	}

	params := messages.NewBuilder(n.chatID).
		WithBold(item.Domain).
		WithLine(item.Content).
		WithField("From", item.Agency).
		Build()

	messageID, err := n.client.SendMessage(ctx, params)
	if err != nil {
		return fmt.Errorf("forward news %s: %w", item.ID, err)
	}

	n.log.Info().
		Str("news_id", item.ID.String()).
		Int("message_id", messageID).
		Msg("News forwarded to Telegram")
	return nil
}
