package telegram

import (
	"TopicBus/internal/core/ports"
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// tgClient implements the BotClientPort.
type tgClient struct {
	api *tgbotapi.BotAPI
	log zerolog.Logger
}

// NewClient creates a new Telegram client adapter.
func NewClient(api *tgbotapi.BotAPI, baseLogger *zerolog.Logger) ports.BotClientPort {
	log := baseLogger.With().Str("component", "tg_client").Logger()
	return &tgClient{api: api, log: log}
}

// NewBotAPI connects to Telegram with token.
func NewBotAPI(token string, baseLogger *zerolog.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		baseLogger.Error().Err(err).Msg("Failed to connect to Telegram")
		return nil, err
	}
	baseLogger.Info().Str("bot_username", api.Self.UserName).Msg("Connected to Telegram")
	return api, nil
}

// SendMessage translates our params into a tgbotapi message.
func (c *tgClient) SendMessage(ctx context.Context, params ports.SendMessageParams) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	msg := tgbotapi.NewMessage(params.ChatID, params.Text)
	msg.ParseMode = params.ParseMode

	sent, err := c.api.Send(msg)
	if err != nil {
		c.log.Error().Err(err).Int64("chat_id", params.ChatID).Msg("Failed to send message")
		return 0, err
	}
	return sent.MessageID, nil
}
