package tgbot

import (
	"context"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"clip2gif/internal/domain"
)

const defaultTimeout = time.Minute * 2

type API struct {
	bot      *tgbotapi.BotAPI
	debug    bool
	apiKey   string
	endpoint string
	chatID   int64
}

// New prepares a bot that sends to chatID. Nothing is sent to Telegram until
// the first SendFile call.
func New(debug bool, apiKey string, chatID int64) *API {
	return NewWithEndpoint(debug, apiKey, chatID, tgbotapi.APIEndpoint)
}

// NewWithEndpoint is New with a custom Bot API endpoint such as a self-hosted server.
func NewWithEndpoint(debug bool, apiKey string, chatID int64, endpoint string) *API {
	return &API{
		debug:    debug,
		apiKey:   apiKey,
		endpoint: endpoint,
		chatID:   chatID,
	}
}

// connect authenticates the bot with getMe on first use.
func (b *API) connect() error {
	if b.bot != nil {
		return nil
	}

	bot, err := tgbotapi.NewBotAPIWithClient(b.apiKey, b.endpoint, &http.Client{Timeout: defaultTimeout})
	if err != nil {
		return err
	}

	bot.Debug = b.debug
	b.bot = bot

	return nil
}

// SendFile uploads file as an animation with content as caption.
// The bot library has no context support, so ctx is only checked before the upload.
func (b *API) SendFile(ctx context.Context, file domain.File, content string) error {
	const errMsg = "BotAPI.SendFile"

	err := ctx.Err()
	if err != nil {
		return errors.Wrap(domain.NewError(domain.ErrDelivery, err), errMsg)
	}

	err = b.connect()
	if err != nil {
		return errors.Wrap(domain.NewError(domain.ErrDelivery, err), errMsg)
	}

	animation := tgbotapi.NewAnimation(b.chatID, tgbotapi.FileBytes{Name: file.Name, Bytes: file.Data})
	animation.Caption = content

	_, err = b.bot.Send(animation)
	if err != nil {
		return errors.Wrap(domain.NewError(domain.ErrDelivery, err), errMsg)
	}

	return nil
}
