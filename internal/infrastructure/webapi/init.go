package webapi

import (
	"clip2gif/internal/config"
	"clip2gif/internal/infrastructure/webapi/discord"
	"clip2gif/internal/infrastructure/webapi/tgbot"
	"clip2gif/internal/infrastructure/webapi/twitch"
)

type WebAPIs struct {
	Twitch   *twitch.API
	Discord  *discord.API
	Telegram *tgbot.API // nil unless the Telegram mirror is configured
}

// New builds the clients without touching the network.
func New(cfg *config.Config) (*WebAPIs, error) {
	apis := &WebAPIs{
		Twitch:  twitch.New(cfg.Twitch.ClientID, cfg.Twitch.ClientSecret, cfg.Twitch.AuthURL, cfg.Twitch.APIBaseURL),
		Discord: discord.New(cfg.Discord.WebhookURL, cfg.Discord.Username),
	}

	if cfg.TelegramEnabled() {
		apis.Telegram = tgbot.New(cfg.Debug, cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}

	return apis, nil
}
