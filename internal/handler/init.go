package handler

import (
	"clip2gif/internal/config"
	"clip2gif/internal/handler/media"
	"clip2gif/internal/infrastructure/webapi"
	"clip2gif/internal/service"
)

type Handlers struct {
	Media *media.Handler
}

func New(cfg *config.Config, apis *webapi.WebAPIs, services *service.Services) *Handlers {
	notifiers := []media.Notifier{apis.Discord}
	if apis.Telegram != nil {
		notifiers = append(notifiers, apis.Telegram)
	}

	mediaH := media.New(&media.InitParams{
		Config:    cfg,
		Platform:  apis.Twitch,
		Converter: services.Media,
		Notifiers: notifiers,
	})

	handlers := &Handlers{
		Media: mediaH,
	}

	return handlers
}
