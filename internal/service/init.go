package service

import (
	"clip2gif/internal/config"
	"clip2gif/internal/service/media"
)

type Services struct {
	Media *media.Converter
}

func New(cfg *config.Config) *Services {
	return &Services{
		Media: media.NewMediaConverter(cfg.FFmpegPath),
	}
}
