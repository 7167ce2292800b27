package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"clip2gif/internal/config"
	"clip2gif/internal/handler"
	"clip2gif/internal/infrastructure/webapi"
	"clip2gif/internal/service"
)

type App struct {
	cfg      *config.Config
	handlers *handler.Handlers
}

func New(cfg *config.Config) (*App, error) {
	webAPI, err := webapi.New(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "App.New")
	}

	services := service.New(cfg)

	handlers := handler.New(cfg, webAPI, services)

	return &App{
		cfg:      cfg,
		handlers: handlers,
	}, nil
}

// Run processes a single clip. SIGINT and SIGTERM cancel the run, which also
// kills a running ffmpeg.
func (a *App) Run(ctx context.Context, input string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.handlers.Media.ProcessClip(ctx, input)
}
