package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"clip2gif/internal/app"
	"clip2gif/internal/config"
	"clip2gif/internal/handler/media"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	if err != nil {
		slog.Error("clip2gif failed", slog.Any("err", err))

		return 1
	}

	return 0
}

func newRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "clip2gif [clip-id-or-url]",
		Short: "Convert a Twitch clip to a GIF and post it to a Discord webhook",
		Long: `clip2gif looks up a Twitch clip, converts it to an animated GIF with ffmpeg
and uploads the result to a Discord webhook.

The clip can be given as an argument or through TWITCH_CLIP_ID / TWITCH_CLIP_URL.
Credentials and GIF settings are read from the environment and an optional .env file.

Examples:
  clip2gif https://clips.twitch.tv/AbCd123
  clip2gif --env-file ./config/app.env AbCd123`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfig(envFile)
			if err != nil {
				return errors.Wrap(err, media.StageLoadConfig.String())
			}

			slog.SetDefault(app.NewLogger(cfg.Debug, os.Stderr))

			a, err := app.New(cfg)
			if err != nil {
				return err
			}

			var input string
			if len(args) > 0 {
				input = args[0]
			}

			return a.Run(cmd.Context(), input)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "Path to an optional dotenv file")

	return cmd
}
