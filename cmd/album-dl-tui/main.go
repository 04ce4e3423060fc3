package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/handiism/album-downloader/internal/config"
	"github.com/handiism/album-downloader/internal/log"
	"github.com/handiism/album-downloader/internal/tui"
)

func main() {
	logger := log.NewDefault()

	//nolint:exhaustruct
	app := &cli.Command{
		Name:  "album-dl-tui",
		Usage: "Interactive album downloader",
		Flags: []cli.Flag{
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (album-dl.yaml is used when present)",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write JSON logs to this file, the screen belongs to the UI",
			},
		},
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Error().Err(err).Msg("Application exited with error")
		os.Exit(1)
	}
}

func run(_ context.Context, cmd *cli.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	settings, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	logger := zerolog.Nop()
	if path := cmd.String("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()

		conf := settings.Log
		conf.Format = "json"
		if logger, err = log.FromConfig(conf, f); err != nil {
			return err
		}
	}

	return tui.Run(settings, logger)
}
