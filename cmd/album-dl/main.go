package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/handiism/album-downloader/internal/config"
	"github.com/handiism/album-downloader/internal/download"
	"github.com/handiism/album-downloader/internal/log"
	"github.com/handiism/album-downloader/internal/report"
)

const (
	exitFatal       = 1
	exitUsage       = 2
	exitFetch       = 3
	exitInterrupted = 130
)

func main() {
	logger := log.NewDefault()

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		var exitCode exitCodeError
		if errors.As(err, &exitCode) {
			os.Exit(int(exitCode))
		}

		logger.Error().Err(err).Msg("Application exited with error")
		os.Exit(exitUsage)
	}
}

func newCommand() *cli.Command {
	//nolint:exhaustruct
	return &cli.Command{
		Name:      "album-dl",
		Usage:     "Download every track of an album page",
		ArgsUsage: "<album-url>",
		Suggest:   true,
		Flags: []cli.Flag{
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (album-dl.yaml is used when present)",
			},
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "Base download directory; tracks go to <path>/<artist>/<album>",
			},
			&cli.StringFlag{
				Name:    "track",
				Aliases: []string{"t"},
				Usage:   "Comma separated track numbers to download, e.g. 1,3,5",
			},
			&cli.IntFlag{
				Name:    "fetches",
				Aliases: []string{"f"},
				Usage:   "Number of tracks downloaded at the same time",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Deadline for each file, 0 disables it",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "pretty, json or auto",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write a JSON run report to this file",
			},
			&cli.BoolFlag{
				Name:  "playlist",
				Usage: "Create a playlist in the album directory",
			},
			&cli.BoolFlag{
				Name:  "tags",
				Usage: "Write ID3 tags into downloaded tracks",
			},
			&cli.BoolFlag{
				Name:  "no-cover",
				Usage: "Do not save the album cover",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Show a progress bar per file",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the tracklist without downloading",
			},
			&cli.StringFlag{
				Name:  "save-config",
				Usage: "Write the effective settings to this YAML file",
			},
		},
		Action: run,
	}
}

type exitCodeError int

func (e exitCodeError) Error() string {
	return "error with exit code: " + strconv.Itoa(int(e))
}

func run(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.NewDefault()

	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Error().Err(err).Msg("Failed to load .env file")
			return exitCodeError(exitUsage)
		}
		logger.Debug().Msg(".env file was not found")
	} else {
		logger.Debug().Msg(".env file was loaded")
	}

	if cmd.Args().Len() != 1 {
		logger.Error().Int("args", cmd.Args().Len()).Msg("Exactly one album URL is required")
		return exitCodeError(exitUsage)
	}
	albumURL := cmd.Args().First()

	settings, err := config.Load(cmd.String("config"))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load config")
		return exitCodeError(exitUsage)
	}

	if err := applyFlags(cmd, settings); err != nil {
		logger.Error().Err(err).Msg("Invalid options")
		return exitCodeError(exitUsage)
	}

	selection, err := parseTrackList(cmd.String("track"))
	if err != nil {
		logger.Error().Err(err).Msg("Invalid track list")
		return exitCodeError(exitUsage)
	}

	if path := cmd.String("save-config"); path != "" {
		if err := settings.Save(path); err != nil {
			logger.Error().Err(err).Str("path", path).Msg("Failed to save config")
			return exitCodeError(exitUsage)
		}
		logger.Info().Str("path", path).Msg("Config saved")
	}

	var (
		bars   *progressBars
		logOut io.Writer = os.Stderr
	)
	if cmd.Bool("progress") && !cmd.Bool("dry-run") {
		if settings.Log.Format == "auto" && isatty.IsTerminal(os.Stderr.Fd()) {
			settings.Log.Format = "pretty"
		}
		bars = newProgressBars(ctx, os.Stderr)
		defer bars.shutdown()
		logOut = bars
	}

	runLogger, err := log.FromConfig(settings.Log, logOut)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create logger")
		return exitCodeError(exitUsage)
	}
	logger = runLogger

	runID := uuid.NewString()
	logger = logger.With().Str("run_id", runID).Logger()
	logger.Debug().Dict("config", settings.ToDict()).Msg("Config loaded")

	var hooks download.Hooks
	if bars != nil {
		hooks.OnProgress = bars.update
		hooks.OnOutcome = bars.finish
	}

	startedAt := time.Now()
	manager := download.NewManager(settings, logger, hooks)

	album, err := manager.Initialize(ctx, albumURL, selection)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn().Msg("Interrupted")
			return exitCodeError(exitInterrupted)
		}

		logger.Error().Err(err).Str("url", albumURL).Msg("Failed to load album page")
		writeReport(logger, settings, report.FromResult(runID, albumURL, startedAt, nil, err))
		return exitCodeError(exitFetch)
	}

	if cmd.Bool("dry-run") {
		printTracklist(os.Stdout, album)
		return nil
	}

	res, err := manager.Download(ctx)

	if bars != nil {
		bars.shutdown()
	}

	summary := report.FromResult(runID, albumURL, startedAt, res, err)
	summary.Render(os.Stdout)
	writeReport(logger, settings, summary)

	switch {
	case err == nil:
		logger.
			Info().
			Str("path", album.Path).
			Int("downloaded", summary.Counts[download.KindDownloaded.String()]).
			Int("skipped", summary.Skipped()).
			Msg("Album finished")
		return nil
	case ctx.Err() != nil:
		logger.Warn().Err(err).Msg("Interrupted")
		return exitCodeError(exitInterrupted)
	default:
		logger.Error().Err(err).Msg("Download aborted")
		return exitCodeError(exitFatal)
	}
}

func writeReport(logger zerolog.Logger, settings *config.Settings, summary *report.Summary) {
	if settings.Report.Path == "" {
		return
	}

	if err := summary.WriteJSON(settings.Report.Path); err != nil {
		logger.Error().Err(err).Str("report", settings.Report.Path).Msg("Failed to write report")
		return
	}
	logger.Debug().Str("report", settings.Report.Path).Msg("Report written")
}
