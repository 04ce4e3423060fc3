package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/handiism/album-downloader/internal/config"
)

// ErrInvalidTrackList is returned for --track values that are not a comma
// separated list of positive integers.
var ErrInvalidTrackList = errors.New("invalid track list")

// applyFlags overrides settings with the flags given on the command line.
func applyFlags(cmd *cli.Command, s *config.Settings) error {
	if cmd.IsSet("path") {
		s.Download.Path = cmd.String("path")
	}
	if cmd.IsSet("fetches") {
		s.Download.Concurrency = cmd.Int("fetches")
	}
	if cmd.IsSet("timeout") {
		s.Download.Timeout.Duration = cmd.Duration("timeout")
	}
	if cmd.IsSet("log-level") {
		s.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		s.Log.Format = cmd.String("log-format")
	}
	if cmd.IsSet("report") {
		s.Report.Path = cmd.String("report")
	}
	if cmd.IsSet("playlist") {
		s.Playlist.Enabled = cmd.Bool("playlist")
	}
	if cmd.IsSet("tags") {
		s.Tags.Enabled = cmd.Bool("tags")
	}
	if cmd.Bool("no-cover") {
		s.Cover.Save = false
	}

	return s.Validate()
}

// parseTrackList parses "1,3,5". An empty value selects every track.
func parseTrackList(value string) ([]int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	parts := strings.Split(value, ",")
	numbers := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTrackList, part)
		}
		numbers = append(numbers, n)
	}

	return lo.Uniq(numbers), nil
}
