// Package report summarizes a download run as a terminal table and as a
// JSON document.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/handiism/album-downloader/internal/download"
)

// Entry is the outcome of one file.
type Entry struct {
	Index      int    `json:"index"`
	Kind       string `json:"kind"`
	URL        string `json:"url"`
	Path       string `json:"path"`
	StatusCode int    `json:"status_code,omitempty"`
	Bytes      int64  `json:"bytes,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Summary describes one run.
type Summary struct {
	RunID      string         `json:"run_id"`
	AlbumURL   string         `json:"album_url"`
	Artist     string         `json:"artist"`
	Album      string         `json:"album"`
	Directory  string         `json:"directory"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Counts     map[string]int `json:"counts"`
	Tracks     []Entry        `json:"tracks"`
	Cover      *Entry         `json:"cover,omitempty"`

	// Error is the cause that stopped the run early, if any.
	Error string `json:"error,omitempty"`
}

// FromResult builds the summary of a run. res may be nil when the run
// failed before the album was known.
func FromResult(runID, albumURL string, startedAt time.Time, res *download.Result, runErr error) *Summary {
	s := &Summary{
		RunID:      runID,
		AlbumURL:   albumURL,
		StartedAt:  startedAt.UTC(),
		FinishedAt: time.Now().UTC(),
		Counts:     make(map[string]int, len(download.Kinds)),
		Tracks:     []Entry{},
	}
	for _, kind := range download.Kinds {
		s.Counts[kind.String()] = 0
	}
	if runErr != nil {
		s.Error = runErr.Error()
	}
	if res == nil {
		return s
	}

	if res.Album != nil {
		s.Artist = res.Album.Artist
		s.Album = res.Album.Title
		s.Directory = res.Album.Path
	}

	for i, out := range res.Tracks {
		s.Tracks = append(s.Tracks, newEntry(i, out))
		s.Counts[out.Kind.String()]++
	}

	if res.Cover != nil {
		e := newEntry(len(res.Tracks), *res.Cover)
		s.Cover = &e
		s.Counts[res.Cover.Kind.String()]++
	}

	return s
}

func newEntry(index int, out download.Outcome) Entry {
	e := Entry{
		Index:      index,
		Kind:       out.Kind.String(),
		URL:        out.Task.SourceURL,
		Path:       out.Task.Path,
		StatusCode: out.StatusCode,
		Bytes:      out.Bytes,
	}
	if out.Err != nil {
		e.Error = out.Err.Error()
	}
	return e
}

// Render writes the summary as a table, one row per file.
func (s *Summary) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("%s - %s", s.Artist, s.Album))
	t.AppendHeader(table.Row{"#", "File", "Outcome", "Details"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, WidthMax: 60},
	})

	for _, e := range s.Tracks {
		t.AppendRow(table.Row{e.Index + 1, filepath.Base(e.Path), e.Kind, details(e)})
	}
	if s.Cover != nil {
		t.AppendSeparator()
		t.AppendRow(table.Row{"", filepath.Base(s.Cover.Path), s.Cover.Kind, details(*s.Cover)})
	}

	t.AppendFooter(table.Row{"", "", "downloaded", s.Counts[download.KindDownloaded.String()]})
	t.AppendFooter(table.Row{"", "", "skipped", s.Skipped()})
	t.AppendFooter(table.Row{"", "", "fatal", s.Counts[download.KindFatal.String()]})
	t.Render()

	if s.Error != "" {
		fmt.Fprintf(w, "Run stopped: %s\n", s.Error)
	}
}

// Skipped returns the number of skipped files of every kind.
func (s *Summary) Skipped() int {
	return s.Counts[download.KindSkippedExisting.String()] +
		s.Counts[download.KindSkippedNotFound.String()] +
		s.Counts[download.KindSkippedHTTPError.String()]
}

func details(e Entry) string {
	switch {
	case e.Error != "":
		return e.Error
	case e.StatusCode != 0 && e.Kind == download.KindSkippedHTTPError.String():
		return "HTTP " + strconv.Itoa(e.StatusCode)
	case e.Bytes > 0:
		return fmt.Sprintf("% .1f", decor.SizeB1024(e.Bytes))
	default:
		return ""
	}
}

// WriteJSON writes the summary to path, replacing any previous report.
// A partially written report is removed.
func (s *Summary) WriteJSON(path string) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open report file for write: %w", err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			if removeErr := os.Remove(path); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
				err = errors.Join(err, fmt.Errorf("failed to remove incomplete report file: %w", removeErr))
			}
			return
		}
		if closeErr := f.Close(); closeErr != nil {
			err = fmt.Errorf("failed to close report file: %w", closeErr)
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to write report content: %w", err)
	}

	return nil
}
