package main

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/handiism/album-downloader/internal/model"
)

// printTracklist lists what a download would fetch and where it would go.
func printTracklist(w io.Writer, album *model.Album) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(album.Artist + " - " + album.Title)
	t.AppendHeader(table.Row{"#", "Title", "Source", "Destination"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
	})

	for i, task := range album.Tasks() {
		track := album.Tracks[i]
		t.AppendRow(table.Row{track.Number, track.Title, task.SourceURL, task.Path})
	}
	if album.HasArtwork() {
		t.AppendSeparator()
		t.AppendRow(table.Row{"", "cover", album.ArtworkURL, album.ArtworkPath})
	}

	t.AppendFooter(table.Row{"", "", "directory", album.Path})
	t.Render()
}
