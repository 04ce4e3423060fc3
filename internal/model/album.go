package model

import (
	"path/filepath"

	"github.com/samber/lo"

	ioutils "github.com/handiism/album-downloader/internal/io"
)

// DefaultArtist is used when an album page does not name its artist.
const DefaultArtist = "VA"

// Album represents an album page with its metadata and tracks.
//
// Artist, Title and track titles are kept as extracted; they are sanitized
// only when they become part of a path. Paths are computed once by NewAlbum.
type Album struct {
	// Artist is the album artist name.
	Artist string

	// Title is the album title.
	Title string

	// ArtworkURL is the absolute URL of the album cover.
	// Empty string means no artwork is available.
	ArtworkURL string

	// Tracks contains the tracks in page order.
	Tracks []*Track

	// Path is the local directory the album is saved into:
	// <downloads>/<artist>/<album>.
	Path string

	// ArtworkPath is the local file path for the cover art.
	// Empty if the album has no artwork.
	ArtworkPath string

	// PlaylistPath is the local file path for the playlist file.
	PlaylistPath string
}

// PathConfig holds path settings for albums.
type PathConfig struct {
	// DownloadsPath is the base directory albums are saved under.
	DownloadsPath string

	// CoverArtFileName is the cover file name without extension.
	CoverArtFileName string

	// PlaylistFormat determines the playlist file type and extension.
	PlaylistFormat PlaylistFormat
}

// NewAlbum creates a new Album with computed paths.
//
// An empty artist falls back to DefaultArtist. Artist and title are
// sanitized before they are joined into Path.
func NewAlbum(artist, title, artworkURL string, cfg *PathConfig) *Album {
	album := &Album{
		Artist:     lo.Ternary(artist == "", DefaultArtist, artist),
		Title:      title,
		ArtworkURL: artworkURL,
	}

	album.Path = filepath.Join(
		cfg.DownloadsPath,
		ioutils.SanitizeFileName(album.Artist),
		ioutils.SanitizeFileName(album.Title),
	)
	album.PlaylistPath = filepath.Join(album.Path, ioutils.SanitizeFileName(album.Title)+cfg.PlaylistFormat.Extension())
	if album.HasArtwork() {
		album.ArtworkPath = filepath.Join(album.Path, lo.Ternary(cfg.CoverArtFileName == "", "cover", cfg.CoverArtFileName)+".jpg")
	}

	return album
}

// HasArtwork returns true if the album has cover art available for download.
func (a *Album) HasArtwork() bool {
	return a.ArtworkURL != ""
}

// Select keeps only the tracks whose numeric sequence number is listed.
// An empty list keeps every track. Order is preserved.
func (a *Album) Select(numbers []int) {
	if len(numbers) == 0 {
		return
	}

	a.Tracks = lo.Filter(a.Tracks, func(t *Track, _ int) bool {
		n, ok := t.Position()
		return ok && lo.Contains(numbers, n)
	})
}

// Tasks derives one download task per track, in tracklist order.
func (a *Album) Tasks() []Task {
	return lo.Map(a.Tracks, func(t *Track, _ int) Task {
		return Task{
			SourceURL: t.SourceURL,
			Path:      filepath.Join(a.Path, t.FileName()),
		}
	})
}

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// PlaylistFormatM3U creates .m3u playlist files (most widely supported).
	PlaylistFormatM3U PlaylistFormat = iota

	// PlaylistFormatPLS creates .pls playlist files (used by Winamp).
	PlaylistFormatPLS

	// PlaylistFormatWPL creates .wpl playlist files (Windows Media Player).
	PlaylistFormatWPL

	// PlaylistFormatZPL creates .zpl playlist files (Zune Media Player).
	PlaylistFormatZPL
)

// ParsePlaylistFormat maps a configuration value to a PlaylistFormat.
// Unknown values map to M3U.
func ParsePlaylistFormat(s string) PlaylistFormat {
	switch s {
	case "pls":
		return PlaylistFormatPLS
	case "wpl":
		return PlaylistFormatWPL
	case "zpl":
		return PlaylistFormatZPL
	default:
		return PlaylistFormatM3U
	}
}

// Extension returns the file extension for the playlist format, including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case PlaylistFormatM3U:
		return ".m3u"
	case PlaylistFormatPLS:
		return ".pls"
	case PlaylistFormatWPL:
		return ".wpl"
	case PlaylistFormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}
