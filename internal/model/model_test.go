package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPathConfig() *PathConfig {
	return &PathConfig{
		DownloadsPath:    "/music",
		CoverArtFileName: "cover",
		PlaylistFormat:   PlaylistFormatM3U,
	}
}

func TestAlbum_PathComputation(t *testing.T) {
	t.Parallel()

	album := NewAlbum("AC/DC", `Live: "1992"`, "https://example.com/art.jpg", testPathConfig())

	assert.Equal(t, filepath.Join("/music", "ACDC", "Live 1992"), album.Path)
	assert.Equal(t, filepath.Join(album.Path, "cover.jpg"), album.ArtworkPath)
	assert.Equal(t, filepath.Join(album.Path, "Live 1992.m3u"), album.PlaylistPath)
	assert.Equal(t, "AC/DC", album.Artist, "metadata keeps the original text")
}

func TestAlbum_NoArtwork(t *testing.T) {
	t.Parallel()

	album := NewAlbum("Artist", "Album", "", testPathConfig())

	assert.False(t, album.HasArtwork())
	assert.Empty(t, album.ArtworkPath)
}

func TestAlbum_DefaultArtist(t *testing.T) {
	t.Parallel()

	album := NewAlbum("", "Compilation", "", testPathConfig())

	assert.Equal(t, DefaultArtist, album.Artist)
	assert.Equal(t, filepath.Join("/music", "VA", "Compilation"), album.Path)
}

func TestNewTrack_Padding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"1", "01"},
		{"9", "09"},
		{"10", "10"},
		{"101", "101"},
		{"", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NewTrack(tt.in, "x", "").Number)
		})
	}
}

func TestTrack_FileName(t *testing.T) {
	t.Parallel()

	track := NewTrack("3", "What? No/Way", "https://example.com/3.mp3")
	assert.Equal(t, "03 - What NoWay.mp3", track.FileName())
}

func TestAlbum_Tasks(t *testing.T) {
	t.Parallel()

	album := NewAlbum("Artist", "Album", "", testPathConfig())
	album.Tracks = []*Track{
		NewTrack("1", "One", "https://example.com/1.mp3"),
		NewTrack("2", "Two", "https://example.com/2.mp3"),
	}

	tasks := album.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, Task{
		SourceURL: "https://example.com/1.mp3",
		Path:      filepath.Join("/music", "Artist", "Album", "01 - One.mp3"),
	}, tasks[0])
	assert.Equal(t, filepath.Join("/music", "Artist", "Album", "02 - Two.mp3"), tasks[1].Path)
}

func TestAlbum_Select(t *testing.T) {
	t.Parallel()

	album := NewAlbum("Artist", "Album", "", testPathConfig())
	album.Tracks = []*Track{
		NewTrack("1", "One", ""),
		NewTrack("2", "Two", ""),
		NewTrack("3", "Three", ""),
	}

	album.Select([]int{3, 1})

	require.Len(t, album.Tracks, 2)
	assert.Equal(t, "01", album.Tracks[0].Number)
	assert.Equal(t, "03", album.Tracks[1].Number)
}

func TestAlbum_SelectEmptyKeepsAll(t *testing.T) {
	t.Parallel()

	album := NewAlbum("Artist", "Album", "", testPathConfig())
	album.Tracks = []*Track{NewTrack("1", "One", ""), NewTrack("2", "Two", "")}

	album.Select(nil)

	assert.Len(t, album.Tracks, 2)
}

func TestPlaylistFormat_Extension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format PlaylistFormat
		want   string
	}{
		{PlaylistFormatM3U, ".m3u"},
		{PlaylistFormatPLS, ".pls"},
		{PlaylistFormatWPL, ".wpl"},
		{PlaylistFormatZPL, ".zpl"},
		{ParsePlaylistFormat("bogus"), ".m3u"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.format.Extension())
		})
	}
}
