package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/album-downloader/internal/model"
)

func TestTagger_SaveTags(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "03 - Song.mp3")
	audioData := []byte("not really mpeg audio, but id3v2 only cares about the tag")
	require.NoError(t, os.WriteFile(path, audioData, 0o644))

	album := model.NewAlbum("Artist", "Album", "", &model.PathConfig{DownloadsPath: "/music"})
	track := model.NewTrack("3", "Song", "https://example.com/song.mp3")
	cover := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}

	require.NoError(t, NewTagger(nil).SaveTags(path, track, album, cover))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()

	assert.Equal(t, "Artist", tag.Artist())
	assert.Equal(t, "Album", tag.Album())
	assert.Equal(t, "Song", tag.Title())
	assert.Equal(t, "3", tag.GetTextFrame("TRCK").Text)
	assert.Equal(t, "Artist", tag.GetTextFrame("TPE2").Text)

	pictures := tag.GetFrames(tag.CommonID("Attached picture"))
	require.Len(t, pictures, 1)
	pic, ok := pictures[0].(id3v2.PictureFrame)
	require.True(t, ok)
	assert.Equal(t, cover, pic.Picture)
	assert.Equal(t, byte(id3v2.PTFrontCover), pic.PictureType)
}

func TestTagger_SaveTags_DoNotModify(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "01 - Song.mp3")
	// id3v2 reads a 10 byte header before it can tell there is no tag.
	require.NoError(t, os.WriteFile(path, []byte("untagged mpeg audio"), 0o644))

	album := model.NewAlbum("Artist", "Album", "", &model.PathConfig{DownloadsPath: "/music"})
	track := model.NewTrack("1", "Song", "https://example.com/song.mp3")

	cfg := DefaultTagConfig()
	cfg.Artist = TagDoNotModify
	require.NoError(t, NewTagger(cfg).SaveTags(path, track, album, nil))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()

	assert.Empty(t, tag.Artist())
	assert.Equal(t, "Song", tag.Title())
	assert.Empty(t, tag.GetFrames(tag.CommonID("Attached picture")))
}

func TestTagger_SaveTags_MissingFile(t *testing.T) {
	t.Parallel()

	album := model.NewAlbum("Artist", "Album", "", &model.PathConfig{DownloadsPath: "/music"})
	track := model.NewTrack("1", "Song", "https://example.com/song.mp3")

	err := NewTagger(nil).SaveTags(filepath.Join(t.TempDir(), "missing.mp3"), track, album, nil)
	require.ErrorIs(t, err, os.ErrNotExist)
}
