package audio

import (
	"fmt"
	"strconv"

	"github.com/bogem/id3v2"

	"github.com/handiism/album-downloader/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
type TagEditAction int

const (
	// TagEmpty clears the tag value.
	TagEmpty TagEditAction = iota

	// TagModify updates the tag with the value from the album page.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each ID3 field.
//
//	cfg := &TagConfig{
//	    Artist:      TagModify,
//	    Album:       TagModify,
//	    TrackTitle:  TagModify,
//	    Comments:    TagEmpty,
//	    AlbumArtist: TagDoNotModify,
//	}
type TagConfig struct {
	// Artist controls the TPE1 (Lead artist) frame.
	Artist TagEditAction

	// AlbumArtist controls the TPE2 (Album artist) frame.
	AlbumArtist TagEditAction

	// Album controls the TALB (Album title) frame.
	Album TagEditAction

	// TrackNumber controls the TRCK (Track number) frame.
	TrackNumber TagEditAction

	// TrackTitle controls the TIT2 (Title) frame.
	TrackTitle TagEditAction

	// Comments controls the COMM (Comments) frame.
	Comments TagEditAction
}

// DefaultTagConfig returns the default tag configuration: every field is
// modified except comments, which are cleared.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		Artist:      TagModify,
		AlbumArtist: TagModify,
		Album:       TagModify,
		TrackNumber: TagModify,
		TrackTitle:  TagModify,
		Comments:    TagEmpty,
	}
}

// Tagger writes ID3 tags to MP3 files.
//
//	tagger := NewTagger(DefaultTagConfig())
//	err := tagger.SaveTags(path, track, album, coverBytes)
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes ID3 tags for track into the MP3 file at path.
//
// artwork, when not nil, replaces any attached front cover. It must be
// JPEG data.
func (t *Tagger) SaveTags(path string, track *model.Track, album *model.Album, artwork []byte) (err error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("read tags of %s: %w", path, err)
	}
	defer func() {
		if closeErr := tag.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	t.updateStringTags(tag, track, album)

	if artwork != nil {
		t.updateArtwork(tag, artwork)
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tags of %s: %w", path, err)
	}
	return nil
}

func (t *Tagger) updateStringTags(tag *id3v2.Tag, track *model.Track, album *model.Album) {
	switch t.config.Artist {
	case TagEmpty:
		tag.SetArtist("")
	case TagModify:
		tag.SetArtist(album.Artist)
	case TagDoNotModify:
	}

	switch t.config.Album {
	case TagEmpty:
		tag.SetAlbum("")
	case TagModify:
		tag.SetAlbum(album.Title)
	case TagDoNotModify:
	}

	switch t.config.TrackNumber {
	case TagEmpty:
		tag.DeleteFrames("TRCK")
	case TagModify:
		if n, ok := track.Position(); ok {
			tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, strconv.Itoa(n))
		}
	case TagDoNotModify:
	}

	switch t.config.TrackTitle {
	case TagEmpty:
		tag.SetTitle("")
	case TagModify:
		tag.SetTitle(track.Title)
	case TagDoNotModify:
	}

	switch t.config.AlbumArtist {
	case TagEmpty:
		tag.DeleteFrames("TPE2")
	case TagModify:
		tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, album.Artist)
	case TagDoNotModify:
	}

	switch t.config.Comments {
	case TagEmpty:
		tag.DeleteFrames(tag.CommonID("Comments"))
	case TagModify, TagDoNotModify:
	}
}

// updateArtwork embeds cover art as the front cover picture frame.
func (t *Tagger) updateArtwork(tag *id3v2.Tag, artwork []byte) {
	tag.DeleteFrames(tag.CommonID("Attached picture"))

	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	})
}
