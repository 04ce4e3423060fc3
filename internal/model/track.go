package model

import (
	"strconv"

	ioutils "github.com/handiism/album-downloader/internal/io"
)

// Track represents a single track within an album.
type Track struct {
	// Number is the zero-padded sequence number as shown on the page,
	// at least two characters wide ("01", "12", "101").
	Number string

	// Title is the track title.
	Title string

	// SourceURL is the absolute URL of the audio file.
	SourceURL string
}

// NewTrack creates a new Track, left-padding number to two characters.
func NewTrack(number, title, sourceURL string) *Track {
	if len(number) < 2 {
		number = "0" + number
	}

	return &Track{
		Number:    number,
		Title:     title,
		SourceURL: sourceURL,
	}
}

// Position returns the numeric value of the sequence number.
func (t *Track) Position() (int, bool) {
	n, err := strconv.Atoi(t.Number)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FileName returns "<number> - <sanitized title>.mp3".
// The sequence number is never sanitized.
func (t *Track) FileName() string {
	return t.Number + " - " + ioutils.SanitizeFileName(t.Title) + ".mp3"
}
