package ioutils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// reservedChars are removed from user supplied names before they become
// part of a path.
const reservedChars = `:/"*<>|?`

var reservedReplacer = strings.NewReplacer(
	":", "",
	"/", "",
	`"`, "",
	"*", "",
	"<", "",
	">", "",
	"|", "",
	"?", "",
)

// SanitizeFileName removes characters that are reserved in file and folder
// names.
//
// The removed set is : / " * < > | ?. Nothing else is changed, so the
// function is total and idempotent.
//
// Example:
//
//	SanitizeFileName("Song: Part 1/2")  // Returns "Song Part 12"
//	SanitizeFileName(`Who? "Me"`)       // Returns "Who Me"
func SanitizeFileName(name string) string {
	if !strings.ContainsAny(name, reservedChars) {
		return name
	}
	return reservedReplacer.Replace(name)
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x). The returned bool
// reports whether the directory had to be created. If the path exists but
// is not a directory an error is returned.
//
// Example:
//
//	created, err := EnsureDir("/music/Artist/Album")
//	// Creates /music, /music/Artist, and /music/Artist/Album if needed
func EnsureDir(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return false, fmt.Errorf("%s exists and is not a directory", path)
		}
		return false, nil
	case errors.Is(err, os.ErrNotExist):
	default:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return false, fmt.Errorf("create directory %s: %w", path, err)
	}

	return true, nil
}

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists, it is
// truncated before writing. Use it for small generated artifacts only;
// downloaded audio goes through the exclusive-create writer instead.
//
// Example:
//
//	playlistContent := []byte("#EXTM3U\n...")
//	err := WriteFile(ctx, "/music/playlist.m3u", playlistContent)
func WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
