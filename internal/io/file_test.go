package ioutils_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ioutils "github.com/handiism/album-downloader/internal/io"
)

func TestSanitizeFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"normal-file", "normal-file"},
		{"file:with:colons", "filewithcolons"},
		{"file<with>brackets", "filewithbrackets"},
		{"AC/DC", "ACDC"},
		{"file|with|pipes", "filewithpipes"},
		{"file?with*wildcards", "filewithwildcards"},
		{`file"with"quotes`, "filewithquotes"},
		{`back\slash stays`, `back\slash stays`},
		{"  spaces are kept  ", "  spaces are kept  "},
		{"", ""},
		{`:/"*<>|?`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got := ioutils.SanitizeFileName(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, ioutils.SanitizeFileName(got), "must be idempotent")
		})
	}
}

func TestEnsureDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := filepath.Join(root, "Artist", "Album")

	created, err := ioutils.EnsureDir(dir)
	require.NoError(t, err)
	assert.True(t, created)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	created, err = ioutils.EnsureDir(dir)
	require.NoError(t, err)
	assert.False(t, created, "second call must be a no-op")
}

func TestEnsureDir_FileInTheWay(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := ioutils.EnsureDir(path)
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "list.m3u")
	require.NoError(t, ioutils.WriteFile(context.Background(), path, []byte("a\n")))
	require.NoError(t, ioutils.WriteFile(context.Background(), path, []byte("b\n")))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "b\n", string(b))
}
