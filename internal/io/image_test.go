package ioutils_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ioutils "github.com/handiism/album-downloader/internal/io"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func TestImageService_ResizeImage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(300, 200)))

	svc := ioutils.NewImageService()
	out, err := svc.ResizeImage(context.Background(), buf.Bytes(), 150, 150)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 150, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestImageService_ResizeImage_AlreadySmall(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(50, 40)))

	svc := ioutils.NewImageService()
	out, err := svc.ResizeImage(context.Background(), buf.Bytes(), 100, 100)
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), out)
}

func TestImageService_ConvertToJPEG(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(20, 20)))

	svc := ioutils.NewImageService()
	assert.False(t, svc.IsJPEG(buf.Bytes()))

	out, err := svc.ConvertToJPEG(context.Background(), buf.Bytes())
	require.NoError(t, err)
	assert.True(t, svc.IsJPEG(out))

	again, err := svc.ConvertToJPEG(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}
