package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessOutputsJPEG(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"jpeg", encodeJPEG(t, solid(100, 80, color.RGBA{255, 0, 0, 255}))},
		{"png", encodePNG(t, solid(100, 80, color.RGBA{0, 0, 255, 255}))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			photo, err := Process(bytes.NewReader(tt.data))
			require.NoError(t, err)
			assert.Equal(t, "image/jpeg", photo.MIME)
			assert.Equal(t, 100, photo.Width)
			assert.Equal(t, 80, photo.Height)
			assert.NotEmpty(t, photo.Data)
		})
	}
}

func TestProcessDownscalesKeepingAspect(t *testing.T) {
	photo, err := Process(bytes.NewReader(encodeJPEG(t, solid(2048, 1024, color.Black))))
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(photo.Data))
	require.NoError(t, err)
	assert.Equal(t, MaxDimension, img.Bounds().Dx())
	assert.Equal(t, MaxDimension/2, img.Bounds().Dy())
}

func TestProcessFlattensTransparency(t *testing.T) {
	photo, err := Process(bytes.NewReader(encodePNG(t, solid(10, 10, color.Transparent))))
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(photo.Data))
	require.NoError(t, err)
	r, g, b, _ := img.At(5, 5).RGBA()
	assert.Greater(t, r, uint32(0xf000))
	assert.Greater(t, g, uint32(0xf000))
	assert.Greater(t, b, uint32(0xf000))
}

func TestProcessRejects(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		_, err := Process(bytes.NewReader([]byte("not an image")))
		assert.ErrorIs(t, err, ErrUnsupported)
	})
	t.Run("gif", func(t *testing.T) {
		_, err := Process(bytes.NewReader([]byte("GIF89a...")))
		assert.ErrorIs(t, err, ErrUnsupported)
	})
	t.Run("too large", func(t *testing.T) {
		_, err := Process(bytes.NewReader(make([]byte, MaxUploadBytes+10)))
		assert.ErrorIs(t, err, ErrTooLarge)
	})
}

func TestScaled(t *testing.T) {
	tests := []struct {
		w, h, wantW, wantH int
	}{
		{50, 50, 50, 50},
		{2048, 2048, 1024, 1024},
		{1024, 4096, 256, 1024},
		{5000, 1, 1024, 1},
	}
	for _, tt := range tests {
		w, h := scaled(tt.w, tt.h, MaxDimension)
		assert.Equal(t, tt.wantW, w)
		assert.Equal(t, tt.wantH, h)
	}
}
