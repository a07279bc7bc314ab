package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestGenerateResizesToWidth(t *testing.T) {
	original := pngFixture(t, 1000, 600)

	for _, width := range Widths {
		data, err := Generate(original, width)
		require.NoError(t, err)

		img, format, err := image.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, "png", format)
		assert.Equal(t, width, img.Bounds().Dx())
		// Aspect ratio preserved.
		assert.Equal(t, width*600/1000, img.Bounds().Dy())
	}
}

func TestGenerateDeterministic(t *testing.T) {
	original := pngFixture(t, 300, 300)

	first, err := Generate(original, 100)
	require.NoError(t, err)
	second, err := Generate(original, 100)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateRejectsGarbage(t *testing.T) {
	_, err := Generate([]byte("not an image"), 100)
	assert.Error(t, err)
}
