package browser

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFloat(t *testing.T) {
	assert.Equal(t, 3.5, toFloat(3.5))
	assert.Equal(t, float64(0), toFloat("not a number"))
	assert.Equal(t, float64(0), toFloat(nil))
}

func fakeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func TestAnnotatedScreenshot_DrawsWithoutError(t *testing.T) {
	shot := fakeJPEG(t, 200, 100)
	boxes := map[int]Box{
		1: {X: 10, Y: 10, Width: 40, Height: 20},
		2: {X: 150, Y: 60, Width: 30, Height: 30},
	}

	out, err := AnnotatedScreenshot(shot, boxes)
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	decoded, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 200, decoded.Bounds().Dx())
	assert.Equal(t, 100, decoded.Bounds().Dy())
}

func TestAnnotatedScreenshot_InvalidInputErrors(t *testing.T) {
	_, err := AnnotatedScreenshot([]byte("not an image"), nil)
	assert.Error(t, err)
}

func TestDrawBoxOutline_ClampsToBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	box := Box{X: -10, Y: -10, Width: 1000, Height: 1000}

	assert.NotPanics(t, func() {
		drawBoxOutline(img, box, color.RGBA{R: 255, A: 255})
	})
}
