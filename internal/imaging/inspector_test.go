package imaging

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestHasWhiteCorners(t *testing.T) {
	white := filled(4, 4, color.White)
	assert.True(t, HasWhiteCorners(white, WhiteTolerance))

	almost := filled(4, 4, color.NRGBA{R: 246, G: 250, B: 245, A: 255})
	assert.True(t, HasWhiteCorners(almost, WhiteTolerance))

	oneDark := filled(4, 4, color.White)
	oneDark.Set(3, 3, color.NRGBA{R: 244, G: 255, B: 255, A: 255})
	assert.False(t, HasWhiteCorners(oneDark, WhiteTolerance))

	centerDark := filled(4, 4, color.White)
	centerDark.Set(1, 1, color.Black)
	assert.True(t, HasWhiteCorners(centerDark, WhiteTolerance))

	assert.False(t, HasWhiteCorners(image.NewNRGBA(image.Rect(0, 0, 0, 0)), WhiteTolerance))
}

func TestHasWhiteCornersIgnoresAlpha(t *testing.T) {
	transparentWhite := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range transparentWhite.Pix {
		if i%4 != 3 {
			transparentWhite.Pix[i] = 255
		}
	}
	assert.True(t, HasWhiteCorners(transparentWhite, WhiteTolerance))
}

func TestHasWhiteCornersOffsetBounds(t *testing.T) {
	img := image.NewGray(image.Rect(10, 10, 13, 13))
	for y := 10; y < 13; y++ {
		for x := 10; x < 13; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	assert.True(t, HasWhiteCorners(img, WhiteTolerance))
}

func TestInspect(t *testing.T) {
	body := encodePNG(t, filled(1200, 1000, color.White))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(body)
		case "/garbage.jpg":
			_, _ = w.Write([]byte("not an image"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	inspector := NewInspector(5 * time.Second)

	res, err := inspector.Inspect(context.Background(), srv.URL+"/ok.png")
	require.NoError(t, err)
	assert.Equal(t, 1200, res.Width)
	assert.Equal(t, 1000, res.Height)
	assert.True(t, res.WhiteCorners)

	_, err = inspector.Inspect(context.Background(), srv.URL+"/garbage.jpg")
	assert.Error(t, err)

	_, err = inspector.Inspect(context.Background(), srv.URL+"/missing.jpg")
	assert.Error(t, err)
}
