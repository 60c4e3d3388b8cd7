package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"time"

	"seller-insight/internal/util"

	"github.com/go-resty/resty/v2"
	_ "golang.org/x/image/webp"
)

// WhiteTolerance is the largest per-channel distance from 255 still
// considered white.
const WhiteTolerance = 10

// Result describes a decoded product image
type Result struct {
	Width        int  `json:"width"`
	Height       int  `json:"height"`
	WhiteCorners bool `json:"white_corners"`
}

// Inspector downloads product images and inspects them
type Inspector struct {
	http *resty.Client
}

// NewInspector creates an image inspector. A zero timeout keeps the transport default.
func NewInspector(timeout time.Duration) *Inspector {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &Inspector{http: client}
}

// Inspect downloads the image at imageURL and decodes it.
func (p *Inspector) Inspect(ctx context.Context, imageURL string) (*Result, error) {
	ctx, span := util.StartSpan(ctx, "imaging.Inspect")
	defer span.End()

	resp, err := p.http.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		util.ImageInspectFailedTotal.WithLabelValues("fetch").Inc()
		util.RecordError(span, err)
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		util.ImageInspectFailedTotal.WithLabelValues("status").Inc()
		err := fmt.Errorf("fetch image: status %d", resp.StatusCode())
		util.RecordError(span, err)
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(resp.Body()))
	if err != nil {
		util.ImageInspectFailedTotal.WithLabelValues("decode").Inc()
		util.RecordError(span, err)
		return nil, fmt.Errorf("decode image: %w", err)
	}

	return Analyze(img), nil
}

// Analyze reports the size of img and whether its corners are white.
func Analyze(img image.Image) *Result {
	b := img.Bounds()
	return &Result{
		Width:        b.Dx(),
		Height:       b.Dy(),
		WhiteCorners: HasWhiteCorners(img, WhiteTolerance),
	}
}

// HasWhiteCorners samples the four corner pixels of img as RGB, with any
// alpha channel discarded rather than composited.
func HasWhiteCorners(img image.Image, tolerance int) bool {
	b := img.Bounds()
	if b.Empty() {
		return false
	}

	corners := []image.Point{
		{X: b.Min.X, Y: b.Min.Y},
		{X: b.Max.X - 1, Y: b.Min.Y},
		{X: b.Min.X, Y: b.Max.Y - 1},
		{X: b.Max.X - 1, Y: b.Max.Y - 1},
	}
	for _, pt := range corners {
		c := color.NRGBAModel.Convert(img.At(pt.X, pt.Y)).(color.NRGBA)
		if !nearWhite(c.R, tolerance) || !nearWhite(c.G, tolerance) || !nearWhite(c.B, tolerance) {
			return false
		}
	}
	return true
}

func nearWhite(v uint8, tolerance int) bool {
	return 255-int(v) <= tolerance
}
