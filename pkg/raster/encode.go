package raster

import (
	"bytes"
	"image"
	"image/png"

	"github.com/matzehuels/assignpack/pkg/errors"
	"github.com/matzehuels/assignpack/pkg/theme"
)

// EncodePNG encodes img as PNG. A nil or empty image, or one whose pixel
// buffer does not match its bounds, is rejected with IMAGE_ENCODING.
func EncodePNG(img *image.RGBA) ([]byte, error) {
	if img == nil {
		return nil, errors.New(errors.ErrCodeImageEncoding, "encoding screenshot: no image")
	}
	b := img.Rect
	if b.Empty() {
		return nil, errors.New(errors.ErrCodeImageEncoding, "encoding screenshot: empty image %v", b)
	}
	if img.Stride < 4*b.Dx() || len(img.Pix) < img.Stride*(b.Dy()-1)+4*b.Dx() {
		return nil, errors.New(errors.ErrCodeImageEncoding,
			"encoding screenshot: %d bytes with stride %d do not fit %v", len(img.Pix), img.Stride, b)
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageEncoding, err, "encoding screenshot")
	}
	return buf.Bytes(), nil
}

// RenderPNG renders text with theme t and encodes the result.
func RenderPNG(text string, t theme.Theme) ([]byte, error) {
	img, err := Render(text, t)
	if err != nil {
		return nil, err
	}
	return EncodePNG(img)
}
