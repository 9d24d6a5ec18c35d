package raster

import (
	"image"
	"image/color"
	"math"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/assignpack/pkg/errors"
)

// Coverage thresholds for vector glyphs. Below coverageSkip a pixel is left
// untouched; at or above coverageSolid it is painted with the foreground.
const (
	coverageSkip  = 0.1
	coverageSolid = 0.5
)

// Vector draws glyphs from a TrueType or OpenType font on a fixed-width grid.
type Vector struct {
	font   *opentype.Font
	face   font.Face
	ascent fixed.Int26_6
	cellW  int
	cellH  int
	buf    sfnt.Buffer
}

// NewVector parses data and prepares a face at size pixels per em.
// Unparseable font data is reported as IMAGE_ENCODING.
func NewVector(data []byte, size float64) (*Vector, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageEncoding, err, "invalid font")
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageEncoding, err, "invalid font")
	}

	m := face.Metrics()
	adv, _ := face.GlyphAdvance('M')
	return &Vector{
		font:   f,
		face:   face,
		ascent: m.Ascent,
		cellW:  max(adv.Ceil(), 1),
		cellH:  max((m.Ascent + m.Descent).Ceil(), 1),
	}, nil
}

func (v *Vector) CellSize() (int, int) {
	return v.cellW, v.cellH
}

// Supports reports whether the font has a glyph for r. Control characters
// are never drawn.
func (v *Vector) Supports(r rune) bool {
	if unicode.IsControl(r) {
		return false
	}
	idx, err := v.font.GlyphIndex(&v.buf, r)
	return err == nil && idx != 0
}

// Draw places r on the baseline one ascent below (x, y) and blends its
// coverage mask onto dst.
func (v *Vector) Draw(dst *image.RGBA, x, y int, r rune, fg color.RGBA) {
	dot := fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + v.ascent}
	dr, mask, maskp, _, ok := v.face.Glyph(dot, r)
	if !ok {
		return
	}

	clip := dr.Intersect(dst.Bounds())
	for py := clip.Min.Y; py < clip.Max.Y; py++ {
		for px := clip.Min.X; px < clip.Max.X; px++ {
			c := coverage(mask, maskp.X+px-dr.Min.X, maskp.Y+py-dr.Min.Y)
			if c < coverageSkip {
				continue
			}
			dst.SetRGBA(px, py, Blend(dst.RGBAAt(px, py), fg, c))
		}
	}
}

func (v *Vector) Close() error {
	return v.face.Close()
}

func coverage(mask image.Image, x, y int) float64 {
	if a, ok := mask.(*image.Alpha); ok {
		return float64(a.AlphaAt(x, y).A) / math.MaxUint8
	}
	_, _, _, a := mask.At(x, y).RGBA()
	return float64(a) / math.MaxUint16
}

// Blend mixes fg over bg at coverage c in [0, 1]. Coverage below 0.1 keeps
// bg, coverage of 0.5 or more gives fg, and anything between is a linear mix
// truncated per channel.
func Blend(bg, fg color.RGBA, c float64) color.RGBA {
	switch {
	case c < coverageSkip:
		return bg
	case c >= coverageSolid:
		return fg
	}
	mix := func(f, b uint8) uint8 {
		return uint8(float64(f)*c + float64(b)*(1-c))
	}
	return color.RGBA{
		R: mix(fg.R, bg.R),
		G: mix(fg.G, bg.G),
		B: mix(fg.B, bg.B),
		A: 0xff,
	}
}
