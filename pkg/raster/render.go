// Package raster draws captured program output as a terminal-style image.
//
// Text is laid out on a fixed grid of cells, one per rune, framed by the
// theme's padding. Glyphs come from a [GlyphSet]: the built-in 8x8
// [Bitmap] font when the theme carries no font, or a [Vector] face parsed
// from the theme's font bytes otherwise. Identical text and theme always
// produce identical pixels.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"unicode/utf8"

	"github.com/matzehuels/assignpack/pkg/theme"
)

// GlyphSet draws single runes into fixed-size cells.
type GlyphSet interface {
	// CellSize is the width and height in pixels of one character cell.
	CellSize() (w, h int)

	// Supports reports whether r can be drawn. Unsupported runes are
	// replaced before drawing.
	Supports(r rune) bool

	// Draw paints r into the cell whose top-left corner is (x, y).
	Draw(dst *image.RGBA, x, y int, r rune, fg color.RGBA)
}

// NewGlyphSet picks the glyph strategy for t.
func NewGlyphSet(t theme.Theme) (GlyphSet, error) {
	if len(t.Font) > 0 {
		return NewVector(t.Font, t.FontSize)
	}
	return NewBitmap(t.Scale), nil
}

// Render lays out text with theme t and returns the image.
func Render(text string, t theme.Theme) (*image.RGBA, error) {
	glyphs, err := NewGlyphSet(t)
	if err != nil {
		return nil, err
	}
	if c, ok := glyphs.(interface{ Close() error }); ok {
		defer c.Close()
	}
	return RenderWith(text, t, glyphs), nil
}

// RenderWith lays out text with an explicit glyph set. Only the colours and
// padding of t are used.
func RenderWith(text string, t theme.Theme, glyphs GlyphSet) *image.RGBA {
	lines := PrepareLines(text, glyphs.Supports)

	cols := 1
	for _, l := range lines {
		cols = max(cols, utf8.RuneCountInString(l))
	}
	cellW, cellH := glyphs.CellSize()
	pad := max(t.Padding, 0)

	img := image.NewRGBA(image.Rect(0, 0, 2*pad+cols*cellW, 2*pad+len(lines)*cellH))
	draw.Draw(img, img.Bounds(), image.NewUniform(t.Background), image.Point{}, draw.Src)

	for row, line := range lines {
		y := pad + row*cellH
		col := 0
		for _, r := range line {
			if r != ' ' {
				glyphs.Draw(img, pad+col*cellW, y, r, t.Foreground)
			}
			col++
		}
	}
	return img
}
