// Package theme resolves the colours, spacing and font used to draw a
// screenshot.
//
// A theme is either one of the built-ins returned by [Builtins] or a TOML
// file under the themes directory. Theme files may set any subset of:
//
//	bg        = "#1a2b3c"
//	fg        = "#e0e0e0"
//	padding   = 16          # 0..64
//	scale     = 2           # 1..4, bitmap font only
//	font      = "mono.ttf"  # relative to the theme file
//	font_size = 16.0        # 8..72, vector font only
//
// Missing keys fall back to [Default]. Out-of-range numbers are clamped.
package theme

import (
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/assignpack/pkg/errors"
)

// Limits applied to theme files.
const (
	MinScale    = 1
	MaxScale    = 4
	MaxPadding  = 64
	MinFontSize = 8.0
	MaxFontSize = 72.0
)

// Theme is a resolved screenshot style. It is not modified after resolution.
type Theme struct {
	Background color.RGBA
	Foreground color.RGBA
	Padding    int
	Scale      int
	FontSize   float64

	// Font holds TrueType/OpenType bytes. When nil the built-in bitmap font
	// is used.
	Font []byte
}

// Default returns the built-in terminal-green theme.
func Default() Theme {
	return Theme{
		Background: rgb(15, 18, 24),
		Foreground: rgb(128, 255, 170),
		Padding:    16,
		Scale:      2,
		FontSize:   16,
	}
}

var builtins = map[string]func() Theme{
	"default":   Default,
	"light":     palette(rgb(255, 255, 255), rgb(30, 30, 30)),
	"dracula":   palette(rgb(40, 42, 54), rgb(248, 248, 242)),
	"monokai":   palette(rgb(39, 40, 34), rgb(248, 248, 240)),
	"solarized": palette(rgb(0, 43, 54), rgb(131, 148, 150)),
}

// builtinOrder is the order built-ins are listed in help and error text.
var builtinOrder = []string{"default", "light", "dracula", "monokai", "solarized"}

// Builtins returns the names of the built-in themes.
func Builtins() []string {
	return append([]string(nil), builtinOrder...)
}

// Builtin returns the named built-in theme.
func Builtin(name string) (Theme, bool) {
	fn, ok := builtins[name]
	if !ok {
		return Theme{}, false
	}
	return fn(), true
}

func palette(bg, fg color.RGBA) func() Theme {
	return func() Theme {
		t := Default()
		t.Background = bg
		t.Foreground = fg
		return t
	}
}

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// ParseHex parses a colour written as six hex digits with an optional
// leading '#'.
func ParseHex(s string) (color.RGBA, error) {
	digits := strings.TrimPrefix(s, "#")
	if len(digits) != 6 {
		return color.RGBA{}, invalidColor(digits)
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return color.RGBA{}, invalidColor(digits)
	}
	return rgb(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

func invalidColor(s string) error {
	return errors.New(errors.ErrCodeInvalidColor,
		"invalid hex color '%s', expected 6 hex digits (e.g. #1a2b3c)", s)
}

// Hex formats c as "#rrggbb".
func Hex(c color.RGBA) string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.R, c.G, c.B} {
		b[1+2*i] = digits[v>>4]
		b[2+2*i] = digits[v&0x0f]
	}
	return string(b)
}

func clamp[T int | float64](v, lo, hi T) T {
	return max(lo, min(v, hi))
}

func sortedUnique(names []string) []string {
	sort.Strings(names)
	out := names[:0]
	for i, n := range names {
		if i > 0 && n == names[i-1] {
			continue
		}
		out = append(out, n)
	}
	return out
}
