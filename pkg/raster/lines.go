package raster

import (
	"strings"
)

// Text limits. Longer input is cut and marked rather than rejected.
const (
	MaxLines = 80
	MaxCols  = 120
	TabWidth = 4
)

// Markers substituted into the rendered text.
const (
	TruncatedMarker = "(output truncated)"
	EllipsisMarker  = "..."
	NoOutputMarker  = "(no output)"
	Replacement     = '?'
)

// PrepareLines normalizes text into the lines that will be drawn.
//
// Line endings are normalized to LF and a trailing LF does not start a new
// line. At most MaxLines lines are kept, followed by TruncatedMarker. Within a
// line tabs expand to TabWidth spaces, anything past MaxCols runes is replaced
// by EllipsisMarker, and runes for which supports reports false become
// Replacement. A nil supports accepts every rune. Empty input yields a single
// NoOutputMarker line.
func PrepareLines(text string, supports func(rune) bool) []string {
	raw := splitLines(text)
	truncated := len(raw) > MaxLines
	if truncated {
		raw = raw[:MaxLines]
	}

	lines := make([]string, 0, len(raw)+1)
	for _, l := range raw {
		lines = append(lines, clampLine(l, supports))
	}
	if truncated {
		lines = append(lines, TruncatedMarker)
	}
	if len(lines) == 0 {
		lines = append(lines, NoOutputMarker)
	}
	return lines
}

// splitLines splits on LF after folding CRLF and lone CR into LF.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

func clampLine(line string, supports func(rune) bool) string {
	expanded := strings.ReplaceAll(line, "\t", strings.Repeat(" ", TabWidth))

	var b strings.Builder
	b.Grow(len(expanded))
	n := 0
	for _, r := range expanded {
		if n >= MaxCols {
			b.WriteString(EllipsisMarker)
			break
		}
		if supports != nil && !supports(r) {
			r = Replacement
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
