package rtf

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// Mode selects how line structure is escaped.
type Mode int

const (
	// Inline collapses line breaks and tabs into single spaces.
	Inline Mode = iota

	// Block keeps line breaks as \line and expands tabs to four spaces.
	Block
)

const blockTab = "    "

// Escape writes text to w as RTF body text. Backslash and braces are
// escaped, printable ASCII is copied, and every other rune becomes a \uN?
// reference with N as a signed 16-bit value. Runes above U+FFFF are written
// as a UTF-16 surrogate pair.
func Escape(w *strings.Builder, text string, mode Mode) {
	for _, r := range text {
		switch {
		case r == '\\':
			w.WriteString(`\\`)
		case r == '{':
			w.WriteString(`\{`)
		case r == '}':
			w.WriteString(`\}`)
		case mode == Block && r == '\n':
			w.WriteString("\\line\n")
		case mode == Block && r == '\r':
		case mode == Block && r == '\t':
			w.WriteString(blockTab)
		case r == '\n' || r == '\r' || r == '\t':
			w.WriteByte(' ')
		case r >= 0x20 && r < 0x7f:
			w.WriteRune(r)
		default:
			writeUnicode(w, r)
		}
	}
}

// EscapeString is Escape into a new string.
func EscapeString(text string, mode Mode) string {
	var b strings.Builder
	Escape(&b, text, mode)
	return b.String()
}

func writeUnicode(w *strings.Builder, r rune) {
	cp := uint32(r)
	if cp <= 0xFFFF {
		writeRef(w, int16(uint16(cp)))
		return
	}
	adj := cp - 0x10000
	writeRef(w, int16(uint16(0xD800+(adj>>10))))
	writeRef(w, int16(uint16(0xDC00+(adj&0x3FF))))
}

func writeRef(w *strings.Builder, v int16) {
	w.WriteString(`\u`)
	w.WriteString(strconv.Itoa(int(v)))
	w.WriteByte('?')
}

// HexWrap encodes b as lowercase hex with perLine bytes (2*perLine hex
// characters) on each line. The result always ends with a newline. perLine
// below 1 is treated as 1.
func HexWrap(b []byte, perLine int) string {
	perLine = max(perLine, 1)

	var out strings.Builder
	out.Grow(len(b)*2 + len(b)/perLine + 1)
	for start := 0; start < len(b); start += perLine {
		end := min(start+perLine, len(b))
		out.WriteString(hex.EncodeToString(b[start:end]))
		out.WriteByte('\n')
	}
	if out.Len() == 0 {
		out.WriteByte('\n')
	}
	return out.String()
}
