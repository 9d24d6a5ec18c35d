// Package rtf assembles the submission document.
//
// The document is a single fixed layout: a bold title, the student and
// source lines, the source code in a monospace block, the command that was
// run, the screenshot embedded as a PNG picture, the captured output as
// text, and an optional attribution line. Output depends only on the
// [Options], so the same inputs always produce the same bytes.
package rtf

import (
	"bytes"
	"fmt"
	"image/png"
	"math"
	"strings"

	"github.com/matzehuels/assignpack/pkg/capture"
	"github.com/matzehuels/assignpack/pkg/errors"
)

// Watermark is the attribution line appended when Options.Watermark is set.
const Watermark = "Packed with assignpack."

// HexBytesPerLine is how many picture bytes go on one line (64 hex characters).
const HexBytesPerLine = 32

// twipsPerPixel converts pixel dimensions to the picture's display size.
const twipsPerPixel = 15

const header = "{\\rtf1\\ansi\\deff0\n" +
	"{\\fonttbl{\\f0 Calibri;}{\\f1 Consolas;}}\n" +
	"\\viewkind4\\uc1\\pard\\sa120\\sl240\\slmult1\\f0\\fs24\n"

// Options is everything that goes into one document.
type Options struct {
	Assignment string
	Name       string
	StudentID  string
	SourceName string
	Code       string
	Capture    capture.RunCapture
	Screenshot []byte // PNG
	Watermark  bool
}

// Build renders the document. The screenshot must be a PNG; its header
// supplies the picture dimensions.
func Build(opts Options) ([]byte, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(opts.Screenshot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageEncoding, err, "reading screenshot")
	}
	pw := uint64(max(cfg.Width, 1))
	ph := uint64(max(cfg.Height, 1))
	pict := HexWrap(opts.Screenshot, HexBytesPerLine)

	var w strings.Builder
	w.Grow(len(pict) + len(opts.Code) + len(opts.Capture.FormattedOutput) + 4096)

	w.WriteString(header)

	w.WriteString("\\b ")
	Escape(&w, opts.Assignment+" Submission", Inline)
	w.WriteString(" \\b0\\par\n")
	Escape(&w, fmt.Sprintf("Student: %s (%s)", opts.Name, opts.StudentID), Inline)
	w.WriteString("\\par\n")
	Escape(&w, "Source file: "+opts.SourceName, Inline)
	w.WriteString("\\par\n\\par\n")

	w.WriteString("\\b Code\\b0\\par\n")
	w.WriteString("{\\pard\\f1\\fs18 ")
	Escape(&w, opts.Code, Block)
	w.WriteString("\\par}\n\\pard\\f0\\fs24\\par\n")

	w.WriteString("\\b Program Run Screenshot\\b0\\par\n")
	Escape(&w, "Command: "+opts.Capture.CommandDisplay, Inline)
	w.WriteString("\\par\n")
	fmt.Fprintf(&w, "{\\pict\\pngblip\\picw%d\\pich%d\\picwgoal%d\\pichgoal%d\n%s}\n\\par\n",
		pw, ph, goal(pw), goal(ph), pict)

	w.WriteString("\\b Captured Output (Text)\\b0\\par\n")
	w.WriteString("{\\pard\\f1\\fs18 ")
	Escape(&w, opts.Capture.FormattedOutput, Block)
	w.WriteString("\\par}\n")

	if opts.Watermark {
		w.WriteString("\\pard\\qc\\f0\\fs16\\i ")
		Escape(&w, Watermark, Inline)
		w.WriteString(" \\i0\\par\n")
	}
	w.WriteString("}\n")

	return []byte(w.String()), nil
}

// goal scales a pixel size to twips, saturating at the largest uint64.
func goal(px uint64) uint64 {
	if px > math.MaxUint64/twipsPerPixel {
		return math.MaxUint64
	}
	return px * twipsPerPixel
}
