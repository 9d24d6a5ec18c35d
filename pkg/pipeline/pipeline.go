// Package pipeline turns a C source file into a submission document.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Capture: compile and run the program (or run a shell command) and
//     format what it printed
//  2. Render: draw the prompt line and output as a PNG screenshot
//  3. Assemble: write the RTF document with code, screenshot and output
//
// The theme is resolved before anything runs, so a bad theme name fails
// fast. Rendered screenshots are cached by text and theme.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Assignment: "Assignment3",
//	    Name:       "JaneDoe",
//	    StudentID:  "12345",
//	    SourcePath: "main.c",
//	    Code:       code,
//	    Display:    "./Assignment3",
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile(docPath, result.Document, 0644)
package pipeline

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/assignpack/pkg/cache"
	"github.com/matzehuels/assignpack/pkg/capture"
	"github.com/matzehuels/assignpack/pkg/errors"
	"github.com/matzehuels/assignpack/pkg/theme"
)

// Glyph strategy names reported in stats and hooks.
const (
	StrategyBitmap = "bitmap"
	StrategyVector = "vector"
)

// Stage names one step of [Runner.Execute].
type Stage string

const (
	StageCapture  Stage = "capture"
	StageRender   Stage = "render"
	StageAssemble Stage = "assemble"
)

// Capture mode names reported in stats and hooks.
const (
	ModeCompile = "compile"
	ModeShell   = "shell"
)

// Options describes one submission.
type Options struct {
	Assignment string
	Name       string
	StudentID  string

	// SourcePath is the C file compiled in compile mode. Its base name is
	// shown in the document unless SourceName is set.
	SourcePath string
	SourceName string

	// Code is the source text embedded in the document.
	Code string

	// RunCommand, when set, is run through the shell instead of compiling
	// SourcePath.
	RunCommand string

	// Display is the command line shown in the screenshot and document.
	Display string

	// Theme names the screenshot theme. Empty selects the default.
	Theme string

	Watermark bool

	// Refresh skips the screenshot cache lookup; the fresh render is still
	// stored.
	Refresh bool

	Logger *log.Logger `json:"-"`
}

// Result holds everything one pipeline run produced.
type Result struct {
	Capture    *capture.RunCapture
	Theme      theme.Theme
	Screenshot []byte // PNG
	Document   []byte // RTF

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Mode            string
	Strategy        string
	CaptureTime     time.Duration
	RenderTime      time.Duration
	AssembleTime    time.Duration
	ScreenshotBytes int
	DocumentBytes   int
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ScreenshotHit bool
}

// Validate checks the fields every run needs.
func (o *Options) Validate() error {
	required := []struct{ label, value string }{
		{"assignment", o.Assignment},
		{"name", o.Name},
		{"student id", o.StudentID},
		{"display command", o.Display},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return errors.New(errors.ErrCodeInvalidInput, "%s is required", f.label)
		}
	}
	if o.RunCommand == "" && o.SourcePath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "source path or run command is required")
	}
	return nil
}

// Mode reports whether the program is compiled or run through the shell.
func (o *Options) Mode() string {
	if o.RunCommand != "" {
		return ModeShell
	}
	return ModeCompile
}

// DisplaySourceName is the source file name shown in the document.
func (o *Options) DisplaySourceName() string {
	if o.SourceName != "" {
		return o.SourceName
	}
	return filepath.Base(o.SourcePath)
}

// Strategy names the glyph strategy t renders with.
func Strategy(t theme.Theme) string {
	if len(t.Font) > 0 {
		return StrategyVector
	}
	return StrategyBitmap
}

// ScreenshotKeyOpts returns the cache key options for t.
func ScreenshotKeyOpts(t theme.Theme) cache.ScreenshotKeyOpts {
	opts := cache.ScreenshotKeyOpts{
		Background: theme.Hex(t.Background),
		Foreground: theme.Hex(t.Foreground),
		Padding:    t.Padding,
		Scale:      t.Scale,
		FontSize:   t.FontSize,
	}
	if len(t.Font) > 0 {
		opts.FontHash = cache.Hash(t.Font)
	}
	return opts
}
