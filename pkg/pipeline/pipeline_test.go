package pipeline

import (
	"bytes"
	"context"
	"io"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/assignpack/pkg/cache"
	"github.com/matzehuels/assignpack/pkg/errors"
	"github.com/matzehuels/assignpack/pkg/observability"
	"github.com/matzehuels/assignpack/pkg/theme"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func shellOptions() Options {
	return Options{
		Assignment: "Assignment2",
		Name:       "JaneDoe",
		StudentID:  "42",
		SourcePath: "/tmp/project/main.c",
		Code:       "int main(void) { return 0; }\n",
		RunCommand: "echo hello",
		Display:    "./Assignment2",
		Watermark:  true,
	}
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *Options)
		wantErr bool
	}{
		{name: "valid", mutate: func(o *Options) {}},
		{name: "compile mode", mutate: func(o *Options) { o.RunCommand = "" }},
		{name: "no assignment", mutate: func(o *Options) { o.Assignment = "" }, wantErr: true},
		{name: "blank name", mutate: func(o *Options) { o.Name = "  " }, wantErr: true},
		{name: "no id", mutate: func(o *Options) { o.StudentID = "" }, wantErr: true},
		{name: "no display", mutate: func(o *Options) { o.Display = "" }, wantErr: true},
		{name: "nothing to run", mutate: func(o *Options) {
			o.RunCommand = ""
			o.SourcePath = ""
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := shellOptions()
			tt.mutate(&o)
			err := o.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("err = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestOptionsHelpers(t *testing.T) {
	o := shellOptions()
	if o.Mode() != ModeShell {
		t.Errorf("Mode() = %q", o.Mode())
	}
	if o.DisplaySourceName() != "main.c" {
		t.Errorf("DisplaySourceName() = %q", o.DisplaySourceName())
	}
	o.SourceName = "renamed.c"
	if o.DisplaySourceName() != "renamed.c" {
		t.Errorf("SourceName should win, got %q", o.DisplaySourceName())
	}
	o.RunCommand = ""
	if o.Mode() != ModeCompile {
		t.Errorf("Mode() = %q", o.Mode())
	}
}

func TestScreenshotKeyOpts(t *testing.T) {
	d := theme.Default()
	opts := ScreenshotKeyOpts(d)
	if opts.Background != "#0f1218" || opts.Foreground != "#80ffaa" || opts.FontHash != "" {
		t.Errorf("unexpected opts %+v", opts)
	}
	if Strategy(d) != StrategyBitmap {
		t.Errorf("Strategy() = %q", Strategy(d))
	}

	d.Font = []byte("font")
	if ScreenshotKeyOpts(d).FontHash != cache.Hash([]byte("font")) {
		t.Error("font bytes should be hashed into the key")
	}
	if Strategy(d) != StrategyVector {
		t.Errorf("Strategy() = %q", Strategy(d))
	}
}

func TestExecuteShell(t *testing.T) {
	skipOnWindows(t)
	r := NewRunner(nil, nil, quietLogger())

	res, err := r.Execute(context.Background(), shellOptions())
	if err != nil {
		t.Fatal(err)
	}

	if res.Capture.ScreenshotText != "$ ./Assignment2\n\nSTDOUT\nhello\n\nExit code: 0" {
		t.Errorf("ScreenshotText = %q", res.Capture.ScreenshotText)
	}
	if !bytes.HasPrefix(res.Screenshot, []byte("\x89PNG")) {
		t.Error("screenshot is not a PNG")
	}
	doc := string(res.Document)
	for _, want := range []string{
		"Assignment2 Submission",
		"Student: JaneDoe (42)",
		"Source file: main.c",
		"Command: ./Assignment2",
		"\\pngblip",
		"STDOUT\\line\nhello",
		"Packed with assignpack.",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
	if res.Stats.Mode != ModeShell || res.Stats.Strategy != StrategyBitmap {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.Stats.DocumentBytes != len(res.Document) || res.Stats.ScreenshotBytes != len(res.Screenshot) {
		t.Errorf("byte stats do not match outputs: %+v", res.Stats)
	}
	if res.CacheInfo.ScreenshotHit {
		t.Error("null cache should never hit")
	}
}

func TestExecuteReportsProgress(t *testing.T) {
	skipOnWindows(t)
	r := NewRunner(nil, nil, quietLogger())
	var stages []Stage
	r.Progress = func(s Stage) { stages = append(stages, s) }

	if _, err := r.Execute(context.Background(), shellOptions()); err != nil {
		t.Fatal(err)
	}
	want := []Stage{StageCapture, StageRender, StageAssemble}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stages[%d] = %q, want %q", i, stages[i], want[i])
		}
	}
}

func TestExecuteCachesScreenshot(t *testing.T) {
	skipOnWindows(t)
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, quietLogger())
	defer r.Close()

	first, err := r.Execute(context.Background(), shellOptions())
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Execute(context.Background(), shellOptions())
	if err != nil {
		t.Fatal(err)
	}

	if first.CacheInfo.ScreenshotHit || !second.CacheInfo.ScreenshotHit {
		t.Errorf("hits = %v, %v; want false, true", first.CacheInfo.ScreenshotHit, second.CacheInfo.ScreenshotHit)
	}
	if !bytes.Equal(first.Document, second.Document) {
		t.Error("cached run produced a different document")
	}

	opts := shellOptions()
	opts.Refresh = true
	third, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.ScreenshotHit {
		t.Error("refresh should bypass the cache")
	}

	opts = shellOptions()
	opts.Theme = "light"
	fourth, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.ScreenshotHit {
		t.Error("a different theme should not hit the cache")
	}
}

func TestExecuteUnknownThemeFailsBeforeRunning(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	r.Themes = theme.NewResolver(t.TempDir())
	r.Exec.Compilers = []string{"assignpack-no-such-cc"}

	opts := shellOptions()
	opts.RunCommand = ""
	opts.Theme = "nope"

	_, err := r.Execute(context.Background(), opts)
	if !errors.Is(err, errors.ErrCodeUnknownTheme) {
		t.Errorf("err = %v, want UNKNOWN_THEME", err)
	}
}

func TestExecutePropagatesCaptureError(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	r.Exec.Compilers = []string{"assignpack-no-such-cc"}

	opts := shellOptions()
	opts.RunCommand = ""
	_, err := r.Execute(context.Background(), opts)
	if !errors.Is(err, errors.ErrCodeNoCompiler) {
		t.Errorf("err = %v, want NO_COMPILER", err)
	}
}

func TestExecuteCanceledBetweenStages(t *testing.T) {
	skipOnWindows(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(nil, nil, quietLogger())
	_, err := r.Execute(ctx, shellOptions())
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks

	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) add(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnCaptureStart(_ context.Context, mode string) { h.add("capture:" + mode) }
func (h *recordingHooks) OnCaptureComplete(_ context.Context, _ string, exit int, _ time.Duration, err error) {
	if err == nil && exit == 0 {
		h.add("captured")
	}
}
func (h *recordingHooks) OnRenderStart(_ context.Context, strategy string, _ int) {
	h.add("render:" + strategy)
}
func (h *recordingHooks) OnAssembleComplete(_ context.Context, size int, _ time.Duration, err error) {
	if err == nil && size > 0 {
		h.add("assembled")
	}
}
func (h *recordingHooks) OnCacheMiss(_ context.Context, keyType string) { h.add("miss:" + keyType) }
func (h *recordingHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.add("set:" + keyType)
}

func TestExecuteEmitsHooks(t *testing.T) {
	skipOnWindows(t)
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	r := NewRunner(nil, nil, quietLogger())
	if _, err := r.Execute(context.Background(), shellOptions()); err != nil {
		t.Fatal(err)
	}

	want := []string{"capture:shell", "captured", "miss:screenshot", "render:bitmap", "set:screenshot", "assembled"}
	if strings.Join(hooks.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", hooks.events, want)
	}
}
