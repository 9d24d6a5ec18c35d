package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/assignpack/pkg/cache"
	"github.com/matzehuels/assignpack/pkg/capture"
	"github.com/matzehuels/assignpack/pkg/observability"
	"github.com/matzehuels/assignpack/pkg/raster"
	"github.com/matzehuels/assignpack/pkg/rtf"
	"github.com/matzehuels/assignpack/pkg/theme"
)

const keyTypeScreenshot = "screenshot"

// Runner executes the pipeline with caching.
//
// The Runner holds no per-run state; the same Runner can execute many
// submissions one after another.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Exec runs the captured program.
	Exec *capture.Runner

	// Themes resolves theme names. The zero Resolver knows only built-ins.
	Themes *theme.Resolver

	// Progress, when set, is called as each stage begins.
	Progress func(Stage)
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		Exec:   capture.NewRunner(logger),
		Themes: &theme.Resolver{},
	}
}

// Execute runs capture → render → assemble. The context is checked between
// stages; a running program is bounded only by the capture timeout.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)

	th, err := r.resolveTheme(opts.Theme)
	if err != nil {
		return nil, err
	}
	result := &Result{Theme: th}
	result.Stats.Mode = opts.Mode()
	result.Stats.Strategy = Strategy(th)

	// Stage 1: Capture
	r.progress(StageCapture)
	start := time.Now()
	rc, err := r.Capture(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Capture = rc
	result.Stats.CaptureTime = time.Since(start)
	logger.Info("captured program output",
		"mode", result.Stats.Mode,
		"duration", result.Stats.CaptureTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Render
	r.progress(StageRender)
	start = time.Now()
	png, hit, err := r.RenderWithCacheInfo(ctx, rc.ScreenshotText, th, opts.Refresh)
	if err != nil {
		return nil, err
	}
	result.Screenshot = png
	result.CacheInfo.ScreenshotHit = hit
	result.Stats.RenderTime = time.Since(start)
	result.Stats.ScreenshotBytes = len(png)
	logger.Info("rendered screenshot",
		"strategy", result.Stats.Strategy,
		"bytes", len(png),
		"cached", hit,
		"duration", result.Stats.RenderTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Assemble
	r.progress(StageAssemble)
	start = time.Now()
	doc, err := r.Assemble(ctx, opts, rc, png)
	if err != nil {
		return nil, err
	}
	result.Document = doc
	result.Stats.AssembleTime = time.Since(start)
	result.Stats.DocumentBytes = len(doc)
	logger.Info("assembled document",
		"bytes", len(doc),
		"duration", result.Stats.AssembleTime)

	return result, nil
}

func (r *Runner) progress(s Stage) {
	if r.Progress != nil {
		r.Progress(s)
	}
}

// Capture runs the program described by opts.
func (r *Runner) Capture(ctx context.Context, opts Options) (*capture.RunCapture, error) {
	mode := opts.Mode()
	hooks := observability.Pipeline()
	hooks.OnCaptureStart(ctx, mode)
	start := time.Now()

	res, err := r.exec().Run(opts.SourcePath, opts.RunCommand)
	exit := 0
	if res != nil {
		exit = res.ExitCode
		if res.Killed {
			exit = -1
		}
	}
	hooks.OnCaptureComplete(ctx, mode, exit, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return capture.NewRunCapture(opts.Display, res), nil
}

// RenderWithCacheInfo renders text with th, consulting the cache first
// unless refresh is set. The bool reports a cache hit.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, text string, th theme.Theme, refresh bool) ([]byte, bool, error) {
	key := r.Keyer.ScreenshotKey(cache.HashString(text), ScreenshotKeyOpts(th))
	cacheHooks := observability.Cache()

	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			cacheHooks.OnCacheHit(ctx, keyTypeScreenshot)
			return data, true, nil
		} else if err != nil {
			r.baseLogger().Warn("screenshot cache read failed", "err", err)
		}
		cacheHooks.OnCacheMiss(ctx, keyTypeScreenshot)
	}

	png, err := r.Render(ctx, text, th)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, png, cache.DefaultTTL); err != nil {
		r.baseLogger().Warn("screenshot cache write failed", "err", err)
	} else {
		cacheHooks.OnCacheSet(ctx, keyTypeScreenshot, len(png))
	}
	return png, false, nil
}

// Render draws text with th and encodes it as PNG, bypassing the cache.
func (r *Runner) Render(ctx context.Context, text string, th theme.Theme) (png []byte, err error) {
	strategy := Strategy(th)
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, strategy, strings.Count(text, "\n")+1)
	start := time.Now()
	defer func() {
		hooks.OnRenderComplete(ctx, strategy, len(png), time.Since(start), err)
	}()

	return raster.RenderPNG(text, th)
}

// Assemble builds the document from a finished capture and screenshot.
func (r *Runner) Assemble(ctx context.Context, opts Options, rc *capture.RunCapture, png []byte) (doc []byte, err error) {
	hooks := observability.Pipeline()
	hooks.OnAssembleStart(ctx)
	start := time.Now()
	defer func() {
		hooks.OnAssembleComplete(ctx, len(doc), time.Since(start), err)
	}()

	return rtf.Build(rtf.Options{
		Assignment: opts.Assignment,
		Name:       opts.Name,
		StudentID:  opts.StudentID,
		SourceName: opts.DisplaySourceName(),
		Code:       opts.Code,
		Capture:    *rc,
		Screenshot: png,
		Watermark:  opts.Watermark,
	})
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) resolveTheme(name string) (theme.Theme, error) {
	if r.Themes == nil {
		return (&theme.Resolver{}).Resolve(name)
	}
	return r.Themes.Resolve(name)
}

func (r *Runner) exec() *capture.Runner {
	if r.Exec == nil {
		r.Exec = capture.NewRunner(r.baseLogger())
	}
	return r.Exec
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.baseLogger()
}

func (r *Runner) baseLogger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}
