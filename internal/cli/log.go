package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/assignpack/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, rounded to the millisecond.
// Example output: "Packed Assignment3 (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// =============================================================================
// Debug Hooks
// =============================================================================

// logHooks writes every pipeline and cache event to a logger at debug level.
type logHooks struct {
	logger *log.Logger
}

// installLogHooks registers logHooks for the rest of the process.
func installLogHooks(l *log.Logger) {
	h := &logHooks{logger: l}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
}

func (h *logHooks) OnCaptureStart(_ context.Context, mode string) {
	h.logger.Debug("capture started", "mode", mode)
}

func (h *logHooks) OnCaptureComplete(_ context.Context, mode string, exitCode int, d time.Duration, err error) {
	h.logger.Debug("capture finished", "mode", mode, "exit", exitCode, "duration", d, "err", err)
}

func (h *logHooks) OnRenderStart(_ context.Context, strategy string, lines int) {
	h.logger.Debug("render started", "strategy", strategy, "lines", lines)
}

func (h *logHooks) OnRenderComplete(_ context.Context, strategy string, size int, d time.Duration, err error) {
	h.logger.Debug("render finished", "strategy", strategy, "bytes", size, "duration", d, "err", err)
}

func (h *logHooks) OnAssembleStart(context.Context) {
	h.logger.Debug("assemble started")
}

func (h *logHooks) OnAssembleComplete(_ context.Context, size int, d time.Duration, err error) {
	h.logger.Debug("assemble finished", "bytes", size, "duration", d, "err", err)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
