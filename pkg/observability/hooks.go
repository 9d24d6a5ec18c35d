// Package observability lets callers watch the packing pipeline without the
// pipeline depending on any logging or metrics backend.
//
// Hooks are registered once at startup and default to no-ops:
//
//	observability.SetPipelineHooks(myHooks)
//	observability.SetCacheHooks(myHooks)
//
// Pipeline stages report through the registry:
//
//	observability.Pipeline().OnCaptureStart(ctx, mode)
//	// ... run the program ...
//	observability.Pipeline().OnCaptureComplete(ctx, mode, exitCode, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the packing pipeline.
type PipelineHooks interface {
	// Capture events. mode is "shell" or "compile".
	OnCaptureStart(ctx context.Context, mode string)
	OnCaptureComplete(ctx context.Context, mode string, exitCode int, duration time.Duration, err error)

	// Render events. strategy is "bitmap" or "vector".
	OnRenderStart(ctx context.Context, strategy string, lines int)
	OnRenderComplete(ctx context.Context, strategy string, size int, duration time.Duration, err error)

	// Assemble events.
	OnAssembleStart(ctx context.Context)
	OnAssembleComplete(ctx context.Context, size int, duration time.Duration, err error)
}

// CacheHooks receives events from cache lookups.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// NoopPipelineHooks ignores every event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnCaptureStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnCaptureComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string, int)                           {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, int, time.Duration, error)  {}
func (NoopPipelineHooks) OnAssembleStart(context.Context)                                      {}
func (NoopPipelineHooks) OnAssembleComplete(context.Context, int, time.Duration, error)        {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores the no-op hooks. Used by tests.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
}
