// Package cli implements the assignpack command-line interface.
//
// The root command packs a submission: it copies the working directory's
// source files into a "<assignment>_<name>_<id>_Submission" folder, adds the
// submission document (generated with --auto-doc, or copied from an existing
// .doc), and zips the folder.
//
// # Commands
//
//   - (root): pack the current directory
//   - init: interactive first-run setup
//   - config: show or change saved defaults
//   - themes: list screenshot themes
//   - cache: manage the screenshot cache
//   - completion: shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs every pipeline and cache event.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/assignpack/pkg/buildinfo"
	"github.com/matzehuels/assignpack/pkg/cache"
	"github.com/matzehuels/assignpack/pkg/config"
	"github.com/matzehuels/assignpack/pkg/pipeline"
	"github.com/matzehuels/assignpack/pkg/theme"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "assignpack"

	// envCacheDir overrides the screenshot cache directory.
	envCacheDir = "ASSIGNPACK_CACHE_DIR"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// In is read by interactive prompts.
	In io.Reader
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		In:     os.Stdin,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The root command itself packs a submission.
func (c *CLI) RootCommand() *cobra.Command {
	root := c.packCommand()
	root.Version = buildinfo.Version
	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.initCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.themesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) *pipeline.Runner {
	r := pipeline.NewRunner(newCache(noCache, c.Logger), nil, c.Logger)
	r.Themes = theme.NewResolver(config.ThemesDir())
	return r
}

// newCache opens the screenshot cache. A cache that cannot be opened only
// costs speed, so it degrades to the null cache.
func newCache(noCache bool, logger *log.Logger) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	c, err := cache.NewFileCache(cacheDir())
	if err != nil {
		logger.Warn("screenshot cache disabled", "err", err)
		return cache.NewNullCache()
	}
	return c
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the screenshot cache directory (~/.cache/assignpack/ on
// Linux).
func cacheDir() string {
	if dir := os.Getenv(envCacheDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.CacheHome, appName)
}
