// Package config persists the user's defaults in
// <config dir>/assignment_packer/config.toml.
//
// Every field is optional; unset fields fall back to command-line flags or
// built-in defaults. Older camelCase keys (autoDoc, runCommand,
// runDisplayTemplate) and student_id are still read, and rewritten in the
// current form on the next Save.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	"github.com/matzehuels/assignpack/pkg/errors"
)

const (
	// DirName is the directory under the user config dir.
	DirName = "assignment_packer"

	// FileName is the config file inside Dir.
	FileName = "config.toml"

	// EnvConfigDir overrides Dir when set.
	EnvConfigDir = "ASSIGNPACK_CONFIG_DIR"
)

// Config holds the persisted defaults.
type Config struct {
	Name               *string `toml:"name,omitempty"`
	StudentID          *string `toml:"id,omitempty"`
	OutputDir          *string `toml:"output_dir,omitempty"`
	AutoDoc            *bool   `toml:"auto_doc,omitempty"`
	RunCommand         *string `toml:"run_command,omitempty"`
	RunDisplayTemplate *string `toml:"run_display_template,omitempty"`
	Theme              *string `toml:"theme,omitempty"`
	Editor             *string `toml:"editor,omitempty"`
	Watermark          *bool   `toml:"watermark,omitempty"`
}

// legacyKeys are read but never written.
type legacyKeys struct {
	StudentID          *string `toml:"student_id"`
	AutoDoc            *bool   `toml:"autoDoc"`
	RunCommand         *string `toml:"runCommand"`
	RunDisplayTemplate *string `toml:"runDisplayTemplate"`
}

// Dir returns the config directory.
func Dir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.ConfigHome, DirName)
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(Dir(), FileName)
}

// ThemesDir returns the directory searched for custom theme files.
func ThemesDir() string {
	return filepath.Join(Dir(), "themes")
}

// Load reads the config at path. A missing file yields an empty Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, errors.IO(err, "reading config")
	}
	return Parse(data)
}

// Parse decodes config TOML.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "bad config")
	}

	var legacy legacyKeys
	if _, err := toml.Decode(string(data), &legacy); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "bad config")
	}
	cfg.StudentID = firstSet(cfg.StudentID, legacy.StudentID)
	cfg.AutoDoc = firstSet(cfg.AutoDoc, legacy.AutoDoc)
	cfg.RunCommand = firstSet(cfg.RunCommand, legacy.RunCommand)
	cfg.RunDisplayTemplate = firstSet(cfg.RunDisplayTemplate, legacy.RunDisplayTemplate)

	return &cfg, nil
}

func firstSet[T any](v, fallback *T) *T {
	if v != nil {
		return v
	}
	return fallback
}

// Save writes cfg to path, creating the parent directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.IO(err, "creating config directory")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "serializing config")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.IO(err, "writing config")
	}
	return nil
}

// Remove deletes the config file at path. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.IO(err, "can't remove config")
	}
	return nil
}

// WatermarkEnabled reports the watermark setting, on by default.
func (c *Config) WatermarkEnabled() bool {
	return c.Watermark == nil || *c.Watermark
}

// AutoDocEnabled reports the auto-doc setting, off by default.
func (c *Config) AutoDocEnabled() bool {
	return c.AutoDoc != nil && *c.AutoDoc
}

// Entry is one displayed config value.
type Entry struct {
	Key   string
	Value string
}

// Entries lists every key with its value, "-" when unset, in file order.
func (c *Config) Entries() []Entry {
	return []Entry{
		{"name", str(c.Name)},
		{"id", str(c.StudentID)},
		{"output_dir", str(c.OutputDir)},
		{"auto_doc", boolStr(c.AutoDoc)},
		{"run_command", str(c.RunCommand)},
		{"run_display_template", str(c.RunDisplayTemplate)},
		{"theme", str(c.Theme)},
		{"editor", str(c.Editor)},
		{"watermark", boolStr(c.Watermark)},
	}
}

func str(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}

func boolStr(v *bool) string {
	switch {
	case v == nil:
		return "-"
	case *v:
		return "true"
	default:
		return "false"
	}
}

// NonBlank trims s and returns a pointer to it, or an error naming label when
// nothing is left.
func NonBlank(s, label string) (*string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s cannot be blank", label)
	}
	return &t, nil
}
