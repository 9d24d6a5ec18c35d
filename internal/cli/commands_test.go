package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/assignpack/pkg/cache"
	"github.com/matzehuels/assignpack/pkg/config"
	"github.com/matzehuels/assignpack/pkg/errors"
	"github.com/matzehuels/assignpack/pkg/theme"
)

func TestThemeListModel(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.toml"), []byte("bg = ["), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewThemeListModel(theme.NewResolver(dir), []string{"default", "dracula", "broken"}, "dracula")
	if m.Cursor != 1 {
		t.Fatalf("cursor = %d, want 1 (current theme)", m.Cursor)
	}
	if m.Entries[2].Err == nil {
		t.Fatal("broken theme should carry its load error")
	}

	update := func(m ThemeListModel, msg tea.Msg) (ThemeListModel, tea.Cmd) {
		next, cmd := m.Update(msg)
		return next.(ThemeListModel), cmd
	}

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || m.Selected != "" {
		t.Errorf("enter on an invalid theme selected %q", m.Selected)
	}

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyDown})
	if m.Cursor != 2 {
		t.Errorf("cursor moved past the last entry: %d", m.Cursor)
	}

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyUp})
	m, cmd = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || m.Selected != "dracula" {
		t.Errorf("selected = %q, want dracula", m.Selected)
	}

	view := m.View()
	for _, want := range []string{"Select Theme", "dracula", "(invalid theme file)", "[2/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestThemeListModelScrolls(t *testing.T) {
	m := NewThemeListModel(theme.NewResolver(""), theme.Builtins(), "")
	next, _ := m.Update(tea.WindowSizeMsg{Height: 8, Width: 80})
	m = next.(ThemeListModel)
	if m.Height != 3 {
		t.Fatalf("height = %d, want 3", m.Height)
	}

	for range 4 {
		next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m = next.(ThemeListModel)
	}
	if m.Cursor != 4 || m.Offset != 2 {
		t.Errorf("cursor = %d offset = %d, want 4 and 2", m.Cursor, m.Offset)
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil || next.(ThemeListModel).Selected != "" {
		t.Error("q should quit without selecting")
	}
}

func TestRunInit(t *testing.T) {
	t.Setenv(config.EnvConfigDir, t.TempDir())

	tests := []struct {
		name    string
		input   string
		wantErr string
		check   func(t *testing.T, cfg *config.Config)
	}{
		{
			name:  "all answers",
			input: "Jane Doe\n42\ndracula\nn\n",
			check: func(t *testing.T, cfg *config.Config) {
				if *cfg.Name != "JaneDoe" || *cfg.StudentID != "42" || *cfg.Theme != "dracula" {
					t.Errorf("cfg = %+v", cfg.Entries())
				}
				if cfg.AutoDocEnabled() {
					t.Error("auto-doc should be off after answering n")
				}
			},
		},
		{
			name:  "empty answers keep values",
			input: "\n\n\n\n",
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Name != nil || cfg.Theme != nil {
					t.Errorf("cfg = %+v", cfg.Entries())
				}
				if !cfg.AutoDocEnabled() {
					t.Error("empty auto-doc answer should mean yes")
				}
			},
		},
		{
			name:  "end of input",
			input: "Jane",
			check: func(t *testing.T, cfg *config.Config) {
				if *cfg.Name != "Jane" || cfg.StudentID != nil {
					t.Errorf("cfg = %+v", cfg.Entries())
				}
			},
		},
		{
			name:    "bad name",
			input:   "Jane/Doe\n",
			wantErr: "invalid character in name: '/'",
		},
		{
			name:    "theme traversal",
			input:   "Jane\n42\n../x\n",
			wantErr: "theme name cannot contain path traversal sequences (..)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := quietCLI()
			c.In = strings.NewReader(tt.input)
			cfg := &config.Config{}

			err := c.runInit(cfg, io.Discard, false)
			if tt.wantErr != "" {
				if err == nil || errors.UserMessage(err) != tt.wantErr {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestParseYes(t *testing.T) {
	for in, want := range map[string]bool{"": true, "y": true, " YES ": true, "n": false, "no": false, "maybe": false} {
		if got := parseYes(in); got != want {
			t.Errorf("parseYes(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConfigSet(t *testing.T) {
	t.Setenv(config.EnvConfigDir, t.TempDir())
	out := t.TempDir()

	err := runRoot(t, "config", "set", "--name", "Jane Doe", "--id", "42", "-o", out,
		"--auto-doc", "--theme", "dracula", "--run-command", "make run", "--watermark=false")
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		t.Fatal(err)
	}
	if *cfg.Name != "JaneDoe" || *cfg.StudentID != "42" || *cfg.OutputDir != out || *cfg.Theme != "dracula" {
		t.Errorf("cfg = %+v", cfg.Entries())
	}
	if !cfg.AutoDocEnabled() || cfg.WatermarkEnabled() || *cfg.RunCommand != "make run" {
		t.Errorf("cfg = %+v", cfg.Entries())
	}

	if err := runRoot(t, "config", "set", "--clear-run-command", "--clear-theme"); err != nil {
		t.Fatal(err)
	}
	if cfg, _ = config.Load(config.Path()); cfg.RunCommand != nil || cfg.Theme != nil || cfg.Name == nil {
		t.Errorf("after clear: %+v", cfg.Entries())
	}
}

func TestConfigSetErrors(t *testing.T) {
	t.Setenv(config.EnvConfigDir, t.TempDir())
	missing := filepath.Join(t.TempDir(), "missing")

	tests := []struct {
		args []string
		want string
	}{
		{nil, "nothing to update, pass at least one flag (see config set --help)"},
		{[]string{"--run-command", "  "}, "run-command cannot be blank"},
		{[]string{"-o", missing}, "not a directory: '" + missing + "'"},
		{[]string{"--id", ""}, "student ID cannot be empty"},
	}

	for _, tt := range tests {
		err := runRoot(t, append([]string{"config", "set"}, tt.args...)...)
		if err == nil || errors.UserMessage(err) != tt.want {
			t.Errorf("config set %v: err = %v, want %q", tt.args, err, tt.want)
		}
	}
	if _, err := os.Stat(config.Path()); !os.IsNotExist(err) {
		t.Error("failed updates should not write the config file")
	}
}

func TestFindEditor(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on the executable bit")
	}
	bin := t.TempDir()
	t.Setenv("PATH", bin)

	if got := findEditor(&config.Config{}, "", ""); got != "" {
		t.Errorf("findEditor with empty PATH = %q", got)
	}

	name := "myedit"
	if err := os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	if got := findEditor(&config.Config{}, "missing-visual", name+" --wait"); got != name+" --wait" {
		t.Errorf("findEditor = %q, want the $EDITOR value", got)
	}
	if got := findEditor(&config.Config{Editor: ptr(name)}, "", ""); got != name {
		t.Errorf("findEditor = %q, want the configured editor", got)
	}
}

func TestPickEditor(t *testing.T) {
	c := quietCLI()
	c.In = strings.NewReader("x\n99\n3\n")
	if got := c.pickEditor(io.Discard); got != knownEditors[2] {
		t.Errorf("pickEditor = %q, want %q", got, knownEditors[2])
	}

	c.In = strings.NewReader("nope\n")
	if got := c.pickEditor(io.Discard); got != "" {
		t.Errorf("pickEditor at end of input = %q", got)
	}
}

func TestCacheClearCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envCacheDir, dir)

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := fc.Set(ctx, "screenshot:abc", []byte("png"), 0); err != nil {
		t.Fatal(err)
	}

	if err := runRoot(t, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := fc.Get(ctx, "screenshot:abc"); ok {
		t.Error("entry should be gone after cache clear")
	}
}

func TestThemesCommand(t *testing.T) {
	t.Setenv(config.EnvConfigDir, t.TempDir())
	if err := runRoot(t, "themes"); err != nil {
		t.Fatal(err)
	}
}
