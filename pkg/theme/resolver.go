package theme

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/assignpack/pkg/errors"
)

// Extension is the file extension of custom theme files.
const Extension = ".toml"

// noCustomThemes is shown in place of the custom theme list when none exist.
const noCustomThemes = "(none, create themes in ~/.config/assignment_packer/themes/)"

// Resolver looks up themes by name: built-ins first, then files in Dir.
type Resolver struct {
	// Dir is the custom themes directory. Empty disables custom themes.
	Dir string
}

// NewResolver returns a Resolver reading custom themes from dir.
func NewResolver(dir string) *Resolver {
	return &Resolver{Dir: dir}
}

// Resolve returns the theme for name. The empty name selects [Default].
// Names are trimmed; a name that is only whitespace is rejected.
func (r *Resolver) Resolve(name string) (Theme, error) {
	if name == "" {
		return Default(), nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Theme{}, errors.New(errors.ErrCodeInvalidInput, "theme name cannot be empty")
	}

	if t, ok := Builtin(name); ok {
		return t, nil
	}

	if err := errors.ValidateThemeName(name); err != nil {
		return Theme{}, err
	}

	if r.Dir != "" {
		path := filepath.Join(r.Dir, filepath.FromSlash(name)+Extension)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return Theme{}, errors.New(errors.ErrCodeUnknownTheme,
		"unknown theme '%s'\n  built-in: %s\n  custom:   %s",
		name, strings.Join(builtinOrder, ", "), r.customList())
}

func (r *Resolver) customList() string {
	names := Available(r.Dir)
	if len(names) == 0 {
		return noCustomThemes
	}
	return strings.Join(names, ", ")
}

// themeFile mirrors the TOML layout; pointers distinguish unset keys.
type themeFile struct {
	Background *string  `toml:"bg"`
	Foreground *string  `toml:"fg"`
	Padding    *int     `toml:"padding"`
	Scale      *int     `toml:"scale"`
	Font       *string  `toml:"font"`
	FontSize   *float64 `toml:"font_size"`
}

// LoadFile reads a theme file. Keys that are absent keep their [Default]
// values; numeric keys are clamped to their documented ranges.
func LoadFile(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, errors.IO(err, "reading theme")
	}

	var raw themeFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Theme{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "bad theme file '%s'", path)
	}

	t := Default()
	if raw.Background != nil {
		if t.Background, err = ParseHex(*raw.Background); err != nil {
			return Theme{}, err
		}
	}
	if raw.Foreground != nil {
		if t.Foreground, err = ParseHex(*raw.Foreground); err != nil {
			return Theme{}, err
		}
	}
	if raw.Padding != nil {
		if *raw.Padding < 0 {
			return Theme{}, errors.New(errors.ErrCodeInvalidInput,
				"bad theme file '%s': padding cannot be negative", path)
		}
		t.Padding = min(*raw.Padding, MaxPadding)
	}
	if raw.Scale != nil {
		t.Scale = clamp(*raw.Scale, MinScale, MaxScale)
	}
	if raw.FontSize != nil {
		t.FontSize = clamp(*raw.FontSize, MinFontSize, MaxFontSize)
	}
	if raw.Font != nil {
		fontPath := *raw.Font
		if !filepath.IsAbs(fontPath) {
			fontPath = filepath.Join(filepath.Dir(path), fontPath)
		}
		if t.Font, err = os.ReadFile(fontPath); err != nil {
			return Theme{}, errors.IO(err, "reading font '%s'", fontPath)
		}
	}
	return t, nil
}

// Available lists the custom themes under dir as slash-separated names
// without the extension, sorted. A missing directory yields nil.
func Available(dir string) []string {
	if dir == "" {
		return nil
	}
	var names []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != dir {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || filepath.Ext(path) != Extension {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		names = append(names, filepath.ToSlash(strings.TrimSuffix(rel, Extension)))
		return nil
	})
	return sortedUnique(names)
}
