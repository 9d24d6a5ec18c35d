package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/assignpack/pkg/config"
	"github.com/matzehuels/assignpack/pkg/errors"
	"github.com/matzehuels/assignpack/pkg/submission"
	"github.com/matzehuels/assignpack/pkg/theme"
)

// initCommand creates the interactive first-run setup command.
func (c *CLI) initCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Save your name, ID and defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path()
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			printHeader("assignpack setup")
			fmt.Println()

			interactive := isTerminal(os.Stdin) && isTerminal(os.Stdout)
			if err := c.runInit(cfg, os.Stderr, interactive); err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}

			fmt.Println()
			printSuccess("Config saved")
			printConfig(path, cfg)
			return nil
		},
	}
}

// runInit asks for each setting on w and stores the answers in cfg. Empty
// answers keep the current value. When interactive is false the theme is
// read as plain text instead of through the picker.
func (c *CLI) runInit(cfg *config.Config, w io.Writer, interactive bool) error {
	in := bufio.NewReader(c.In)

	name, err := prompt(in, w, "Student name (e.g. JoeBloggs)")
	if err != nil {
		return err
	}
	if name != "" {
		v, err := submission.CleanName(name, "name")
		if err != nil {
			return err
		}
		cfg.Name = &v
	}

	id, err := prompt(in, w, "Student ID")
	if err != nil {
		return err
	}
	if id != "" {
		v, err := submission.CleanName(id, "student ID")
		if err != nil {
			return err
		}
		cfg.StudentID = &v
	}

	var chosen string
	if interactive {
		chosen, err = pickTheme(cfg)
	} else {
		chosen, err = prompt(in, w, "Theme ("+strings.Join(themeNames(), ", ")+")")
	}
	if err != nil {
		return err
	}
	if chosen != "" {
		if err := errors.ValidateThemeName(chosen); err != nil {
			return err
		}
		cfg.Theme = &chosen
	}

	auto, err := prompt(in, w, "Enable auto-doc? [Y/n]")
	if err != nil {
		return err
	}
	enabled := parseYes(auto)
	cfg.AutoDoc = &enabled
	return nil
}

// pickTheme runs the theme picker. It returns "" when the user quits.
func pickTheme(cfg *config.Config) (string, error) {
	current := ""
	if cfg.Theme != nil {
		current = *cfg.Theme
	}
	model := NewThemeListModel(theme.NewResolver(config.ThemesDir()), themeNames(), current)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "theme picker")
	}
	return final.(ThemeListModel).Selected, nil
}

// prompt prints label and reads one trimmed line. End of input yields "".
func prompt(in *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprintf(w, "  %s ", StyleValue.Bold(true).Render(label))
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.IO(err, "reading input")
	}
	return strings.TrimSpace(line), nil
}

// parseYes treats an empty answer as yes.
func parseYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "y", "yes":
		return true
	}
	return false
}
