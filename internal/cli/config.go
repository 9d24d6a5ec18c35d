package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/assignpack/pkg/config"
	"github.com/matzehuels/assignpack/pkg/errors"
	"github.com/matzehuels/assignpack/pkg/submission"
)

// knownEditors are tried in order when neither the config, $VISUAL nor
// $EDITOR names a usable editor.
var knownEditors = []string{
	"code --wait",
	"codium --wait",
	"zed --wait",
	"subl --wait",
	"hx",
	"nvim",
	"vim",
	"nano",
	"micro",
	"emacs -nw",
	"kak",
	"notepad",
}

// configCommand creates the config command. Without a subcommand it shows
// the current config.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change saved defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(config.Path())
		},
	})
	cmd.AddCommand(c.configSetCommand())
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Delete the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path()
			if err := config.Remove(path); err != nil {
				return err
			}
			printSuccess("Config reset: %s", path)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "edit",
		Aliases: []string{"editor"},
		Short:   "Open the config file in an editor",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editConfig()
		},
	})

	return cmd
}

func showConfig() error {
	path := config.Path()
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	printConfig(path, cfg)
	return nil
}

func printConfig(path string, cfg *config.Config) {
	printKeyValue("path", path)
	for _, e := range cfg.Entries() {
		printKeyValue(e.Key, e.Value)
	}
}

// configSetOpts holds the flags for "config set". Clear flags run before the
// matching set flag.
type configSetOpts struct {
	name, studentID, outputDir         string
	runCommand, displayTemplate, theme string
	editor                             string
	autoDoc, watermark                 bool

	clearRunCommand, clearDisplayTemplate bool
	clearTheme, clearEditor               bool
}

func (c *CLI) configSetCommand() *cobra.Command {
	var opts configSetOpts

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update saved defaults",
		Example: `  assignpack config set --name "Jane Doe" --id 12345
  assignpack config set --auto-doc --theme dracula
  assignpack config set --clear-run-command`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path()
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if err := applySet(cmd, cfg, &opts); err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			printSuccess("Config updated")
			printConfig(path, cfg)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.name, "name", "n", "", "student name")
	f.StringVarP(&opts.studentID, "id", "i", "", "student ID")
	f.StringVarP(&opts.outputDir, "output-dir", "o", "", "default output directory")
	f.BoolVar(&opts.autoDoc, "auto-doc", false, "generate documents by default")
	f.StringVar(&opts.runCommand, "run-command", "", "default run command")
	f.StringVar(&opts.displayTemplate, "run-display-template", "", "default display template")
	f.StringVarP(&opts.theme, "theme", "t", "", "default screenshot theme")
	f.StringVar(&opts.editor, "editor", "", "editor used by config edit")
	f.BoolVar(&opts.watermark, "watermark", true, "include the watermark line")
	f.BoolVar(&opts.clearRunCommand, "clear-run-command", false, "remove the run command")
	f.BoolVar(&opts.clearDisplayTemplate, "clear-run-display-template", false, "remove the display template")
	f.BoolVar(&opts.clearTheme, "clear-theme", false, "remove the theme")
	f.BoolVar(&opts.clearEditor, "clear-editor", false, "remove the editor")

	_ = cmd.RegisterFlagCompletionFunc("theme", completeThemes)

	return cmd
}

// applySet copies every explicitly given flag into cfg.
func applySet(cmd *cobra.Command, cfg *config.Config, opts *configSetOpts) error {
	flags := cmd.Flags()
	changed := false
	set := func(name string) bool {
		if flags.Changed(name) {
			changed = true
			return true
		}
		return false
	}

	if set("name") {
		v, err := submission.CleanName(opts.name, "name")
		if err != nil {
			return err
		}
		cfg.Name = &v
	}
	if set("id") {
		v, err := submission.CleanName(opts.studentID, "student ID")
		if err != nil {
			return err
		}
		cfg.StudentID = &v
	}
	if set("output-dir") {
		if info, err := os.Stat(opts.outputDir); err != nil || !info.IsDir() {
			return invalid("not a directory: '%s'", opts.outputDir)
		}
		cfg.OutputDir = &opts.outputDir
	}
	if set("auto-doc") {
		cfg.AutoDoc = &opts.autoDoc
	}
	if set("clear-run-command") {
		cfg.RunCommand = nil
	}
	if set("run-command") {
		v, err := config.NonBlank(opts.runCommand, "run-command")
		if err != nil {
			return err
		}
		cfg.RunCommand = v
	}
	if set("clear-run-display-template") {
		cfg.RunDisplayTemplate = nil
	}
	if set("run-display-template") {
		v, err := config.NonBlank(opts.displayTemplate, "run-display-template")
		if err != nil {
			return err
		}
		cfg.RunDisplayTemplate = v
	}
	if set("clear-theme") {
		cfg.Theme = nil
	}
	if set("theme") {
		v, err := config.NonBlank(opts.theme, "theme")
		if err != nil {
			return err
		}
		cfg.Theme = v
	}
	if set("clear-editor") {
		cfg.Editor = nil
	}
	if set("editor") {
		v, err := config.NonBlank(opts.editor, "editor")
		if err != nil {
			return err
		}
		cfg.Editor = v
	}
	if set("watermark") {
		cfg.Watermark = &opts.watermark
	}

	if !changed {
		return invalid("nothing to update, pass at least one flag (see config set --help)")
	}
	return nil
}

// editConfig opens the config file in an editor and remembers the editor.
func (c *CLI) editConfig() error {
	path := config.Path()
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.Save(path, cfg); err != nil {
			return err
		}
	}

	editor := findEditor(cfg, os.Getenv("VISUAL"), os.Getenv("EDITOR"))
	if editor == "" {
		editor = c.pickEditor(os.Stderr)
	}
	if editor == "" {
		return invalid("no editor found, set $EDITOR or use config set --editor")
	}

	printInfo("Opening %s ...", path)
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return errors.IO(err, "launching '%s'", parts[0])
		}
		printWarning("editor exited with %s", exitErr.ProcessState)
	}

	// Reload: the user may have changed the file.
	if cfg, err = config.Load(path); err != nil {
		return err
	}
	if cfg.Editor == nil || *cfg.Editor != editor {
		cfg.Editor = &editor
		if err := config.Save(path, cfg); err != nil {
			return err
		}
	}
	printSuccess("Config editor closed")
	return nil
}

// findEditor returns the first candidate whose program is on PATH: the
// configured editor, then visual and editor (from the environment), then
// knownEditors.
func findEditor(cfg *config.Config, visual, editor string) string {
	var candidates []string
	if cfg.Editor != nil {
		candidates = append(candidates, *cfg.Editor)
	}
	candidates = append(candidates, visual, editor)
	candidates = append(candidates, knownEditors...)

	for _, cand := range candidates {
		cand = strings.TrimSpace(cand)
		if cand != "" && editorExists(cand) {
			return cand
		}
	}
	return ""
}

func editorExists(cmd string) bool {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return false
	}
	_, err := exec.LookPath(fields[0])
	return err == nil
}

// pickEditor shows a numbered menu of knownEditors and reads a choice from
// c.In. It returns "" when input ends.
func (c *CLI) pickEditor(w io.Writer) string {
	fmt.Fprintln(w, "  No editor detected. Pick one:")
	fmt.Fprintln(w)
	for i, name := range knownEditors {
		fmt.Fprintf(w, "    %s  %s\n", StyleHighlight.Render(fmt.Sprintf("[%d]", i+1)), name)
	}
	fmt.Fprintln(w)

	sc := bufio.NewScanner(c.In)
	for {
		fmt.Fprint(w, "  Choice: ")
		if !sc.Scan() {
			return ""
		}
		if n, err := strconv.Atoi(strings.TrimSpace(sc.Text())); err == nil && n >= 1 && n <= len(knownEditors) {
			return knownEditors[n-1]
		}
		fmt.Fprintf(w, "  invalid choice, enter 1-%d\n", len(knownEditors))
	}
}
