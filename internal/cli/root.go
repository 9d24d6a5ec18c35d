package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/assignpack/pkg/config"
	"github.com/matzehuels/assignpack/pkg/theme"
)

// packOpts holds the command-line flags for the root (pack) command.
type packOpts struct {
	assignment      string // "7" or "Assignment7"
	name            string // student name, falls back to config
	studentID       string // student ID, falls back to config
	cFile           string // C source; defaults to the only .c file in the working directory
	docFile         string // existing .doc to include instead of generating one
	autoDoc         bool   // generate the document
	runCommand      string // shell command run instead of compiling
	displayTemplate string // template for the command shown in the screenshot
	outputDir       string // where the folder and zip are created
	theme           string // screenshot theme
	noWatermark     bool   // omit the closing watermark paragraph
	force           bool   // replace an existing folder and zip
	noCache         bool   // disable the screenshot cache
	refresh         bool   // re-render the screenshot even when cached

	// Set when the flag was given explicitly; these are only valid with auto-doc.
	runCommandSet      bool
	displayTemplateSet bool
	themeSet           bool
}

// packCommand creates the root command, which packs the current directory.
func (c *CLI) packCommand() *cobra.Command {
	var opts packOpts
	var verbose bool

	cmd := &cobra.Command{
		Use:   "assignpack",
		Short: "Pack a C assignment into a submission folder and zip",
		Long: `assignpack copies the source files in the current directory into an
<assignment>_<name>_<id>_Submission folder, adds the submission document and
zips the folder.

With --auto-doc the document is generated: the program is compiled and run,
and its source, a screenshot of the run and the captured output are written
to an RTF document saved with a .doc name.`,
		Example: `  assignpack -a 3 --auto-doc
  assignpack -a Assignment3 -n JaneDoe -i 12345 --doc-file report.doc
  assignpack -a 3 --auto-doc --run-command "make run" --run-display-template "./{c_stem}"`,
		Args:         cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				c.SetLogLevel(LogDebug)
				installLogHooks(c.Logger)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			opts.runCommandSet = flags.Changed("run-command")
			opts.displayTemplateSet = flags.Changed("run-display-template")
			opts.themeSet = flags.Changed("theme")
			return c.runPack(cmd.Context(), &opts)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	f := cmd.Flags()
	f.StringVarP(&opts.assignment, "assignment", "a", "", "assignment number or label (e.g. 7 or Assignment7)")
	f.StringVarP(&opts.name, "name", "n", "", "student name (default from config)")
	f.StringVarP(&opts.studentID, "id", "i", "", "student ID (default from config)")
	f.StringVarP(&opts.cFile, "c-file", "c", "", "C source file (default: the only .c file here)")
	f.StringVarP(&opts.docFile, "doc-file", "d", "", "existing .doc to include")
	f.BoolVar(&opts.autoDoc, "auto-doc", false, "generate the submission document")
	f.StringVar(&opts.runCommand, "run-command", "", "shell command to run instead of compiling (auto-doc)")
	f.StringVar(&opts.displayTemplate, "run-display-template", "", "command shown in the screenshot, e.g. ./{c_stem} (auto-doc)")
	f.StringVarP(&opts.outputDir, "output-dir", "o", "", "output directory (default: current directory)")
	f.StringVarP(&opts.theme, "theme", "t", "", "screenshot theme (auto-doc)")
	f.BoolVar(&opts.noWatermark, "no-watermark", false, "omit the watermark line")
	f.BoolVarP(&opts.force, "force", "f", false, "overwrite an existing submission folder and zip")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the screenshot cache")
	f.BoolVar(&opts.refresh, "refresh", false, "re-render the screenshot even when cached")

	_ = cmd.RegisterFlagCompletionFunc("theme", completeThemes)

	return cmd
}

// completeThemes offers built-in and custom theme names.
func completeThemes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return themeNames(), cobra.ShellCompDirectiveNoFileComp
}

// themeNames lists built-in themes followed by custom ones.
func themeNames() []string {
	names := theme.Builtins()
	return append(names, theme.Available(config.ThemesDir())...)
}
