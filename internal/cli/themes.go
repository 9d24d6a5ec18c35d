package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/assignpack/pkg/config"
	"github.com/matzehuels/assignpack/pkg/theme"
)

// themesCommand lists the built-in and custom themes with a colour preview.
func (c *CLI) themesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List screenshot themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := config.ThemesDir()
			r := theme.NewResolver(dir)

			printHeader("Built-in")
			for _, name := range theme.Builtins() {
				t, _ := theme.Builtin(name)
				printThemeRow(name, t)
			}

			fmt.Println()
			printHeader("Custom")
			custom := theme.Available(dir)
			if len(custom) == 0 {
				printDetail("none, add .toml files to %s", dir)
				return nil
			}
			for _, name := range custom {
				t, err := r.Resolve(name)
				if err != nil {
					printWarning("%s: %v", name, err)
					continue
				}
				printThemeRow(name, t)
			}
			return nil
		},
	}
}
