package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/javanhut/lineage/internal/colors"
	"github.com/javanhut/lineage/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get and set configuration options",
	Long: `Get and set lineage configuration options.

Configuration can be set at two levels:
- Global (~/.lineageconfig) - applies to all repositories
- Repository (.lineage/config) - applies to current repository only

Examples:
  lineage config user.name "Your Name"
  lineage config --global user.email "you@example.com"
  lineage config log.limit 100
  lineage config --list`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

var (
	configGlobal bool
	configList   bool
)

func init() {
	configCmd.Flags().BoolVar(&configGlobal, "global", false, "Use global config file")
	configCmd.Flags().BoolVar(&configList, "list", false, "List all configuration")
}

func runConfig(cmd *cobra.Command, args []string) error {
	l := loader()
	out := cmd.OutOrStdout()

	switch {
	case configList || len(args) == 0:
		for _, key := range config.Keys() {
			value, err := l.Get(key)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s=%s\n", colors.Cyan(key), value)
		}
		return nil

	case len(args) == 1:
		value, err := l.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, value)
		return nil

	default:
		if !configGlobal {
			if _, err := os.Stat(repoDir()); err != nil {
				return errNotRepository
			}
		}
		return l.Set(args[0], args[1], configGlobal)
	}
}
