package cli

import (
	"github.com/spf13/cobra"

	"github.com/javanhut/lineage/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the log interactively",
	Long: `Open a terminal browser listing the timelines next to their combined log.
Toggle timelines with space; the log follows the selection. Selection
changes are saved for later 'lineage log' runs.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

var (
	browseGit   string
	browseLimit int
)

func init() {
	browseCmd.Flags().StringVar(&browseGit, "git", "", "Read history from the Git repository at this path")
	browseCmd.Flags().IntVarP(&browseLimit, "limit", "n", 0, "Number of commits to show (default log.limit)")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	s, err := openSession(browseGit)
	if err != nil {
		return err
	}
	defer s.Close()

	bound := s.cfg.Log.Limit
	if cmd.Flags().Changed("limit") {
		bound = browseLimit
	}
	v, err := s.view(bound)
	if err != nil {
		return err
	}

	return tui.Run(v, tui.Options{
		Nicknames: s.cfg.Log.Nicknames,
		OnSelect:  s.saveSelection,
	})
}
