package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javanhut/lineage/internal/colors"
)

var selectCmd = &cobra.Command{
	Use:   "select [timeline...]",
	Short: "Choose which timelines contribute to the log",
	Long: `Mark timelines as shown or hidden in 'lineage log' and 'lineage browse'.
Every timeline is shown until it is hidden here.

Examples:
  lineage select feature          # show feature
  lineage select --off spike wip  # hide spike and wip
  lineage select --reset          # show everything again
  lineage select                  # list the current selection`,
	RunE: runSelect,
}

var (
	selectOff   bool
	selectReset bool
)

func init() {
	selectCmd.Flags().BoolVar(&selectOff, "off", false, "Hide the named timelines")
	selectCmd.Flags().BoolVar(&selectReset, "reset", false, "Forget the selection and show every timeline")
}

func runSelect(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	if selectReset {
		if len(args) > 0 {
			return fmt.Errorf("--reset takes no timeline names")
		}
		return repo.refs.ResetSelection()
	}

	// Validate every name before changing anything.
	for _, name := range args {
		if _, err := repo.refs.GetTimeline(name); err != nil {
			return err
		}
	}
	for _, name := range args {
		if err := repo.refs.SetSelected(name, !selectOff); err != nil {
			return err
		}
	}
	if len(args) > 0 {
		return nil
	}

	timelines, err := repo.refs.ListTimelines()
	if err != nil {
		return err
	}
	selection, err := repo.refs.Selection()
	if err != nil {
		return err
	}
	for _, tl := range timelines {
		box := colors.Green("[x]")
		if selected, ok := selection[tl.Name]; ok && !selected {
			box = colors.Gray("[ ]")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", box, tl.Name)
	}
	return nil
}
