package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javanhut/lineage/internal/cas"
	"github.com/javanhut/lineage/internal/colors"
	"github.com/javanhut/lineage/internal/commit"
	"github.com/javanhut/lineage/internal/refs"
)

var timelineCmd = &cobra.Command{
	Use:     "timeline",
	Aliases: []string{"tl"},
	Short:   "Manage timelines",
	Long:    `Create, list, switch and remove timelines`,
}

var timelineFrom string

var createTimelineCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new timeline",
	Long: `Create a new timeline pointing at the commit of the current timeline,
or of the timeline named by --from.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		repo, err := openRepository()
		if err != nil {
			return err
		}
		defer repo.Close()

		base := timelineFrom
		if base == "" {
			base, err = repo.refs.CurrentTimeline()
			if err != nil && !errors.Is(err, refs.ErrNoHead) {
				return err
			}
		}

		var target cas.Hash
		if base != "" {
			tl, err := repo.refs.GetTimeline(base)
			if err != nil {
				return err
			}
			target = tl.Target
		}

		if err := repo.refs.CreateTimeline(name, target, fmt.Sprintf("Branched from '%s'", base)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created timeline %s\n", colors.Bold(name))
		return nil
	},
}

var switchTimelineCmd = &cobra.Command{
	Use:   "switch <name>",
	Short: "Switch to a different timeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		defer repo.Close()

		if err := repo.refs.SetCurrentTimeline(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Switched to timeline %s\n", colors.Bold(args[0]))
		return nil
	},
}

var listTimelineCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all timelines",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		defer repo.Close()

		timelines, err := repo.refs.ListTimelines()
		if err != nil {
			return err
		}
		current, err := repo.refs.CurrentTimeline()
		if err != nil && !errors.Is(err, refs.ErrNoHead) {
			return err
		}
		selection, err := repo.refs.Selection()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, tl := range timelines {
			marker := "  "
			name := tl.Name
			if tl.Name == current {
				marker = "* "
				name = colors.Green(name)
			}
			target := colors.Gray("(no commits)")
			if !tl.Target.IsZero() {
				target = colors.Yellow(commit.ID(tl.Target).Short())
			}
			hidden := ""
			if selected, ok := selection[tl.Name]; ok && !selected {
				hidden = colors.Gray(" [hidden]")
			}
			fmt.Fprintf(out, "%s%s %s%s\n", marker, name, target, hidden)
		}
		return nil
	},
}

var removeTimelineCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a timeline",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		defer repo.Close()

		if err := repo.refs.RemoveTimeline(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed timeline %s\n", args[0])
		return nil
	},
}

func init() {
	createTimelineCmd.Flags().StringVar(&timelineFrom, "from", "", "Timeline to branch from")
}
