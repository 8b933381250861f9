package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/javanhut/lineage/internal/cas"
	"github.com/javanhut/lineage/internal/colors"
	"github.com/javanhut/lineage/internal/config"
	"github.com/javanhut/lineage/internal/converter"
	"github.com/javanhut/lineage/internal/gitrepo"
	"github.com/javanhut/lineage/internal/refs"
)

// RepoDirName is the directory holding a lineage repository.
const RepoDirName = ".lineage"

// DefaultTimeline is created by forge and checked out initially.
const DefaultTimeline = "main"

var rootCmd = &cobra.Command{
	Use:   "lineage",
	Short: "Lineage is a commit history browser",
	Long: `Lineage records commits on timelines and shows the combined history of
the timelines you select, newest first. It can also read an existing Git
repository with --git.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var initialCmd = &cobra.Command{
	Use:   "forge",
	Short: "Initialize",
	Long:  "Initializes a new lineage repository",
	Args:  cobra.NoArgs,
	RunE:  forgeCommand,
}

var (
	workDir  string
	verbose  bool
	forgeGit string
)

// now is the commit clock; tests replace it.
var now = time.Now

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workDir, "dir", "C", ".", "Run as if started in this directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	initialCmd.Flags().StringVar(&forgeGit, "git", "", "Import the branches of the Git repository at this path")
	rootCmd.AddCommand(initialCmd)
	rootCmd.AddCommand(sealCmd)

	rootCmd.AddCommand(timelineCmd)
	timelineCmd.AddCommand(createTimelineCmd, switchTimelineCmd, listTimelineCmd, removeTimelineCmd)

	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(configCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	slog.SetDefault(newLogger(cmd.ErrOrStderr(), verbose))

	cfg, err := loader().Load()
	if err != nil {
		return err
	}
	if !cfg.Color.UI {
		colors.SetColorEnabled(false)
	}
	return nil
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func repoDir() string {
	return filepath.Join(workDir, RepoDirName)
}

func loader() config.Loader {
	return config.DefaultLoader(repoDir())
}

func forgeCommand(cmd *cobra.Command, args []string) error {
	dir := repoDir()
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("lineage repository already exists at %s", dir)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(filepath.Join(dir, "objects"), 0o755); err != nil {
		return fmt.Errorf("create repository: %w", err)
	}

	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	out := cmd.OutOrStdout()
	current := DefaultTimeline
	if forgeGit != "" {
		imported, head, err := importGit(repo, forgeGit)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Imported %d commits on %d timelines from %s\n", imported.Converted, len(imported.Tips), forgeGit)
		if imported.Skipped > 0 {
			fmt.Fprintln(out, colors.WarningText(fmt.Sprintf("Skipped %d unreadable commits", imported.Skipped)))
		}
		if head != "" {
			current = head
		}
	}

	if _, err := repo.refs.GetTimeline(current); errors.Is(err, refs.ErrTimelineNotFound) {
		if err := repo.refs.CreateTimeline(current, cas.Hash{}, "Initial empty repository"); err != nil {
			return fmt.Errorf("create %s timeline: %w", current, err)
		}
	} else if err != nil {
		return err
	}
	if err := repo.refs.SetCurrentTimeline(current); err != nil {
		return fmt.Errorf("set current timeline: %w", err)
	}

	slog.Debug("repository initialized", "dir", dir)
	fmt.Fprintf(out, "Initialized lineage repository in %s\n", dir)
	return nil
}

// importGit copies the branches of a Git repository into repo and returns
// the name of the timeline Git's HEAD was on.
func importGit(repo *repository, path string) (*converter.ConversionResult, string, error) {
	g, err := gitrepo.Open(path)
	if err != nil {
		return nil, "", err
	}
	tips, err := g.ListTips()
	if err != nil {
		return nil, "", err
	}

	// A detached HEAD becomes a timeline of its own.
	for i := range tips {
		if tips[i].Name == gitrepo.DetachedTip {
			tips[i].Name = "detached"
		}
	}

	result, err := converter.NewImporter(g, repo.objects, slog.Default()).Import(tips)
	if err != nil {
		return nil, "", err
	}

	head := ""
	for _, tip := range tips {
		h, ok := result.Tips[tip.Name]
		if !ok {
			continue
		}
		if err := repo.refs.CreateTimeline(tip.Name, h, "Imported from Git"); err != nil {
			return nil, "", err
		}
		if tip.Head {
			head = tip.Name
		}
	}
	return result, head, nil
}
