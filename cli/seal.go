package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javanhut/lineage/internal/cas"
	"github.com/javanhut/lineage/internal/colors"
	"github.com/javanhut/lineage/internal/commit"
	"github.com/javanhut/lineage/internal/seals"
)

var sealCmd = &cobra.Command{
	Use:   "seal -m <message>",
	Short: "Record a commit on the current timeline",
	Long: `Record a commit on the current timeline. Its parent is the timeline's
previous commit. Use --merge to add the commits of other timelines as
additional parents.

Examples:
  lineage seal -m "Add parser"
  lineage seal -m "Merge feature" --merge feature`,
	Args: cobra.NoArgs,
	RunE: runSeal,
}

var (
	sealMessage string
	sealMerge   []string
)

func init() {
	sealCmd.Flags().StringVarP(&sealMessage, "message", "m", "", "Commit message")
	sealCmd.Flags().StringArrayVar(&sealMerge, "merge", nil, "Timeline to merge (repeatable)")
}

func runSeal(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(sealMessage) == "" {
		return fmt.Errorf("a commit message is required (-m)")
	}

	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	cfg, err := loader().Load()
	if err != nil {
		return err
	}
	author, err := cfg.Author()
	if err != nil {
		return err
	}

	current, err := repo.refs.CurrentTimeline()
	if err != nil {
		return err
	}
	tl, err := repo.refs.GetTimeline(current)
	if err != nil {
		return err
	}

	var parents []cas.Hash
	if !tl.Target.IsZero() {
		parents = append(parents, tl.Target)
	}
	for _, name := range sealMerge {
		other, err := repo.refs.GetTimeline(name)
		if err != nil {
			return err
		}
		if other.Target.IsZero() {
			return fmt.Errorf("timeline %s has no commits to merge", name)
		}
		if !containsHash(parents, other.Target) {
			parents = append(parents, other.Target)
		}
	}

	at := now()
	hash, err := commit.NewWriter(repo.objects).Write(&commit.Commit{
		Parents:    parents,
		Author:     author,
		Committer:  author,
		AuthorTime: at,
		CommitTime: at,
		Message:    sealMessage,
	})
	if err != nil {
		return fmt.Errorf("write commit: %w", err)
	}
	if err := repo.refs.UpdateTimeline(current, hash); err != nil {
		return err
	}

	slog.Debug("sealed commit", "timeline", current, "hash", hash.String(), "parents", len(parents))
	id := commit.ID(hash)
	fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n",
		colors.InfoText(current), colors.CommitID(seals.Nickname(id)), firstLine(sealMessage))
	return nil
}

func containsHash(hashes []cas.Hash, h cas.Hash) bool {
	for _, x := range hashes {
		if x == h {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
