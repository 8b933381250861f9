package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javanhut/lineage/internal/colors"
	"github.com/javanhut/lineage/internal/lineage"
	"github.com/javanhut/lineage/internal/logview"
	"github.com/javanhut/lineage/internal/seals"
	"github.com/javanhut/lineage/internal/timeago"
)

var logCmd = &cobra.Command{
	Use:   "log [options]",
	Short: "Show commit history",
	Long: `Display the combined history of the selected timelines, newest first.
Each commit appears once even when several timelines reach it.

Examples:
  lineage log                        # selected timelines, log.limit commits
  lineage log --oneline --limit 10   # concise, last 10 commits
  lineage log --only main,feature    # just these timelines
  lineage log --exclude spike        # everything selected except spike
  lineage log --all                  # every timeline, ignoring the selection
  lineage log --git ../project       # a Git repository's branches`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

var (
	logOneline   bool
	logLimit     int
	logAll       bool
	logNicknames bool
	logOnly      string
	logExclude   string
	logGit       string
)

func init() {
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "Show one line per commit")
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 0, "Limit number of commits to show (default log.limit)")
	logCmd.Flags().BoolVar(&logAll, "all", false, "Show commits from all timelines")
	logCmd.Flags().BoolVar(&logNicknames, "nicknames", false, "Show seal nicknames instead of ids")
	logCmd.Flags().StringVar(&logOnly, "only", "", "Comma separated timelines to show exclusively")
	logCmd.Flags().StringVar(&logExclude, "exclude", "", "Comma separated timelines to hide")
	logCmd.Flags().StringVar(&logGit, "git", "", "Read history from the Git repository at this path")
}

func runLog(cmd *cobra.Command, args []string) error {
	s, err := openSession(logGit)
	if err != nil {
		return err
	}
	defer s.Close()

	bound := s.cfg.Log.Limit
	if cmd.Flags().Changed("limit") {
		bound = logLimit
	}

	v, err := s.view(bound)
	if err != nil {
		return err
	}
	if changes := selectionChanges(v.Tips(), logAll, splitNames(logOnly), splitNames(logExclude)); len(changes) > 0 {
		if err := v.Select(changes); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	nodes := v.CurrentLog()
	if len(nodes) == 0 {
		fmt.Fprintln(out, "No commits yet.")
		return nil
	}

	p := logPrinter{
		out:       out,
		labels:    tipLabels(v.Tips()),
		nicknames: logNicknames || s.cfg.Log.Nicknames,
		now:       now(),
	}
	if logOneline || (s.cfg.Log.Oneline && !cmd.Flags().Changed("oneline")) {
		p.oneline(nodes)
	} else {
		p.full(nodes)
	}
	return nil
}

func splitNames(s string) []string {
	var names []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// selectionChanges turns the log filter flags into one batch of selection
// changes. --all and --only start from a clean slate; --exclude applies last.
func selectionChanges(tips []logview.Tip, all bool, only, exclude []string) map[string]bool {
	changes := make(map[string]bool)
	if all || len(only) > 0 {
		for _, tip := range tips {
			changes[tip.Name] = all
		}
	}
	for _, name := range only {
		changes[name] = true
	}
	for _, name := range exclude {
		changes[name] = false
	}
	return changes
}

type tipLabel struct {
	head  string
	names []string
}

func tipLabels(tips []logview.Tip) map[lineage.ID]*tipLabel {
	labels := make(map[lineage.ID]*tipLabel)
	for _, tip := range tips {
		l := labels[tip.Target]
		if l == nil {
			l = &tipLabel{}
			labels[tip.Target] = l
		}
		if tip.Head {
			l.head = tip.Name
		} else {
			l.names = append(l.names, tip.Name)
		}
	}
	return labels
}

type logPrinter struct {
	out       io.Writer
	labels    map[lineage.ID]*tipLabel
	nicknames bool
	now       time.Time
}

func (p logPrinter) id(n lineage.Node) string {
	if p.nicknames {
		return seals.Nickname(n.ID)
	}
	return n.ID.Short()
}

func (p logPrinter) decorations(n lineage.Node) string {
	l := p.labels[n.ID]
	if l == nil {
		return ""
	}
	return " " + colors.Decorations(l.head, l.names)
}

func (p logPrinter) full(nodes []lineage.Node) {
	for i, n := range nodes {
		kind := "commit"
		if p.nicknames {
			kind = "seal"
		}
		fmt.Fprintf(p.out, "%s %s%s\n", colors.Yellow(kind), colors.CommitID(p.id(n)), p.decorations(n))
		if len(n.Parents) > 1 {
			short := make([]string, len(n.Parents))
			for j, parent := range n.Parents {
				short[j] = parent.Short()
			}
			fmt.Fprintf(p.out, "Merge:  %s\n", strings.Join(short, " "))
		}
		if n.Author != "" {
			fmt.Fprintf(p.out, "Author: %s\n", colors.InfoText(n.Author))
		}
		at := time.Unix(n.Time, 0)
		fmt.Fprintf(p.out, "Date:   %s (%s)\n",
			at.Format("Mon Jan 2 15:04:05 2006 -0700"),
			colors.Gray(timeago.Since(at, p.now)))

		fmt.Fprintln(p.out)
		for _, line := range strings.Split(n.Message, "\n") {
			fmt.Fprintf(p.out, "    %s\n", line)
		}
		if i < len(nodes)-1 {
			fmt.Fprintln(p.out)
		}
	}
}

func (p logPrinter) oneline(nodes []lineage.Node) {
	for _, n := range nodes {
		summary := n.Summary
		if len(summary) > 72 {
			summary = summary[:69] + "..."
		}
		fmt.Fprintf(p.out, "%s%s %s\n", colors.CommitID(p.id(n)), p.decorations(n), summary)
	}
}
