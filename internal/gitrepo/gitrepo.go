// Package gitrepo reads commits and branch tips from a Git repository.
//
// Repository implements lineage.Accessor and logview.TipSource, so the log
// view can run directly against an existing Git history. Commits are
// resolved lazily through go-git; nothing is indexed up front.
package gitrepo

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/javanhut/lineage/internal/lineage"
	"github.com/javanhut/lineage/internal/logview"
)

// DetachedTip names the tip reported for a detached HEAD.
const DetachedTip = "HEAD"

// Repository adapts a go-git repository.
type Repository struct {
	repo *git.Repository
}

// Open opens the repository containing path.
func Open(path string) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open git repository %s: %w", path, err)
	}
	return New(repo), nil
}

// New wraps an already opened repository.
func New(repo *git.Repository) *Repository {
	return &Repository{repo: repo}
}

// Resolve implements lineage.Accessor.Resolve.
func (r *Repository) Resolve(id lineage.ID) (lineage.Node, error) {
	if !isHash(string(id)) {
		return lineage.Node{}, fmt.Errorf("%w: %s", lineage.ErrNodeNotFound, id)
	}

	c, err := r.repo.CommitObject(plumbing.NewHash(string(id)))
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) || errors.Is(err, plumbing.ErrInvalidType) {
			return lineage.Node{}, fmt.Errorf("%w: %s", lineage.ErrNodeNotFound, id)
		}
		return lineage.Node{}, fmt.Errorf("read commit %s: %w", id.Short(), err)
	}
	return node(c), nil
}

func isHash(s string) bool {
	if len(s) != 2*len(plumbing.ZeroHash) {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func node(c *object.Commit) lineage.Node {
	parents := make([]lineage.ID, len(c.ParentHashes))
	for i, p := range c.ParentHashes {
		parents[i] = lineage.ID(p.String())
	}
	summary, _, _ := strings.Cut(c.Message, "\n")
	return lineage.Node{
		ID:      lineage.ID(c.Hash.String()),
		Time:    c.Committer.When.Unix(),
		Parents: parents,
		Author:  fmt.Sprintf("%s <%s>", c.Author.Name, c.Author.Email),
		Summary: strings.TrimSpace(summary),
		Message: strings.TrimRight(c.Message, "\n"),
	}
}

// ListTips implements logview.TipSource: one tip per local branch, in
// reference order, plus a HEAD tip when HEAD is detached.
func (r *Repository) ListTips() ([]logview.Tip, error) {
	head, err := r.repo.Head()
	if err != nil && !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	branches, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer branches.Close()

	var tips []logview.Tip
	err = branches.ForEach(func(ref *plumbing.Reference) error {
		tips = append(tips, logview.Tip{
			Name:   ref.Name().Short(),
			Target: lineage.ID(ref.Hash().String()),
			Head:   head != nil && head.Name() == ref.Name(),
		})
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return nil, fmt.Errorf("list branches: %w", err)
	}

	if head != nil && !head.Name().IsBranch() {
		tips = append(tips, logview.Tip{
			Name:   DetachedTip,
			Target: lineage.ID(head.Hash().String()),
			Head:   true,
		})
	}
	return tips, nil
}
