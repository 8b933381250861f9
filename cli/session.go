package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/javanhut/lineage/internal/cas"
	"github.com/javanhut/lineage/internal/commit"
	"github.com/javanhut/lineage/internal/config"
	"github.com/javanhut/lineage/internal/gitrepo"
	"github.com/javanhut/lineage/internal/lineage"
	"github.com/javanhut/lineage/internal/logview"
	"github.com/javanhut/lineage/internal/refs"
)

var errNotRepository = errors.New("not in a lineage repository (run 'lineage forge' first)")

// repository is an open native repository.
type repository struct {
	dir     string
	refs    *refs.Manager
	objects *cas.FileCAS
	commits *commit.Store
}

func openRepository() (*repository, error) {
	dir := repoDir()
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errNotRepository
		}
		return nil, err
	}

	objects, err := cas.NewFileCAS(filepath.Join(dir, "objects"))
	if err != nil {
		return nil, fmt.Errorf("open object store: %w", err)
	}
	m, err := refs.Open(dir)
	if err != nil {
		objects.Close()
		return nil, err
	}
	return &repository{
		dir:     dir,
		refs:    m,
		objects: objects,
		commits: commit.NewStore(objects),
	}, nil
}

func (r *repository) Close() error {
	return errors.Join(r.refs.Close(), r.objects.Close())
}

// session is the history backend behind log and browse: either the native
// repository or a Git repository opened with --git.
type session struct {
	cfg   *config.Config
	tips  logview.TipSource
	cache *lineage.Cache

	// repo is nil for Git sessions; selection is not persisted there.
	repo *repository
}

func openSession(gitPath string) (*session, error) {
	cfg, err := loader().Load()
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg}
	var acc lineage.Accessor
	if gitPath != "" {
		g, err := gitrepo.Open(gitPath)
		if err != nil {
			return nil, err
		}
		s.tips, acc = g, g
		slog.Debug("using git history", "path", gitPath)
	} else {
		repo, err := openRepository()
		if err != nil {
			return nil, err
		}
		s.repo = repo
		s.tips, acc = repo.refs, repo.commits
	}

	s.cache, err = lineage.NewCache(acc, cfg.Cache.Size)
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// view loads the tips into a log view and applies the persisted selection.
func (s *session) view(bound int) (*logview.View, error) {
	v, err := logview.Load(s.tips, s.cache,
		logview.WithBound(bound),
		logview.WithLogger(slog.Default()))
	if err != nil {
		return nil, err
	}
	if s.repo == nil {
		return v, nil
	}

	saved, err := s.repo.refs.Selection()
	if err != nil {
		return nil, fmt.Errorf("read selection: %w", err)
	}
	known := make(map[string]bool)
	for _, tip := range v.Tips() {
		if selected, ok := saved[tip.Name]; ok {
			known[tip.Name] = selected
		}
	}
	if len(known) > 0 {
		if err := v.Select(known); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// saveSelection persists selection changes for native sessions.
func (s *session) saveSelection(changes map[string]bool) error {
	if s.repo == nil {
		return nil
	}
	for name, selected := range changes {
		if err := s.repo.refs.SetSelected(name, selected); err != nil {
			return err
		}
	}
	return nil
}
