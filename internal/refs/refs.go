// Package refs manages timelines (branches), HEAD and the persisted log
// selection of a repository.
package refs

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/javanhut/lineage/internal/cas"
	"github.com/javanhut/lineage/internal/commit"
	"github.com/javanhut/lineage/internal/logview"
	"github.com/javanhut/lineage/internal/store"
)

var (
	ErrTimelineNotFound = errors.New("timeline not found")
	ErrTimelineExists   = errors.New("timeline already exists")
	ErrCurrentTimeline  = errors.New("cannot remove the current timeline")
	ErrInvalidName      = errors.New("invalid timeline name")
	ErrNoHead           = errors.New("HEAD is not set")
)

var headKey = []byte("HEAD")

// Timeline represents a branch reference.
type Timeline struct {
	Name        string    `json:"-"`
	Target      cas.Hash  `json:"target"`
	LastUpdated time.Time `json:"last_updated"`
	Description string    `json:"description,omitempty"`
}

// Manager handles timeline and reference management.
type Manager struct {
	db *store.DB
}

// Open opens the refs database inside repoDir.
func Open(repoDir string) (*Manager, error) {
	db, err := store.Open(filepath.Join(repoDir, "refs.db"))
	if err != nil {
		return nil, fmt.Errorf("open refs: %w", err)
	}
	return &Manager{db: db}, nil
}

// Close closes the refs manager.
func (m *Manager) Close() error {
	return m.db.Close()
}

// ValidateName reports whether name can be used for a timeline.
func ValidateName(name string) error {
	if name == "" || name == "HEAD" || strings.HasPrefix(name, "-") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 || strings.Contains(name, ",") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// CreateTimeline creates a new timeline pointing at target. A zero target
// marks a timeline without commits.
func (m *Manager) CreateTimeline(name string, target cas.Hash, description string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if _, err := m.GetTimeline(name); err == nil {
		return fmt.Errorf("%w: %s", ErrTimelineExists, name)
	} else if !errors.Is(err, ErrTimelineNotFound) {
		return err
	}

	return m.write(Timeline{
		Name:        name,
		Target:      target,
		LastUpdated: time.Now(),
		Description: description,
	})
}

// UpdateTimeline moves an existing timeline to target.
func (m *Manager) UpdateTimeline(name string, target cas.Hash) error {
	tl, err := m.GetTimeline(name)
	if err != nil {
		return err
	}
	tl.Target = target
	tl.LastUpdated = time.Now()
	return m.write(*tl)
}

// GetTimeline retrieves a timeline by name.
func (m *Manager) GetTimeline(name string) (*Timeline, error) {
	data, err := m.db.Get(store.BucketTimelines, []byte(name))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTimelineNotFound, name)
		}
		return nil, fmt.Errorf("read timeline %s: %w", name, err)
	}
	return decodeTimeline(name, data)
}

// RemoveTimeline deletes a timeline and its selection entry.
func (m *Manager) RemoveTimeline(name string) error {
	if _, err := m.GetTimeline(name); err != nil {
		return err
	}
	if current, err := m.CurrentTimeline(); err == nil && current == name {
		return fmt.Errorf("%w: %s", ErrCurrentTimeline, name)
	}
	if err := m.db.Delete(store.BucketTimelines, []byte(name)); err != nil {
		return fmt.Errorf("remove timeline %s: %w", name, err)
	}
	return m.db.Delete(store.BucketSelection, []byte(name))
}

// ListTimelines lists all timelines ordered by name.
func (m *Manager) ListTimelines() ([]Timeline, error) {
	var timelines []Timeline
	err := m.db.ForEach(store.BucketTimelines, func(k, v []byte) error {
		tl, err := decodeTimeline(string(k), v)
		if err != nil {
			return err
		}
		timelines = append(timelines, *tl)
		return nil
	})
	return timelines, err
}

// CurrentTimeline gets the current active timeline.
func (m *Manager) CurrentTimeline() (string, error) {
	data, err := m.db.Get(store.BucketMeta, headKey)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return "", ErrNoHead
		}
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	return string(data), nil
}

// SetCurrentTimeline points HEAD at an existing timeline.
func (m *Manager) SetCurrentTimeline(name string) error {
	if _, err := m.GetTimeline(name); err != nil {
		return err
	}
	return m.db.Put(store.BucketMeta, headKey, []byte(name))
}

// SetSelected records whether a timeline contributes to the log.
func (m *Manager) SetSelected(name string, selected bool) error {
	if _, err := m.GetTimeline(name); err != nil {
		return err
	}
	value := []byte("0")
	if selected {
		value = []byte("1")
	}
	return m.db.Put(store.BucketSelection, []byte(name), value)
}

// Selection returns the recorded selection. Timelines without an entry are
// absent from the map and count as selected.
func (m *Manager) Selection() (map[string]bool, error) {
	selection := make(map[string]bool)
	err := m.db.ForEach(store.BucketSelection, func(k, v []byte) error {
		selection[string(k)] = string(v) == "1"
		return nil
	})
	return selection, err
}

// ResetSelection forgets every recorded selection.
func (m *Manager) ResetSelection() error {
	return m.db.Clear(store.BucketSelection)
}

// ListTips implements logview.TipSource. Timelines without commits are omitted.
func (m *Manager) ListTips() ([]logview.Tip, error) {
	timelines, err := m.ListTimelines()
	if err != nil {
		return nil, err
	}
	current, err := m.CurrentTimeline()
	if err != nil && !errors.Is(err, ErrNoHead) {
		return nil, err
	}

	var tips []logview.Tip
	for _, tl := range timelines {
		if tl.Target.IsZero() {
			continue
		}
		tips = append(tips, logview.Tip{
			Name:   tl.Name,
			Target: commit.ID(tl.Target),
			Head:   tl.Name == current,
		})
	}
	return tips, nil
}

func (m *Manager) write(tl Timeline) error {
	data, err := json.Marshal(tl)
	if err != nil {
		return fmt.Errorf("encode timeline %s: %w", tl.Name, err)
	}
	if err := m.db.Put(store.BucketTimelines, []byte(tl.Name), data); err != nil {
		return fmt.Errorf("write timeline %s: %w", tl.Name, err)
	}
	return nil
}

func decodeTimeline(name string, data []byte) (*Timeline, error) {
	tl := &Timeline{}
	if err := json.Unmarshal(data, tl); err != nil {
		return nil, fmt.Errorf("decode timeline %s: %w", name, err)
	}
	tl.Name = name
	return tl, nil
}
