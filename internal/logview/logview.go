// Package logview keeps a commit log in sync with a set of selected tips.
//
// A View owns the tips (one per timeline), a selected flag for each of them,
// and the last computed log. Every selection change reseeds a full traversal
// with the targets of the selected tips and swaps the cached log wholesale.
// Selection filters which lineages seed the frontier, so ancestors that are
// still reachable from another selected tip stay in the log.
package logview

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/javanhut/lineage/internal/lineage"
)

// DefaultBound is the log length used when no bound is configured.
const DefaultBound = 50

var (
	// ErrUnknownTip is returned when a selection names a tip the view does not hold.
	ErrUnknownTip = errors.New("unknown tip")

	// ErrDuplicateTip is returned when two tips share a name.
	ErrDuplicateTip = errors.New("duplicate tip")
)

// Tip is a named pointer to a commit that can be toggled in and out of the log.
type Tip struct {
	Name     string
	Target   lineage.ID
	Head     bool
	Selected bool
}

// TipSource enumerates the tips of a repository.
type TipSource interface {
	ListTips() ([]Tip, error)
}

// State is the selection value a log is computed from.
type State struct {
	Tips []Tip
}

// Seeds returns the targets of the selected tips in tip order.
func (s State) Seeds() []lineage.ID {
	var seeds []lineage.ID
	for _, tip := range s.Tips {
		if tip.Selected {
			seeds = append(seeds, tip.Target)
		}
	}
	return seeds
}

// Log traverses from the selected tips.
func (s State) Log(bound int, acc lineage.Accessor) ([]lineage.Node, error) {
	return lineage.Traverse(s.Seeds(), bound, acc)
}

func (s State) index(name string) int {
	for i, tip := range s.Tips {
		if tip.Name == name {
			return i
		}
	}
	return -1
}

func (s State) clone() State {
	return State{Tips: append([]Tip(nil), s.Tips...)}
}

// Option configures a View.
type Option func(*View)

// WithBound sets the maximum number of commits in the log.
func WithBound(bound int) Option {
	return func(v *View) { v.bound = bound }
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(v *View) { v.logger = logger }
}

// View is a selection-driven commit log. It is safe for concurrent use;
// readers never observe a half-computed log.
type View struct {
	mu     sync.RWMutex
	acc    lineage.Accessor
	bound  int
	logger *slog.Logger
	state  State
	log    []lineage.Node
}

// New creates a view over tips with every tip selected and computes the
// initial log.
func New(tips []Tip, acc lineage.Accessor, opts ...Option) (*View, error) {
	v := &View{
		acc:    acc,
		bound:  DefaultBound,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}

	seen := make(map[string]struct{}, len(tips))
	state := State{Tips: make([]Tip, len(tips))}
	for i, tip := range tips {
		if _, dup := seen[tip.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTip, tip.Name)
		}
		seen[tip.Name] = struct{}{}
		tip.Selected = true
		state.Tips[i] = tip
	}

	if err := v.apply(state, v.bound); err != nil {
		return nil, err
	}
	return v, nil
}

// Load lists tips from src and creates a view over them.
func Load(src TipSource, acc lineage.Accessor, opts ...Option) (*View, error) {
	tips, err := src.ListTips()
	if err != nil {
		return nil, fmt.Errorf("list tips: %w", err)
	}
	return New(tips, acc, opts...)
}

// SetSelected changes the selected flag of one tip and recomputes the log.
// An unknown name leaves the view unchanged.
func (v *View) SetSelected(name string, selected bool) error {
	return v.Select(map[string]bool{name: selected})
}

// Select applies several selection changes with a single recomputation.
// Either all changes apply or none do.
func (v *View) Select(changes map[string]bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	next := v.state.clone()
	for name, selected := range changes {
		i := next.index(name)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownTip, name)
		}
		next.Tips[i].Selected = selected
	}
	return v.applyLocked(next, v.bound)
}

// Recompute sets the bound and rebuilds the log from scratch.
func (v *View) Recompute(bound int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.applyLocked(v.state.clone(), bound)
}

// CurrentLog returns the cached log. It never traverses.
func (v *View) CurrentLog() []lineage.Node {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]lineage.Node(nil), v.log...)
}

// Tips returns a copy of the tips with their current selection.
func (v *View) Tips() []Tip {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]Tip(nil), v.state.Tips...)
}

// Bound returns the configured log length.
func (v *View) Bound() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.bound
}

func (v *View) apply(next State, bound int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.applyLocked(next, bound)
}

// applyLocked computes the log for next and commits state and log together.
func (v *View) applyLocked(next State, bound int) error {
	w := &lineage.Walker{
		Accessor: v.acc,
		Missing: func(id lineage.ID) {
			v.logger.Debug("skipping unresolvable commit", "id", id.Short())
		},
	}
	log, err := w.Walk(next.Seeds(), bound)
	if err != nil {
		return fmt.Errorf("recompute log: %w", err)
	}

	v.state = next
	v.bound = bound
	v.log = log
	v.logger.Debug("log recomputed", "seeds", len(next.Seeds()), "bound", bound, "commits", len(log))
	return nil
}
