// Package lineage walks commit ancestry from a set of tips.
//
// This package provides:
// - Node snapshots resolved through a pluggable Accessor
// - A bounded, newest-first, deduplicated traversal over the commit DAG
// - An LRU-backed Accessor decorator for repeated traversals
//
// The traversal is a k-way merge over the reverse-time order of several
// lineages: a max-priority frontier always yields the newest discovered
// commit, and a visited set keeps shared ancestors from being enqueued twice.
// Work is proportional to the bound, never to the size of the history.
package lineage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/emirpasic/gods/trees/binaryheap"
)

// ErrNodeNotFound is returned by an Accessor when an identifier cannot be
// resolved. Traversal treats it as a missing edge, not a failure.
var ErrNodeNotFound = errors.New("node not found")

// ID is an opaque, totally ordered node identifier (lowercase hex object name).
type ID string

// Short returns the first 8 characters of the identifier.
func (id ID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// Node is an immutable snapshot of a commit.
type Node struct {
	ID      ID
	Time    int64 // Unix seconds
	Parents []ID
	Author  string
	Summary string
	Message string
}

// Accessor resolves node identifiers.
type Accessor interface {
	// Resolve returns the node for id. Unknown ids must yield an error
	// matching ErrNodeNotFound; any other error is considered fatal.
	Resolve(id ID) (Node, error)
}

// AccessorFunc adapts a function to the Accessor interface.
type AccessorFunc func(id ID) (Node, error)

// Resolve implements Accessor.Resolve.
func (f AccessorFunc) Resolve(id ID) (Node, error) {
	return f(id)
}

// newestFirst orders the frontier: later timestamps first, then ascending id.
func newestFirst(a, b interface{}) int {
	x, y := a.(Node), b.(Node)
	switch {
	case x.Time > y.Time:
		return -1
	case x.Time < y.Time:
		return 1
	}
	return strings.Compare(string(x.ID), string(y.ID))
}

// Walker runs bounded traversals against an Accessor.
type Walker struct {
	Accessor Accessor

	// Missing, if set, is called for every seed or parent that could not be
	// resolved and was skipped.
	Missing func(id ID)
}

// Traverse returns up to bound ancestors of seeds (seeds included), newest
// first, each at most once.
func Traverse(seeds []ID, bound int, acc Accessor) ([]Node, error) {
	w := &Walker{Accessor: acc}
	return w.Walk(seeds, bound)
}

// Walk implements Traverse for the walker's accessor.
func (w *Walker) Walk(seeds []ID, bound int) ([]Node, error) {
	if bound <= 0 || len(seeds) == 0 {
		return nil, nil
	}

	frontier := binaryheap.NewWith(newestFirst)
	visited := make(map[ID]struct{})

	for _, seed := range seeds {
		if err := w.enqueue(frontier, visited, seed); err != nil {
			return nil, err
		}
	}

	result := make([]Node, 0, min(bound, 64))
	for len(result) < bound {
		top, ok := frontier.Pop()
		if !ok {
			break
		}
		current := top.(Node)
		result = append(result, current)

		for _, parent := range current.Parents {
			if err := w.enqueue(frontier, visited, parent); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

// enqueue resolves id and pushes it onto the frontier unless it was seen before.
func (w *Walker) enqueue(frontier *binaryheap.Heap, visited map[ID]struct{}, id ID) error {
	if _, seen := visited[id]; seen {
		return nil
	}

	node, err := w.Accessor.Resolve(id)
	if err != nil {
		if errors.Is(err, ErrNodeNotFound) {
			// Remembered so a missing ancestor shared by several children is tried once.
			visited[id] = struct{}{}
			if w.Missing != nil {
				w.Missing(id)
			}
			return nil
		}
		return fmt.Errorf("resolve %s: %w", id.Short(), err)
	}

	visited[id] = struct{}{}
	frontier.Push(node)
	return nil
}
