// Package converter imports foreign history into the native commit store.
package converter

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/javanhut/lineage/internal/cas"
	"github.com/javanhut/lineage/internal/commit"
	"github.com/javanhut/lineage/internal/lineage"
	"github.com/javanhut/lineage/internal/logview"
)

// ConversionResult holds the results of an import.
type ConversionResult struct {
	Converted int
	// Skipped counts identifiers that could not be resolved. Commits
	// referring to them are imported without those parents.
	Skipped int
	// Tips maps each imported tip name to its native commit.
	Tips map[string]cas.Hash
}

// Importer copies commits reachable from a set of tips into a CAS.
// Parents are always written before their children.
type Importer struct {
	source lineage.Accessor
	writer *commit.Writer
	logger *slog.Logger

	converted map[lineage.ID]cas.Hash
	missing   map[lineage.ID]bool
	result    *ConversionResult
}

// NewImporter creates an importer reading from source and writing to casStore.
func NewImporter(source lineage.Accessor, casStore cas.CAS, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		source:    source,
		writer:    commit.NewWriter(casStore),
		logger:    logger,
		converted: make(map[lineage.ID]cas.Hash),
		missing:   make(map[lineage.ID]bool),
	}
}

// Import converts the history of every tip. Tips whose target cannot be
// resolved are left out of the result.
func (im *Importer) Import(tips []logview.Tip) (*ConversionResult, error) {
	im.result = &ConversionResult{Tips: make(map[string]cas.Hash)}
	for _, tip := range tips {
		if err := im.convert(tip.Target); err != nil {
			return im.result, fmt.Errorf("import %s: %w", tip.Name, err)
		}
		if h, ok := im.converted[tip.Target]; ok {
			im.result.Tips[tip.Name] = h
		}
	}
	return im.result, nil
}

type frame struct {
	node lineage.Node
	next int
}

// resolve returns false for identifiers the source does not have.
func (im *Importer) resolve(id lineage.ID) (lineage.Node, bool, error) {
	n, err := im.source.Resolve(id)
	if errors.Is(err, lineage.ErrNodeNotFound) {
		im.missing[id] = true
		im.result.Skipped++
		im.logger.Debug("skipping unresolvable commit", "id", id.Short())
		return lineage.Node{}, false, nil
	}
	if err != nil {
		return lineage.Node{}, false, err
	}
	return n, true, nil
}

func (im *Importer) convert(id lineage.ID) error {
	if _, done := im.converted[id]; done || im.missing[id] {
		return nil
	}
	root, ok, err := im.resolve(id)
	if err != nil || !ok {
		return err
	}

	// Iterative post-order walk; deep histories would overflow recursion.
	stack := []*frame{{node: root}}
	onStack := map[lineage.ID]bool{id: true}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next < len(top.node.Parents) {
			p := top.node.Parents[top.next]
			top.next++
			if _, done := im.converted[p]; done || im.missing[p] || onStack[p] {
				continue
			}
			n, ok, err := im.resolve(p)
			if err != nil {
				return err
			}
			if ok {
				stack = append(stack, &frame{node: n})
				onStack[p] = true
			}
			continue
		}

		h, err := im.write(top.node)
		if err != nil {
			return err
		}
		im.converted[top.node.ID] = h
		im.result.Converted++
		delete(onStack, top.node.ID)
		stack = stack[:len(stack)-1]
	}
	return nil
}

func (im *Importer) write(n lineage.Node) (cas.Hash, error) {
	var parents []cas.Hash
	for _, p := range n.Parents {
		if h, ok := im.converted[p]; ok {
			parents = append(parents, h)
		}
	}
	at := time.Unix(n.Time, 0)
	h, err := im.writer.Write(&commit.Commit{
		Parents:    parents,
		Author:     n.Author,
		Committer:  n.Author,
		AuthorTime: at,
		CommitTime: at,
		Message:    n.Message,
	})
	if err != nil {
		return cas.Hash{}, fmt.Errorf("write %s: %w", n.ID.Short(), err)
	}
	return h, nil
}
