package commit

import (
	"errors"
	"fmt"

	"github.com/javanhut/lineage/internal/cas"
	"github.com/javanhut/lineage/internal/lineage"
)

// Store resolves commits from a CAS for the lineage traversal.
type Store struct {
	reader *Reader
}

// NewStore creates a Store over casStore.
func NewStore(casStore cas.CAS) *Store {
	return &Store{reader: NewReader(casStore)}
}

// ID converts a commit hash to a lineage identifier.
func ID(hash cas.Hash) lineage.ID {
	return lineage.ID(hash.String())
}

// Resolve implements lineage.Accessor.Resolve. Unknown or malformed ids map
// to lineage.ErrNodeNotFound; storage failures and corrupt objects are fatal.
func (s *Store) Resolve(id lineage.ID) (lineage.Node, error) {
	hash, err := cas.ParseHash(string(id))
	if err != nil {
		return lineage.Node{}, fmt.Errorf("%w: %v", lineage.ErrNodeNotFound, err)
	}

	c, err := s.reader.Read(hash)
	if err != nil {
		if errors.Is(err, cas.ErrNotFound) {
			return lineage.Node{}, fmt.Errorf("%w: %s", lineage.ErrNodeNotFound, id)
		}
		return lineage.Node{}, err
	}

	return Node(hash, c), nil
}

// Node converts a commit into a traversal snapshot. The commit time orders
// the log, as in git's date order.
func Node(hash cas.Hash, c *Commit) lineage.Node {
	parents := make([]lineage.ID, len(c.Parents))
	for i, p := range c.Parents {
		parents[i] = ID(p)
	}
	return lineage.Node{
		ID:      ID(hash),
		Time:    c.CommitTime.Unix(),
		Parents: parents,
		Author:  c.Author,
		Summary: c.Summary(),
		Message: c.Message,
	}
}
