package converter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javanhut/lineage/internal/cas"
	"github.com/javanhut/lineage/internal/commit"
	"github.com/javanhut/lineage/internal/lineage"
	"github.com/javanhut/lineage/internal/logview"
)

type graph map[lineage.ID]lineage.Node

func (g graph) add(id lineage.ID, t int64, parents ...lineage.ID) {
	g[id] = lineage.Node{ID: id, Time: t, Parents: parents, Author: "Ada <ada@example.com>", Message: "commit " + string(id)}
}

func (g graph) Resolve(id lineage.ID) (lineage.Node, error) {
	n, ok := g[id]
	if !ok {
		return lineage.Node{}, fmt.Errorf("%w: %s", lineage.ErrNodeNotFound, id)
	}
	return n, nil
}

func messages(t *testing.T, casStore cas.CAS, tips ...cas.Hash) []string {
	t.Helper()
	seeds := make([]lineage.ID, len(tips))
	for i, h := range tips {
		seeds[i] = commit.ID(h)
	}
	nodes, err := lineage.Traverse(seeds, 100, commit.NewStore(casStore))
	require.NoError(t, err)
	var out []string
	for _, n := range nodes {
		out = append(out, n.Message)
	}
	return out
}

func TestImportPreservesHistory(t *testing.T) {
	g := graph{}
	g.add("root", 10)
	g.add("left", 20, "root")
	g.add("right", 30, "root")
	g.add("merge", 40, "left", "right")
	g.add("topic", 35, "right")

	casStore := cas.NewMemoryCAS()
	res, err := NewImporter(g, casStore, nil).Import([]logview.Tip{
		{Name: "main", Target: "merge"},
		{Name: "topic", Target: "topic"},
	})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Converted)
	assert.Zero(t, res.Skipped)
	require.Len(t, res.Tips, 2)
	assert.Equal(t, 5, casStore.Len())

	assert.Equal(t,
		[]string{"commit merge", "commit topic", "commit right", "commit left", "commit root"},
		messages(t, casStore, res.Tips["main"], res.Tips["topic"]))

	merge, err := commit.NewReader(casStore).Read(res.Tips["main"])
	require.NoError(t, err)
	assert.Len(t, merge.Parents, 2)
	assert.Equal(t, "Ada <ada@example.com>", merge.Author)
	assert.Equal(t, int64(40), merge.CommitTime.Unix())
}

func TestImportSkipsMissingCommits(t *testing.T) {
	g := graph{}
	g.add("root", 10)
	g.add("tip", 20, "root", "shallow")

	casStore := cas.NewMemoryCAS()
	res, err := NewImporter(g, casStore, nil).Import([]logview.Tip{
		{Name: "main", Target: "tip"},
		{Name: "gone", Target: "nowhere"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Converted)
	assert.Equal(t, 2, res.Skipped)
	assert.NotContains(t, res.Tips, "gone")

	tip, err := commit.NewReader(casStore).Read(res.Tips["main"])
	require.NoError(t, err)
	assert.Len(t, tip.Parents, 1)
}

func TestImportDeepHistory(t *testing.T) {
	g := graph{}
	const depth = 20000
	prev := lineage.ID("")
	for i := 0; i < depth; i++ {
		id := lineage.ID(fmt.Sprintf("c%05d", i))
		if prev == "" {
			g.add(id, int64(i))
		} else {
			g.add(id, int64(i), prev)
		}
		prev = id
	}

	casStore := cas.NewMemoryCAS()
	res, err := NewImporter(g, casStore, nil).Import([]logview.Tip{{Name: "main", Target: prev}})
	require.NoError(t, err)
	assert.Equal(t, depth, res.Converted)
}

func TestImportFatalError(t *testing.T) {
	boom := errors.New("pack is corrupt")
	acc := lineage.AccessorFunc(func(id lineage.ID) (lineage.Node, error) {
		if id == "bad" {
			return lineage.Node{}, boom
		}
		return lineage.Node{ID: id, Time: 1, Parents: []lineage.ID{"bad"}}, nil
	})

	_, err := NewImporter(acc, cas.NewMemoryCAS(), nil).Import([]logview.Tip{{Name: "main", Target: "tip"}})
	assert.ErrorIs(t, err, boom)
}
