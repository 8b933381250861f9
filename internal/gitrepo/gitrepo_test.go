package gitrepo

import (
	"errors"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javanhut/lineage/internal/lineage"
	"github.com/javanhut/lineage/internal/logview"
)

type fixture struct {
	t    *testing.T
	repo *git.Repository
	tree plumbing.Hash
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := git.Init(memory.NewStorage(), nil)
	require.NoError(t, err)

	obj := repo.Storer.NewEncodedObject()
	require.NoError(t, (&object.Tree{}).Encode(obj))
	tree, err := repo.Storer.SetEncodedObject(obj)
	require.NoError(t, err)

	return &fixture{t: t, repo: repo, tree: tree}
}

func (f *fixture) commit(message string, at int64, parents ...plumbing.Hash) plumbing.Hash {
	f.t.Helper()
	sig := object.Signature{Name: "Ada", Email: "ada@example.com", When: time.Unix(at, 0)}
	c := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      message,
		TreeHash:     f.tree,
		ParentHashes: parents,
	}
	obj := f.repo.Storer.NewEncodedObject()
	require.NoError(f.t, c.Encode(obj))
	h, err := f.repo.Storer.SetEncodedObject(obj)
	require.NoError(f.t, err)
	return h
}

func (f *fixture) branch(name string, target plumbing.Hash) {
	f.t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), target)
	require.NoError(f.t, f.repo.Storer.SetReference(ref))
}

func (f *fixture) head(ref *plumbing.Reference) {
	f.t.Helper()
	require.NoError(f.t, f.repo.Storer.SetReference(ref))
}

func id(h plumbing.Hash) lineage.ID { return lineage.ID(h.String()) }

func TestResolve(t *testing.T) {
	f := newFixture(t)
	root := f.commit("root\n", 100)
	tip := f.commit("add parser\n\nlonger body\n", 200, root)

	r := New(f.repo)
	n, err := r.Resolve(id(tip))
	require.NoError(t, err)
	assert.Equal(t, id(tip), n.ID)
	assert.Equal(t, int64(200), n.Time)
	assert.Equal(t, []lineage.ID{id(root)}, n.Parents)
	assert.Equal(t, "Ada <ada@example.com>", n.Author)
	assert.Equal(t, "add parser", n.Summary)
	assert.Equal(t, "add parser\n\nlonger body", n.Message)

	_, err = r.Resolve(id(plumbing.NewHash("1111111111111111111111111111111111111111")))
	assert.True(t, errors.Is(err, lineage.ErrNodeNotFound), err)

	_, err = r.Resolve("main")
	assert.True(t, errors.Is(err, lineage.ErrNodeNotFound), err)

	_, err = r.Resolve(id(f.tree))
	assert.True(t, errors.Is(err, lineage.ErrNodeNotFound), "a tree is not a commit: %v", err)
}

func TestListTips(t *testing.T) {
	f := newFixture(t)
	root := f.commit("root", 100)
	main := f.commit("main work", 200, root)
	feature := f.commit("feature work", 150, root)
	f.branch("main", main)
	f.branch("feature", feature)
	f.head(plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main")))

	tips, err := New(f.repo).ListTips()
	require.NoError(t, err)
	require.Len(t, tips, 2)

	byName := map[string]logview.Tip{}
	for _, tip := range tips {
		byName[tip.Name] = tip
	}
	assert.Equal(t, logview.Tip{Name: "main", Target: id(main), Head: true}, byName["main"])
	assert.Equal(t, logview.Tip{Name: "feature", Target: id(feature)}, byName["feature"])
}

func TestListTipsDetachedHead(t *testing.T) {
	f := newFixture(t)
	root := f.commit("root", 100)
	main := f.commit("main work", 200, root)
	f.branch("main", main)
	f.head(plumbing.NewHashReference(plumbing.HEAD, root))

	tips, err := New(f.repo).ListTips()
	require.NoError(t, err)
	assert.Equal(t, []logview.Tip{
		{Name: "main", Target: id(main)},
		{Name: DetachedTip, Target: id(root), Head: true},
	}, tips)
}

func TestListTipsEmptyRepository(t *testing.T) {
	f := newFixture(t)
	tips, err := New(f.repo).ListTips()
	require.NoError(t, err)
	assert.Empty(t, tips)
}

func TestLogViewOverGit(t *testing.T) {
	f := newFixture(t)
	root := f.commit("root", 100)
	base := f.commit("base", 200, root)
	left := f.commit("left", 300, base)
	right := f.commit("right", 400, base)
	merge := f.commit("merge", 500, left, right, plumbing.NewHash("2222222222222222222222222222222222222222"))
	topic := f.commit("topic", 450, base)
	f.branch("main", merge)
	f.branch("topic", topic)
	f.head(plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main")))

	r := New(f.repo)
	v, err := logview.Load(r, r, logview.WithBound(10))
	require.NoError(t, err)

	summaries := func() []string {
		var out []string
		for _, n := range v.CurrentLog() {
			out = append(out, n.Summary)
		}
		return out
	}
	assert.Equal(t, []string{"merge", "topic", "right", "left", "base", "root"}, summaries())

	require.NoError(t, v.SetSelected("main", false))
	assert.Equal(t, []string{"topic", "base", "root"}, summaries())
}
