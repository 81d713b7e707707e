package gitio_test

import (
	"io"
	"strings"
	"testing"
	"time"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/achievemint/gitminer/pkg/gitio"
	"github.com/achievemint/gitminer/pkg/plumbing"
)

// fixture builds throwaway commit graphs directly through libgit2 so the
// diff and walk layers run against a real object store.
type fixture struct {
	t    *testing.T
	repo *git2go.Repository
	path string
	when time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	path := t.TempDir()

	repo, err := git2go.InitRepository(path, true)
	require.NoError(t, err)
	t.Cleanup(repo.Free)

	return &fixture{
		t:    t,
		repo: repo,
		path: path,
		when: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

// commit writes files as a flat tree and commits it onto ref, advancing a
// deterministic clock so walk order is stable.
func (f *fixture) commit(ref, message string, files map[string]string, parents ...*git2go.Commit) *git2go.Commit {
	f.t.Helper()

	builder, err := f.repo.TreeBuilder()
	require.NoError(f.t, err)
	defer builder.Free()

	for name, content := range files {
		blobID, blobErr := f.repo.CreateBlobFromBuffer([]byte(content))
		require.NoError(f.t, blobErr)
		require.NoError(f.t, builder.Insert(name, blobID, git2go.FilemodeBlob))
	}

	treeID, err := builder.Write()
	require.NoError(f.t, err)

	tree, err := f.repo.LookupTree(treeID)
	require.NoError(f.t, err)
	defer tree.Free()

	f.when = f.when.Add(time.Minute)
	sig := &git2go.Signature{Name: "Dev", Email: "dev@example.com", When: f.when}

	oid, err := f.repo.CreateCommit(ref, sig, sig, message, tree, parents...)
	require.NoError(f.t, err)

	commit, err := f.repo.LookupCommit(oid)
	require.NoError(f.t, err)
	f.t.Cleanup(commit.Free)

	return commit
}

func (f *fixture) open(opts gitio.DiffOptions) *gitio.Repository {
	f.t.Helper()

	repo, err := gitio.OpenRepository(f.path, opts)
	require.NoError(f.t, err)
	f.t.Cleanup(repo.Free)

	return repo
}

func TestOpenRepositoryMissingPath(t *testing.T) {
	_, err := gitio.OpenRepository(t.TempDir()+"/does-not-exist", gitio.DiffOptions{})
	require.Error(t, err)
}

func TestChangesRootCommitAllAdds(t *testing.T) {
	f := newFixture(t)

	root := f.commit("refs/heads/main", "first", map[string]string{"a.txt": "base\n"})

	repo := f.open(gitio.DiffOptions{})

	changes, err := repo.Changes(root.Id().String())
	require.NoError(t, err)

	require.Len(t, changes, 1)
	assert.Equal(t, plumbing.StatusAdded, changes[0].Status)
	assert.Equal(t, "a.txt", changes[0].New.Path)
	assert.True(t, changes[0].New.Mode.IsRegularFile())
}

func TestChangesMergeDiffsFirstParentOnly(t *testing.T) {
	f := newFixture(t)

	base := f.commit("refs/heads/main", "base", map[string]string{"a.txt": "base\n"})
	topic := f.commit("refs/heads/topic", "topic work", map[string]string{
		"a.txt":     "base\n",
		"topic.txt": "topic\n",
	}, base)
	trunk := f.commit("refs/heads/main", "main work", map[string]string{
		"a.txt":    "base\n",
		"main.txt": "main\n",
	}, base)
	merge := f.commit("refs/heads/main", "merge topic", map[string]string{
		"a.txt":     "base\n",
		"main.txt":  "main\n",
		"topic.txt": "topic\n",
	}, trunk, topic)

	repo := f.open(gitio.DiffOptions{})

	changes, err := repo.Changes(merge.Id().String())
	require.NoError(t, err)

	// Relative to the first parent only topic.txt is new; diffing against
	// the second parent would report main.txt instead.
	require.Len(t, changes, 1)
	assert.Equal(t, plumbing.StatusAdded, changes[0].Status)
	assert.Equal(t, "topic.txt", changes[0].New.Path)
}

func TestChangesDetectsRename(t *testing.T) {
	f := newFixture(t)

	content := "one\ntwo\nthree\nfour\nfive\nsix\nseven\neight\nnine\nten\n"
	moved := strings.Replace(content, "ten\n", "TEN\n", 1)

	base := f.commit("refs/heads/main", "add old", map[string]string{"old.txt": content})
	renamed := f.commit("refs/heads/main", "move to new", map[string]string{"new.txt": moved}, base)

	repo := f.open(gitio.DiffOptions{})

	changes, err := repo.Changes(renamed.Id().String())
	require.NoError(t, err)

	// Content is well above the default similarity threshold: one
	// delete+add pair, reported as a rename.
	require.Len(t, changes, 1)
	assert.Equal(t, plumbing.StatusRenamed, changes[0].Status)
	assert.Equal(t, "old.txt", changes[0].Old.Path)
	assert.Equal(t, "new.txt", changes[0].New.Path)
}

func TestCommitsWalkParentsBeforeChildren(t *testing.T) {
	f := newFixture(t)

	first := f.commit("refs/heads/main", "first", map[string]string{"a.txt": "one\n"})
	second := f.commit("refs/heads/main", "second", map[string]string{"a.txt": "one\ntwo\n"}, first)

	repo := f.open(gitio.DiffOptions{})

	cursor, err := repo.Commits()
	require.NoError(t, err)
	defer cursor.Close()

	older, err := cursor.Next()
	require.NoError(t, err)

	newer, err := cursor.Next()
	require.NoError(t, err)

	assert.Equal(t, first.Id().String(), older.Hash)
	assert.Equal(t, second.Id().String(), newer.Hash)
	assert.Empty(t, older.Parents)
	assert.Equal(t, []string{first.Id().String()}, newer.Parents)

	_, err = cursor.Next()
	assert.Equal(t, io.EOF, err)
}

func TestResolveAbbrevExpandsPrefix(t *testing.T) {
	f := newFixture(t)

	root := f.commit("refs/heads/main", "first", map[string]string{"a.txt": "one\n"})

	repo := f.open(gitio.DiffOptions{})

	full := root.Id().String()

	resolved, err := repo.ResolveAbbrev(full[:8])
	require.NoError(t, err)
	assert.Equal(t, full, resolved)
}
