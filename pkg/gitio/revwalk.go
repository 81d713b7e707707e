package gitio

import (
	"fmt"
	"io"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/achievemint/gitminer/pkg/extract"
	"github.com/achievemint/gitminer/pkg/plumbing"
)

// Commits starts a reverse-topological walk (parents before children) over
// every commit reachable from the repository's branch refs, local and
// remote-tracking alike. A commit reachable from several branches is
// enumerated once. The returned cursor is lazy and single-pass.
func (r *Repository) Commits() (extract.CommitCursor, error) {
	walk, err := r.repo.Walk()
	if err != nil {
		return nil, fmt.Errorf("create revwalk: %w", err)
	}

	for _, glob := range []string{"refs/heads/*", "refs/remotes/*"} {
		pushErr := walk.PushGlob(glob)
		if pushErr != nil {
			walk.Free()

			return nil, fmt.Errorf("push %s: %w", glob, pushErr)
		}
	}

	walk.Sorting(git2go.SortTopological | git2go.SortReverse)

	return &commitCursor{walk: walk, repo: r.repo}, nil
}

// commitCursor adapts a libgit2 revwalk to the pipeline's commit cursor.
type commitCursor struct {
	walk *git2go.RevWalk
	repo *git2go.Repository
}

// Next returns the next commit's metadata, or io.EOF when the walk is
// exhausted.
func (c *commitCursor) Next() (*plumbing.CommitInfo, error) {
	if c.walk == nil {
		return nil, io.EOF
	}

	oid := new(git2go.Oid)

	err := c.walk.Next(oid)
	if err != nil {
		if git2go.IsErrorCode(err, git2go.ErrorCodeIterOver) {
			return nil, io.EOF
		}

		return nil, fmt.Errorf("revwalk next: %w", err)
	}

	commit, err := c.repo.LookupCommit(oid)
	if err != nil {
		return nil, fmt.Errorf("lookup commit %s: %w", oid.String(), err)
	}
	defer commit.Free()

	return commitInfo(oid, commit), nil
}

// Close releases the walk. Safe to call more than once.
func (c *commitCursor) Close() {
	if c.walk != nil {
		c.walk.Free()
		c.walk = nil
	}
}

func commitInfo(oid *git2go.Oid, commit *git2go.Commit) *plumbing.CommitInfo {
	author := commit.Author()
	committer := commit.Committer()

	parents := make([]string, 0, commit.ParentCount())
	for i := uint(0); i < commit.ParentCount(); i++ {
		parents = append(parents, commit.ParentId(i).String())
	}

	return &plumbing.CommitInfo{
		Hash:      oid.String(),
		Author:    plumbing.Signature{Name: author.Name, Email: author.Email, When: author.When},
		Committer: plumbing.Signature{Name: committer.Name, Email: committer.Email, When: committer.When},
		Message:   commit.Message(),
		Parents:   parents,
	}
}
