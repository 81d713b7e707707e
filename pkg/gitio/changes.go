package gitio

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/achievemint/gitminer/pkg/plumbing"
)

// statusUnknown is handed to the classifier for delta statuses outside the
// supported change-type set, so the failure surfaces there instead of being
// silently dropped.
const statusUnknown plumbing.ChangeStatus = -1

// Changes computes the raw first-parent tree diff of a commit with rename
// and copy detection applied. A root commit diffs against the empty tree,
// so every path appears as an add. Merge commits diff against the first
// parent only.
func (r *Repository) Changes(commitHash string) ([]plumbing.RawChange, error) {
	oid, err := git2go.NewOid(commitHash)
	if err != nil {
		return nil, fmt.Errorf("parse commit id %q: %w", commitHash, err)
	}

	commit, err := r.repo.LookupCommit(oid)
	if err != nil {
		return nil, fmt.Errorf("lookup commit %s: %w", commitHash, err)
	}
	defer commit.Free()

	newTree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("commit %s tree: %w", commitHash, err)
	}
	defer newTree.Free()

	var oldTree *git2go.Tree

	if commit.ParentCount() > 0 {
		parent := commit.Parent(0)
		if parent == nil {
			return nil, fmt.Errorf("commit %s: first parent unavailable", commitHash)
		}
		defer parent.Free()

		oldTree, err = parent.Tree()
		if err != nil {
			return nil, fmt.Errorf("commit %s parent tree: %w", commitHash, err)
		}
		defer oldTree.Free()
	}

	return r.diffTrees(oldTree, newTree)
}

// diffTrees diffs two trees; a nil old tree is the empty tree.
func (r *Repository) diffTrees(oldTree, newTree *git2go.Tree) ([]plumbing.RawChange, error) {
	diffOpts, err := git2go.DefaultDiffOptions()
	if err != nil {
		return nil, fmt.Errorf("diff options: %w", err)
	}

	diff, err := r.repo.DiffTreeToTree(oldTree, newTree, &diffOpts)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}
	defer func() { _ = diff.Free() }()

	findOpts, err := git2go.DefaultDiffFindOptions()
	if err != nil {
		return nil, fmt.Errorf("diff find options: %w", err)
	}

	findOpts.Flags = git2go.DiffFindRenames
	if r.diff.DetectCopies {
		findOpts.Flags |= git2go.DiffFindCopies
	}

	findOpts.RenameThreshold = r.diff.renameThreshold()

	err = diff.FindSimilar(&findOpts)
	if err != nil {
		return nil, fmt.Errorf("rename detection: %w", err)
	}

	numDeltas, err := diff.NumDeltas()
	if err != nil {
		return nil, fmt.Errorf("count deltas: %w", err)
	}

	changes := make([]plumbing.RawChange, 0, numDeltas)

	for i := range numDeltas {
		delta, deltaErr := diff.Delta(i)
		if deltaErr != nil {
			return nil, fmt.Errorf("delta %d: %w", i, deltaErr)
		}

		changes = append(changes, rawChangeFromDelta(delta))
	}

	return changes, nil
}

// rawChangeFromDelta translates a libgit2 delta into the backend-neutral
// raw change shape the classifier consumes.
func rawChangeFromDelta(delta git2go.DiffDelta) plumbing.RawChange {
	change := plumbing.RawChange{
		Old: rawSideFromFile(delta.OldFile),
		New: rawSideFromFile(delta.NewFile),
	}

	switch delta.Status {
	case git2go.DeltaAdded:
		change.Status = plumbing.StatusAdded
	case git2go.DeltaDeleted:
		change.Status = plumbing.StatusDeleted
	case git2go.DeltaModified:
		change.Status = plumbing.StatusModified
	case git2go.DeltaRenamed:
		change.Status = plumbing.StatusRenamed
	case git2go.DeltaCopied:
		change.Status = plumbing.StatusCopied
	default:
		change.Status = statusUnknown
	}

	return change
}

func rawSideFromFile(file git2go.DiffFile) plumbing.RawSide {
	side := plumbing.RawSide{
		Path: file.Path,
		Mode: plumbing.FileMode(file.Mode),
		Size: int64(file.Size),
	}

	if file.Oid != nil && !file.Oid.IsZero() {
		side.ID = file.Oid.String()
		side.IDValid = file.Flags&git2go.DiffFlagValidOid != 0
	}

	return side
}
