// Package plumbing holds the data types that cross the boundary between the
// git-access layer and the extraction pipeline. It imports no git library so
// the pipeline behaves identically regardless of which backend produced the
// values.
package plumbing

import "time"

// ChangeStatus is the raw change type reported by the tree differ for a
// single path. The values mirror libgit2 delta statuses but carry no
// dependency on it; backends translate into this set.
type ChangeStatus int

const (
	// StatusAdded indicates the path exists only in the new tree.
	StatusAdded ChangeStatus = iota
	// StatusDeleted indicates the path exists only in the old tree.
	StatusDeleted
	// StatusModified indicates the path exists in both trees with different content.
	StatusModified
	// StatusRenamed indicates the differ paired a deletion and an addition as a rename.
	StatusRenamed
	// StatusCopied indicates the differ paired an addition with a similar surviving source.
	StatusCopied
)

// String returns the git-style status name, or "unknown" outside the
// supported set.
func (s ChangeStatus) String() string {
	switch s {
	case StatusAdded:
		return "added"
	case StatusDeleted:
		return "deleted"
	case StatusModified:
		return "modified"
	case StatusRenamed:
		return "renamed"
	case StatusCopied:
		return "copied"
	default:
		return "unknown"
	}
}

// FileMode is the simplified tree-entry mode of one side of a change.
type FileMode uint32

const (
	// ModeMissing marks a side that does not exist (the old side of an add,
	// the new side of a delete).
	ModeMissing FileMode = 0
	// ModeBlob is a regular file.
	ModeBlob FileMode = 0o100644
	// ModeBlobExecutable is a regular file with the executable bit set.
	ModeBlobExecutable FileMode = 0o100755
	// ModeSymlink is a symbolic link entry.
	ModeSymlink FileMode = 0o120000
	// ModeGitlink is a submodule pointer entry.
	ModeGitlink FileMode = 0o160000
)

// IsRegularFile reports whether the mode denotes a regular file blob,
// executable or not. Symlinks and gitlinks are not regular files.
func (m FileMode) IsRegularFile() bool {
	return m == ModeBlob || m == ModeBlobExecutable
}

// RawSide describes one side (old or new) of a raw change entry.
type RawSide struct {
	// ID is the hex object id. It may be abbreviated or unset when IDValid
	// is false; callers must resolve it before use.
	ID string
	// IDValid reports whether ID is a complete, trustworthy object id.
	IDValid bool
	// Path is the repository-relative path exactly as the differ reported it.
	Path string
	// Mode is the tree-entry mode, ModeMissing when the side is absent.
	Mode FileMode
	// Size is the object size in bytes when the differ knows it, else 0.
	Size int64
}

// RawChange is a single tree-diff entry before classification.
type RawChange struct {
	Status ChangeStatus
	Old    RawSide
	New    RawSide
}

// Signature is an author or committer identity with its timestamp. The
// timestamp carries the timezone recorded in the commit.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// CommitInfo is the commit metadata the walker hands to the record builder.
type CommitInfo struct {
	Hash      string
	Author    Signature
	Committer Signature
	Message   string
	Parents   []string
}
