// Package extract turns commit history into structured per-commit records.
//
// The pipeline consumes an abstract Repository handle, walks its commits in
// reverse-topological order and, for each commit, classifies the first-parent
// tree changes, loads blob content under size and type constraints, runs a
// line-level diff and aggregates line counts. Records are produced lazily,
// one commit at a time, so a consumer can stop early without paying for the
// rest of the history.
package extract

import (
	"errors"
	"io"

	"github.com/achievemint/gitminer/pkg/plumbing"
)

// Sentinel errors of the extraction pipeline. Failures while processing one
// commit abort that commit's record and propagate; the pipeline never emits
// partial records and performs no retries.
var (
	// ErrObjectAccess marks an object id that could not be opened or read.
	ErrObjectAccess = errors.New("object access failed")
	// ErrUnknownChangeKind marks a tree-diff entry outside the supported
	// change-type set. It is fatal for the commit; the kind is never guessed.
	ErrUnknownChangeKind = errors.New("unknown change kind")
)

// ObjectStream is a bounded reader over one object's content. Free must be
// called on every path once the stream is open; it releases the underlying
// object-store handle.
type ObjectStream interface {
	io.Reader

	// Size returns the full object size as reported by the object store,
	// independent of how much is read.
	Size() int64

	// Free releases the stream. Safe to call more than once.
	Free()
}

// ObjectOpener opens an object's content by full hex id.
type ObjectOpener interface {
	OpenObject(id string) (ObjectStream, error)
}

// Resolver expands a possibly-abbreviated object id to a full id. Ambiguous
// prefixes are an error.
type Resolver interface {
	ResolveAbbrev(id string) (string, error)
}

// CommitCursor is a lazy, single-pass, forward-only walk over commits.
// Next returns io.EOF when the walk is exhausted. Close releases the walk
// and is the only cleanup an early-abandoning consumer needs.
type CommitCursor interface {
	Next() (*plumbing.CommitInfo, error)
	Close()
}

// Repository is the abstract repository handle the pipeline consumes. It
// does not own repository lifecycle; acquisition (clone/fetch) happens
// before a handle exists.
type Repository interface {
	ObjectOpener
	Resolver

	// Commits starts a walk over the full commit universe reachable from
	// the repository's branch refs, parents before children.
	Commits() (CommitCursor, error)

	// Changes returns the raw first-parent tree diff of the given commit,
	// with rename and copy detection applied. Root commits diff against the
	// empty tree.
	Changes(commitHash string) ([]plumbing.RawChange, error)
}
