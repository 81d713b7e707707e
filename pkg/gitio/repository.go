package gitio

import (
	"fmt"
	"strings"

	git2go "github.com/libgit2/git2go/v34"
)

// hexIDLength is the length of a full hex-encoded SHA-1 object id.
const hexIDLength = 40

// minAbbrevLength is the shortest abbreviated id libgit2 will resolve.
const minAbbrevLength = 4

// Repository wraps a libgit2 repository and implements the extraction
// pipeline's repository handle. One Repository serves one processing
// session; it is not safe for concurrent use.
type Repository struct {
	repo *git2go.Repository
	odb  *git2go.Odb
	path string
	diff DiffOptions
}

// OpenRepository opens a local repository at the given path.
func OpenRepository(path string, diff DiffOptions) (*Repository, error) {
	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}

	odb, err := repo.Odb()
	if err != nil {
		repo.Free()

		return nil, fmt.Errorf("open object database: %w", err)
	}

	return &Repository{repo: repo, odb: odb, path: path, diff: diff}, nil
}

// Path returns the local repository path.
func (r *Repository) Path() string {
	return r.path
}

// Free releases the repository and its object database. Safe to call more
// than once.
func (r *Repository) Free() {
	if r.odb != nil {
		r.odb.Free()
		r.odb = nil
	}

	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// ResolveAbbrev expands a possibly-abbreviated hex object id to the full
// id. Ambiguous prefixes and unknown objects return an error; callers must
// not guess.
func (r *Repository) ResolveAbbrev(id string) (string, error) {
	if len(id) < minAbbrevLength || len(id) > hexIDLength {
		return "", fmt.Errorf("resolve %q: unusable id length %d", id, len(id))
	}

	padded := id + strings.Repeat("0", hexIDLength-len(id))

	oid, err := git2go.NewOid(padded)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", id, err)
	}

	full, err := r.odb.ExistsPrefix(oid, uint(len(id)))
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", id, err)
	}

	return full.String(), nil
}
