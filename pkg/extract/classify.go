package extract

import (
	"fmt"

	"github.com/achievemint/gitminer/pkg/plumbing"
	"github.com/achievemint/gitminer/pkg/record"
)

// Classify maps a raw tree-diff status to its semantic change kind. The
// mapping is closed; any status outside the supported set returns
// ErrUnknownChangeKind, which callers must treat as fatal for the commit.
func Classify(status plumbing.ChangeStatus) (record.ChangeKind, error) {
	switch status {
	case plumbing.StatusAdded:
		return record.KindAdd, nil
	case plumbing.StatusDeleted:
		return record.KindDelete, nil
	case plumbing.StatusModified:
		return record.KindEdit, nil
	case plumbing.StatusRenamed:
		return record.KindRename, nil
	case plumbing.StatusCopied:
		return record.KindCopy, nil
	default:
		return 0, fmt.Errorf("%w: status %d", ErrUnknownChangeKind, int(status))
	}
}

// ResolveSide turns one side of a raw change into a FileSide reference, or
// nil when the side cannot carry content: the side is absent (add/delete),
// the entry is not a regular file blob (submodule links, symlinks), or the
// object id cannot be resolved unambiguously. Resolution never guesses
// between candidates.
//
// The returned FileSide holds the full id and normalized path; size and
// content type are filled in by the BlobLoader.
func ResolveSide(side plumbing.RawSide, resolver Resolver) *record.FileSide {
	if !side.Mode.IsRegularFile() {
		return nil
	}

	id := side.ID
	if !side.IDValid {
		full, err := resolver.ResolveAbbrev(side.ID)
		if err != nil {
			return nil
		}

		id = full
	}

	if id == "" {
		return nil
	}

	return &record.FileSide{
		ID:   id,
		Size: side.Size,
		Path: record.NormalizePath(side.Path),
	}
}
