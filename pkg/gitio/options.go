package gitio

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// CacheOptions tunes libgit2's process-wide object store caches. The
// options are global to the process: apply them once before any repository
// session starts and treat them as read-only afterwards. Zero fields leave
// the corresponding library default untouched.
type CacheOptions struct {
	// ObjectCacheBytes caps the in-memory object (delta-base) cache.
	ObjectCacheBytes int
	// MwindowSizeBytes is the size of a single pack mmap window.
	MwindowSizeBytes int
	// MwindowMappedLimitBytes caps the total mmapped pack bytes.
	MwindowMappedLimitBytes int
}

// ApplyCacheOptions installs the cache tuning into libgit2.
func ApplyCacheOptions(opts CacheOptions) error {
	if opts.ObjectCacheBytes > 0 {
		err := git2go.SetCacheMaxSize(opts.ObjectCacheBytes)
		if err != nil {
			return fmt.Errorf("set object cache size: %w", err)
		}
	}

	if opts.MwindowSizeBytes > 0 {
		err := git2go.SetMwindowSize(opts.MwindowSizeBytes)
		if err != nil {
			return fmt.Errorf("set mwindow size: %w", err)
		}
	}

	if opts.MwindowMappedLimitBytes > 0 {
		err := git2go.SetMwindowMappedLimit(opts.MwindowMappedLimitBytes)
		if err != nil {
			return fmt.Errorf("set mwindow mapped limit: %w", err)
		}
	}

	return nil
}

// DefaultRenameThreshold is the similarity score (0-100) above which a
// delete/add pair is reported as a rename.
const DefaultRenameThreshold = 50

// DiffOptions controls tree diffing for one repository handle.
type DiffOptions struct {
	// RenameThreshold is the rename similarity score; 0 means
	// DefaultRenameThreshold.
	RenameThreshold uint16
	// DetectCopies also pairs additions with similar surviving files.
	DetectCopies bool
}

func (o DiffOptions) renameThreshold() uint16 {
	if o.RenameThreshold == 0 {
		return DefaultRenameThreshold
	}

	return o.RenameThreshold
}
