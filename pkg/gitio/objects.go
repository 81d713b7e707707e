package gitio

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/achievemint/gitminer/pkg/extract"
)

// OpenObject opens a content stream for the object with the given full hex
// id. The caller owns the stream and must Free it on every path.
func (r *Repository) OpenObject(id string) (extract.ObjectStream, error) {
	oid, err := git2go.NewOid(id)
	if err != nil {
		return nil, fmt.Errorf("parse object id %q: %w", id, err)
	}

	size, _, err := r.odb.ReadHeader(oid)
	if err != nil {
		return nil, fmt.Errorf("read object header %s: %w", id, err)
	}

	stream, err := r.odb.NewReadStream(oid)
	if err != nil {
		return nil, fmt.Errorf("open object stream %s: %w", id, err)
	}

	return &objectStream{stream: stream, size: int64(size)}, nil
}

// objectStream adapts a libgit2 odb read stream. The stream holds a handle
// into the object store until freed.
type objectStream struct {
	stream *git2go.OdbReadStream
	size   int64
}

func (s *objectStream) Read(p []byte) (int, error) {
	return s.stream.Read(p)
}

// Size returns the full object size reported by the object store.
func (s *objectStream) Size() int64 {
	return s.size
}

// Free releases the stream. Safe to call more than once.
func (s *objectStream) Free() {
	if s.stream != nil {
		s.stream.Free()
		s.stream = nil
	}
}
