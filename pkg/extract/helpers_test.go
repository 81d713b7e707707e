package extract_test

import (
	"bytes"
	"errors"
	"io"

	"github.com/achievemint/gitminer/pkg/extract"
	"github.com/achievemint/gitminer/pkg/plumbing"
)

var (
	errObjectMissing = errors.New("object missing")
	errAmbiguous     = errors.New("ambiguous prefix")
)

// fakeStream serves fixed bytes and tracks Free calls.
type fakeStream struct {
	reader *bytes.Reader
	size   int64
	freed  int
}

func (s *fakeStream) Read(p []byte) (int, error) { return s.reader.Read(p) }

func (s *fakeStream) Size() int64 { return s.size }

func (s *fakeStream) Free() { s.freed++ }

// fakeRepo is an in-memory extract.Repository.
type fakeRepo struct {
	objects map[string][]byte
	abbrev  map[string]string
	commits []*plumbing.CommitInfo
	changes map[string][]plumbing.RawChange

	opened       []*fakeStream
	changesCalls []string
	openErr      error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		objects: map[string][]byte{},
		abbrev:  map[string]string{},
		changes: map[string][]plumbing.RawChange{},
	}
}

func (r *fakeRepo) OpenObject(id string) (extract.ObjectStream, error) {
	if r.openErr != nil {
		return nil, r.openErr
	}

	data, ok := r.objects[id]
	if !ok {
		return nil, errObjectMissing
	}

	stream := &fakeStream{reader: bytes.NewReader(data), size: int64(len(data))}
	r.opened = append(r.opened, stream)

	return stream, nil
}

func (r *fakeRepo) ResolveAbbrev(id string) (string, error) {
	full, ok := r.abbrev[id]
	if !ok {
		return "", errAmbiguous
	}

	return full, nil
}

func (r *fakeRepo) Commits() (extract.CommitCursor, error) {
	return &fakeCursor{infos: r.commits}, nil
}

func (r *fakeRepo) Changes(commitHash string) ([]plumbing.RawChange, error) {
	r.changesCalls = append(r.changesCalls, commitHash)

	return r.changes[commitHash], nil
}

// fakeCursor walks a fixed commit list.
type fakeCursor struct {
	infos  []*plumbing.CommitInfo
	pos    int
	closed int
}

func (c *fakeCursor) Next() (*plumbing.CommitInfo, error) {
	if c.pos >= len(c.infos) {
		return nil, io.EOF
	}

	info := c.infos[c.pos]
	c.pos++

	return info, nil
}

func (c *fakeCursor) Close() { c.closed++ }

// blobSide builds a regular-file raw side with a trusted id.
func blobSide(id, path string, size int64) plumbing.RawSide {
	return plumbing.RawSide{
		ID:      id,
		IDValid: true,
		Path:    path,
		Mode:    plumbing.ModeBlob,
		Size:    size,
	}
}
