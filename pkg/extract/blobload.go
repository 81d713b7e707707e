package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/achievemint/gitminer/pkg/record"
)

const (
	// BinaryProbeSize is the number of leading bytes inspected for the
	// binary heuristic (a NUL byte within the window means binary).
	BinaryProbeSize = 2048

	// MaxTextSize caps how much text content is loaded per blob. Content
	// past the cap is truncated silently; the reported size stays the full
	// object size.
	MaxTextSize = 512 * 1024
)

// BlobLoader loads blob content under the probe and text-size constraints
// and classifies it as text or binary.
type BlobLoader struct {
	objects ObjectOpener
}

// NewBlobLoader creates a loader reading through the given opener.
func NewBlobLoader(objects ObjectOpener) *BlobLoader {
	return &BlobLoader{objects: objects}
}

// Load opens the object and returns its FileSide metadata plus the loaded
// bytes. Binary blobs return an empty payload; their content is never
// needed downstream. The path is stored normalized. The object stream is
// released on every exit path.
func (l *BlobLoader) Load(id, path string) (*record.FileSide, []byte, error) {
	stream, err := l.objects.OpenObject(id)
	if err != nil {
		return nil, nil, fmt.Errorf("open object %s: %w", id, errors.Join(ErrObjectAccess, err))
	}
	defer stream.Free()

	side := &record.FileSide{
		ID:   id,
		Size: stream.Size(),
		Path: record.NormalizePath(path),
	}

	probe := make([]byte, BinaryProbeSize)

	n, err := io.ReadFull(stream, probe)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, nil, fmt.Errorf("read object %s: %w", id, errors.Join(ErrObjectAccess, err))
	}

	probe = probe[:n:n]

	if bytes.IndexByte(probe, 0) >= 0 {
		side.Type = record.TypeBinary

		return side, nil, nil
	}

	side.Type = record.TypeText

	if n < BinaryProbeSize {
		// The probe consumed the whole object.
		return side, probe, nil
	}

	rest, err := io.ReadAll(io.LimitReader(stream, int64(MaxTextSize-n)))
	if err != nil {
		return nil, nil, fmt.Errorf("read object %s: %w", id, errors.Join(ErrObjectAccess, err))
	}

	return side, append(probe, rest...), nil
}
