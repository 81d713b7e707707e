// Package export writes commit records as JSON lines, optionally
// lz4-compressed, for hand-off to an external scoring engine.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"

	"github.com/achievemint/gitminer/pkg/record"
)

// CompressedSuffix marks output paths that get lz4 framing.
const CompressedSuffix = ".lz4"

// Writer streams commit records to an output, one JSON object per line.
type Writer struct {
	sink io.Writer
	enc  *json.Encoder
	lz   *lz4.Writer
	file *os.File
}

// NewWriter writes records to w, compressing when compress is set.
func NewWriter(w io.Writer, compress bool) *Writer {
	writer := &Writer{sink: w}

	if compress {
		writer.lz = lz4.NewWriter(w)
		writer.enc = json.NewEncoder(writer.lz)
	} else {
		writer.enc = json.NewEncoder(w)
	}

	return writer
}

// Create opens path for writing records. Compression is inferred from the
// ".lz4" suffix.
func Create(path string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create export file: %w", err)
	}

	writer := NewWriter(file, strings.HasSuffix(path, CompressedSuffix))
	writer.file = file

	return writer, nil
}

// Write appends one record.
func (w *Writer) Write(rec *record.CommitRecord) error {
	err := w.enc.Encode(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.Hash, err)
	}

	return nil
}

// Close flushes compression framing and closes the file when Create opened
// one.
func (w *Writer) Close() error {
	if w.lz != nil {
		err := w.lz.Close()
		if err != nil {
			return fmt.Errorf("close lz4 stream: %w", err)
		}
	}

	if w.file != nil {
		err := w.file.Close()
		if err != nil {
			return fmt.Errorf("close export file: %w", err)
		}
	}

	return nil
}

// Reader iterates records written by Writer.
type Reader struct {
	dec *json.Decoder
}

// NewReader reads records from r; set compressed for lz4-framed input.
func NewReader(r io.Reader, compressed bool) *Reader {
	if compressed {
		return &Reader{dec: json.NewDecoder(lz4.NewReader(r))}
	}

	return &Reader{dec: json.NewDecoder(r)}
}

// Next decodes the next record, returning io.EOF at end of input.
func (r *Reader) Next() (*record.CommitRecord, error) {
	var rec record.CommitRecord

	err := r.dec.Decode(&rec)
	if err != nil {
		return nil, err
	}

	return &rec, nil
}
