package extract

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/achievemint/gitminer/pkg/record"
)

// Observer receives a notification for every record produced. Implemented
// by the observability collector; a nil observer disables reporting.
type Observer interface {
	CommitExtracted(rec *record.CommitRecord, elapsed time.Duration)
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the structured logger used for progress reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.log = logger
	}
}

// WithObserver attaches a metrics observer.
func WithObserver(obs Observer) Option {
	return func(e *Extractor) {
		e.observer = obs
	}
}

// Extractor drives the extraction pipeline for one repository session.
// Sessions are independent; processing multiple repositories concurrently
// needs one Extractor per repository handle.
type Extractor struct {
	repo     Repository
	builder  *Builder
	log      *slog.Logger
	observer Observer
}

// New creates an extractor over the given repository handle.
func New(repo Repository, opts ...Option) *Extractor {
	e := &Extractor{
		repo:    repo,
		builder: NewBuilder(repo),
		log:     slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Records starts a lazy walk over the repository's history. Nothing past
// the currently requested commit is computed; Close abandons the stream.
func (e *Extractor) Records() (*RecordIter, error) {
	cursor, err := e.repo.Commits()
	if err != nil {
		return nil, err
	}

	return &RecordIter{
		cursor:   cursor,
		builder:  e.builder,
		log:      e.log,
		observer: e.observer,
	}, nil
}

// RecordIter is a single-pass, forward-only cursor over commit records.
// It is not restartable; re-invoke Extractor.Records for a new pass.
type RecordIter struct {
	cursor   CommitCursor
	builder  *Builder
	log      *slog.Logger
	observer Observer
}

// Next builds and returns the next commit's record. It returns io.EOF when
// history is exhausted. Build failures propagate as-is: the commit's record
// is aborted whole, never emitted partially.
func (it *RecordIter) Next() (*record.CommitRecord, error) {
	info, err := it.cursor.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}

		return nil, err
	}

	start := time.Now()

	rec, err := it.builder.Build(info)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)

	if it.observer != nil {
		it.observer.CommitExtracted(rec, elapsed)
	}

	it.log.Debug("extract: commit record built",
		"hash", rec.Hash,
		"files", len(rec.Files),
		"elapsed", elapsed,
	)

	return rec, nil
}

// ForEach consumes the remaining records, stopping at the first error. The
// cursor is closed in every case.
func (it *RecordIter) ForEach(cb func(*record.CommitRecord) error) error {
	defer it.Close()

	for {
		rec, err := it.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		cbErr := cb(rec)
		if cbErr != nil {
			return cbErr
		}
	}
}

// Close releases the underlying commit walk. Safe to call more than once.
func (it *RecordIter) Close() {
	it.cursor.Close()
}
