package extract_test

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/achievemint/gitminer/pkg/extract"
	"github.com/achievemint/gitminer/pkg/plumbing"
	"github.com/achievemint/gitminer/pkg/record"
)

type countingObserver struct {
	records int
	elapsed []time.Duration
}

func (o *countingObserver) CommitExtracted(_ *record.CommitRecord, elapsed time.Duration) {
	o.records++
	o.elapsed = append(o.elapsed, elapsed)
}

func threeCommitRepo() *fakeRepo {
	repo := newFakeRepo()
	repo.objects["b1"] = []byte("one\n")
	repo.commits = []*plumbing.CommitInfo{
		commitInfo("c1"),
		commitInfo("c2", "c1"),
		commitInfo("c3", "c2"),
	}
	repo.changes["c1"] = []plumbing.RawChange{
		{Status: plumbing.StatusAdded, New: blobSide("b1", "one.txt", 4)},
	}
	repo.changes["c2"] = nil
	repo.changes["c3"] = nil

	return repo
}

func TestRecordsAreLazy(t *testing.T) {
	repo := threeCommitRepo()

	iter, err := extract.New(repo).Records()
	require.NoError(t, err)
	defer iter.Close()

	rec, err := iter.Next()
	require.NoError(t, err)
	assert.Equal(t, "c1", rec.Hash)

	// Only the requested commit has been diffed.
	assert.Equal(t, []string{"c1"}, repo.changesCalls)
}

func TestRecordsExhaustWithEOF(t *testing.T) {
	repo := threeCommitRepo()

	iter, err := extract.New(repo).Records()
	require.NoError(t, err)
	defer iter.Close()

	var hashes []string

	for {
		rec, nextErr := iter.Next()
		if nextErr == io.EOF {
			break
		}

		require.NoError(t, nextErr)
		hashes = append(hashes, rec.Hash)
	}

	assert.Equal(t, []string{"c1", "c2", "c3"}, hashes)

	// io.EOF is sticky.
	_, err = iter.Next()
	assert.Equal(t, io.EOF, err)
}

func TestEarlyCloseReleasesCursor(t *testing.T) {
	repo := threeCommitRepo()

	iter, err := extract.New(repo).Records()
	require.NoError(t, err)

	_, err = iter.Next()
	require.NoError(t, err)

	iter.Close()

	assert.Equal(t, []string{"c1"}, repo.changesCalls)
}

func TestForEachVisitsEverything(t *testing.T) {
	repo := threeCommitRepo()

	iter, err := extract.New(repo).Records()
	require.NoError(t, err)

	count := 0

	err = iter.ForEach(func(_ *record.CommitRecord) error {
		count++

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestForEachStopsOnCallbackError(t *testing.T) {
	repo := threeCommitRepo()

	iter, err := extract.New(repo).Records()
	require.NoError(t, err)

	stop := assert.AnError

	err = iter.ForEach(func(_ *record.CommitRecord) error {
		return stop
	})
	assert.Equal(t, stop, err)
	assert.Equal(t, []string{"c1"}, repo.changesCalls)
}

func TestObserverSeesEveryRecord(t *testing.T) {
	repo := threeCommitRepo()
	obs := &countingObserver{}

	iter, err := extract.New(repo, extract.WithObserver(obs)).Records()
	require.NoError(t, err)

	err = iter.ForEach(func(_ *record.CommitRecord) error { return nil })
	require.NoError(t, err)

	assert.Equal(t, 3, obs.records)
	assert.Len(t, obs.elapsed, 3)
}

func TestRepeatedRecordsCallsAreIndependent(t *testing.T) {
	repo := threeCommitRepo()
	extractor := extract.New(repo)

	for range 2 {
		iter, err := extractor.Records()
		require.NoError(t, err)

		err = iter.ForEach(func(_ *record.CommitRecord) error { return nil })
		require.NoError(t, err)
	}

	assert.Len(t, repo.changesCalls, 6)
}
