package extract

import (
	"fmt"
	"strings"

	"github.com/achievemint/gitminer/pkg/linediff"
	"github.com/achievemint/gitminer/pkg/plumbing"
	"github.com/achievemint/gitminer/pkg/record"
)

// Builder composes the tree differ, classifier, blob loader and line diff
// engine into one CommitRecord per commit. A record is built exactly once
// per commit visited; any per-file failure aborts the whole commit.
type Builder struct {
	repo  Repository
	blobs *BlobLoader
}

// NewBuilder creates a builder over the given repository handle.
func NewBuilder(repo Repository) *Builder {
	return &Builder{
		repo:  repo,
		blobs: NewBlobLoader(repo),
	}
}

// Build produces the structured record for one commit.
func (b *Builder) Build(info *plumbing.CommitInfo) (*record.CommitRecord, error) {
	changes, err := b.repo.Changes(info.Hash)
	if err != nil {
		return nil, fmt.Errorf("diff commit %s: %w", info.Hash, err)
	}

	files := make([]record.ChangedFile, 0, len(changes))

	for _, change := range changes {
		file, fileErr := b.buildFile(change)
		if fileErr != nil {
			return nil, fmt.Errorf("commit %s path %q: %w", info.Hash, changePath(change), fileErr)
		}

		files = append(files, file)
	}

	return &record.CommitRecord{
		Hash:        info.Hash,
		AuthorName:  info.Author.Name,
		AuthorEmail: record.NormalizeEmail(info.Author.Email),
		When:        info.Author.When,
		BetweenTime: info.Committer.When.Unix() - info.Author.When.Unix(),
		Message:     strings.TrimSpace(info.Message),
		Parents:     info.Parents,
		Files:       files,
	}, nil
}

// buildFile classifies one raw change, resolves its sides, loads content
// and attaches the line diff and aggregate counts where both sides allow it.
func (b *Builder) buildFile(change plumbing.RawChange) (record.ChangedFile, error) {
	kind, err := Classify(change.Status)
	if err != nil {
		return record.ChangedFile{}, err
	}

	file := record.ChangedFile{Kind: kind}

	var oldData, newData []byte

	if ref := ResolveSide(change.Old, b.repo); ref != nil {
		side, data, loadErr := b.blobs.Load(ref.ID, ref.Path)
		if loadErr != nil {
			return record.ChangedFile{}, loadErr
		}

		file.OldFile = side
		oldData = data
	}

	if ref := ResolveSide(change.New, b.repo); ref != nil {
		side, data, loadErr := b.blobs.Load(ref.ID, ref.Path)
		if loadErr != nil {
			return record.ChangedFile{}, loadErr
		}

		file.NewFile = side
		newData = data
	}

	if diffSides(file) {
		file.Diff = &record.LineDiff{Edits: linediff.Diff(oldData, newData)}
		file.Lines = file.Diff.Count()
	}

	file.Language = detectLanguage(&file, oldData, newData)

	return file, nil
}

// diffSides reports whether the change carries a line diff: every side the
// kind requires must have resolved to text content. The missing side of an
// add or delete counts as empty text.
func diffSides(file record.ChangedFile) bool {
	switch file.Kind {
	case record.KindAdd:
		return isText(file.NewFile)
	case record.KindDelete:
		return isText(file.OldFile)
	case record.KindEdit, record.KindRename, record.KindCopy:
		return isText(file.OldFile) && isText(file.NewFile)
	default:
		return false
	}
}

func isText(side *record.FileSide) bool {
	return side != nil && side.Type == record.TypeText
}

// changePath names the change for error context, preferring the new side.
func changePath(change plumbing.RawChange) string {
	if change.New.Path != "" {
		return change.New.Path
	}

	return change.Old.Path
}
