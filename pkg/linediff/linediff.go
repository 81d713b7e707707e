// Package linediff computes line-level edit scripts between two text blobs.
//
// Lines compare equal iff their raw bytes are identical; no whitespace
// normalization is applied. The underlying diff runs in line mode (each
// distinct line collapsed to a rune before the Myers pass), so inputs up to
// the loader's text cap stay cheap.
package linediff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/achievemint/gitminer/pkg/record"
)

// Diff returns the ordered edit script transforming old into new. Every
// removed line carries its absolute 0-based index into the old content and
// every added line its index into the new content. Identical inputs yield
// an empty (non-nil) script.
func Diff(oldText, newText []byte) []record.Edit {
	edits := []record.Edit{}

	if string(oldText) == string(newText) {
		return edits
	}

	dmp := diffmatchpatch.New()
	src, dst, lineIndex := dmp.DiffLinesToRunes(string(oldText), string(newText))
	diffs := dmp.DiffMainRunes(src, dst, false)
	diffs = dmp.DiffCharsToLines(diffs, lineIndex)

	var (
		pending record.Edit
		open    bool
		oldLine int
		newLine int
	)

	flush := func() {
		if open {
			edits = append(edits, pending)
			pending = record.Edit{}
			open = false
		}
	}

	for _, diff := range diffs {
		lines := splitLines(diff.Text)

		switch diff.Type {
		case diffmatchpatch.DiffEqual:
			flush()

			oldLine += len(lines)
			newLine += len(lines)
		case diffmatchpatch.DiffDelete:
			open = true

			for _, text := range lines {
				pending.Removed = append(pending.Removed, record.Line{Number: oldLine, Text: text})
				oldLine++
			}
		case diffmatchpatch.DiffInsert:
			open = true

			for _, text := range lines {
				pending.Added = append(pending.Added, record.Line{Number: newLine, Text: text})
				newLine++
			}
		}
	}

	flush()

	return edits
}

// splitLines splits a chunk of content into lines without their trailing
// newlines. A final line without a terminating newline is still a line;
// empty content has no lines.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}
