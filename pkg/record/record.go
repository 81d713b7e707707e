// Package record defines the structured per-commit records emitted by the
// extraction pipeline and the normalization rules applied to their fields.
package record

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ChangeKind is the semantic kind of a single file change. The set is
// closed; the classifier rejects anything it cannot map instead of
// defaulting.
type ChangeKind int

const (
	// KindAdd is a file that exists only in the commit's tree.
	KindAdd ChangeKind = iota + 1
	// KindEdit is a file modified in place.
	KindEdit
	// KindDelete is a file removed from the tree.
	KindDelete
	// KindRename is a delete/add pair with sufficiently similar content.
	KindRename
	// KindCopy is an addition detected as a copy of a surviving file.
	KindCopy
)

// String returns the lower-case kind name.
func (k ChangeKind) String() string {
	switch k {
	case KindAdd:
		return "add"
	case KindEdit:
		return "edit"
	case KindDelete:
		return "delete"
	case KindRename:
		return "rename"
	case KindCopy:
		return "copy"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// MarshalJSON encodes the kind as its string name.
func (k ChangeKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// UnmarshalJSON decodes a kind from its string name.
func (k *ChangeKind) UnmarshalJSON(data []byte) error {
	var name string

	err := json.Unmarshal(data, &name)
	if err != nil {
		return err
	}

	switch name {
	case "add":
		*k = KindAdd
	case "edit":
		*k = KindEdit
	case "delete":
		*k = KindDelete
	case "rename":
		*k = KindRename
	case "copy":
		*k = KindCopy
	default:
		return fmt.Errorf("unknown change kind %q", name)
	}

	return nil
}

// ContentType classifies blob content as diffable text or opaque binary.
type ContentType string

const (
	// TypeText marks content the line differ may consume.
	TypeText ContentType = "text"
	// TypeBinary marks content excluded from line diffing.
	TypeBinary ContentType = "binary"
)

// FileSide describes the old or new side of a changed file. The object id
// is always fully resolved before it is stored here.
type FileSide struct {
	ID   string      `json:"id"`
	Size int64       `json:"size"`
	Type ContentType `json:"type"`
	Path string      `json:"path"`
}

// Line is a single line of content with its absolute 0-based index into
// the side it belongs to. Text excludes the trailing newline; an
// unterminated final line still counts as a line.
type Line struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Edit is one contiguous replacement region: the lines removed from the
// old side and the lines inserted on the new side. Either slice may be
// empty for pure insertions or deletions.
type Edit struct {
	Removed []Line `json:"removed,omitempty"`
	Added   []Line `json:"added,omitempty"`
}

// LineDiff is an ordered edit script. A present LineDiff with no edits
// means both sides were diffable and identical (e.g. a pure rename);
// an absent LineDiff means at least one side was binary or missing.
type LineDiff struct {
	Edits []Edit `json:"edits"`
}

// Count sums added and removed line totals across all edits.
func (d *LineDiff) Count() LineCount {
	var c LineCount
	if d == nil {
		return c
	}

	for _, e := range d.Edits {
		c.Added += len(e.Added)
		c.Removed += len(e.Removed)
	}

	return c
}

// LineCount aggregates the line-level churn of one changed file.
type LineCount struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// ChangedFile is one classified file change within a commit.
type ChangedFile struct {
	Kind    ChangeKind `json:"kind"`
	OldFile *FileSide  `json:"old_file,omitempty"`
	NewFile *FileSide  `json:"new_file,omitempty"`
	Diff    *LineDiff  `json:"diff,omitempty"`
	Lines   LineCount  `json:"lines"`
	// Language is the detected language of the surviving side, empty when
	// detection found nothing useful (binary payloads, unknown extensions).
	Language string `json:"language,omitempty"`
}

// CommitRecord is the immutable per-commit output of the pipeline. It is
// built exactly once per commit visited.
type CommitRecord struct {
	Hash        string        `json:"hash"`
	AuthorName  string        `json:"author_name"`
	AuthorEmail string        `json:"author_email"`
	When        time.Time     `json:"when"`
	BetweenTime int64         `json:"between_time"`
	Message     string        `json:"message"`
	Parents     []string      `json:"parents"`
	Files       []ChangedFile `json:"files"`
}

// NormalizeEmail applies the process-wide author email normalization:
// surrounding whitespace trimmed, then lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePath strips a single leading slash from a reported path. The
// path "/" is preserved as-is.
func NormalizePath(path string) string {
	if path == "/" {
		return path
	}

	return strings.TrimPrefix(path, "/")
}
