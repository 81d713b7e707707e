package extract

import (
	"github.com/src-d/enry/v2"

	"github.com/achievemint/gitminer/pkg/record"
)

// detectLanguage tags a changed file with the language of its surviving
// side. Binary payloads and unrecognized content yield the empty string.
func detectLanguage(file *record.ChangedFile, oldData, newData []byte) string {
	side, data := file.NewFile, newData
	if side == nil {
		side, data = file.OldFile, oldData
	}

	if side == nil || side.Type != record.TypeText {
		return ""
	}

	return enry.GetLanguage(side.Path, data)
}
