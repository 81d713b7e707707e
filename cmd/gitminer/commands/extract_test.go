package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/achievemint/gitminer/pkg/record"
)

func TestIsRemoteURI(t *testing.T) {
	cases := []struct {
		uri    string
		remote bool
	}{
		{"https://github.com/acme/widgets.git", true},
		{"ssh://git@example.com/team/tooling", true},
		{"git@github.com:acme/widgets.git", true},
		{".", false},
		{"/srv/repos/widgets.git", false},
		{"relative/path/repo", false},
		{"repo:with/late-colon", true},
		{"path/with:colon", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.remote, isRemoteURI(tc.uri), "uri %q", tc.uri)
	}
}

func TestResolveRepoURI(t *testing.T) {
	assert.Equal(t, ".", resolveRepoURI(nil))
	assert.Equal(t, "/srv/repo", resolveRepoURI([]string{"/srv/repo"}))
}

func TestAccumulate(t *testing.T) {
	var stats runStats

	accumulate(&stats, &record.CommitRecord{
		Files: []record.ChangedFile{
			{Lines: record.LineCount{Added: 3, Removed: 1}},
			{Lines: record.LineCount{Added: 2}},
		},
	})
	accumulate(&stats, &record.CommitRecord{})

	assert.Equal(t, 2, stats.commits)
	assert.Equal(t, 2, stats.files)
	assert.Equal(t, 5, stats.linesAdded)
	assert.Equal(t, 1, stats.linesRemoved)
}
