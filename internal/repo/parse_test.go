package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftworks/weft/api"
)

func TestParseStatus_CleanTree(t *testing.T) {
	st := parseStatus("## main...origin/main\n")
	assert.Equal(t, "main", st.Branch)
	assert.True(t, st.Clean)
	assert.Empty(t, st.Changes)
	assert.Zero(t, st.Ahead)
	assert.Zero(t, st.Behind)
}

func TestParseStatus_AheadBehind(t *testing.T) {
	st := parseStatus("## main...origin/main [ahead 2, behind 1]\n M nodes/a.md\n?? nodes/b.md\n")
	assert.Equal(t, "main", st.Branch)
	assert.Equal(t, 2, st.Ahead)
	assert.Equal(t, 1, st.Behind)
	assert.False(t, st.Clean)
	require.Len(t, st.Changes, 2)
	assert.Equal(t, api.Change{Path: "nodes/a.md", Status: "M"}, st.Changes[0])
	assert.Equal(t, api.Change{Path: "nodes/b.md", Status: "??"}, st.Changes[1])
}

func TestParseStatus_AheadOnly(t *testing.T) {
	st := parseStatus("## work...origin/work [ahead 3]\n")
	assert.Equal(t, "work", st.Branch)
	assert.Equal(t, 3, st.Ahead)
	assert.Zero(t, st.Behind)
}

func TestParseStatus_NoUpstream(t *testing.T) {
	st := parseStatus("## main\nA  templates/empty.md\n")
	assert.Equal(t, "main", st.Branch)
	require.Len(t, st.Changes, 1)
	assert.Equal(t, "A", st.Changes[0].Status)
}

func TestParseStatus_UnbornBranch(t *testing.T) {
	st := parseStatus("## No commits yet on main\n?? .gitignore\n")
	assert.Equal(t, "main", st.Branch)
	assert.False(t, st.Clean)
}

func TestParseStatus_Empty(t *testing.T) {
	st := parseStatus("")
	assert.True(t, st.Clean)
	assert.NotNil(t, st.Changes)
}

func TestParseLog_MultipleCommits(t *testing.T) {
	out := "abc123\nalice\n2025-01-02T03:04:05+00:00\nCreated node: First\n" + logSep +
		"\ndef456\nbob\n2025-01-03T04:05:06+00:00\nUpdated node: First\n\nwith a body line\n" + logSep
	commits := parseLog(out)
	require.Len(t, commits, 2)
	assert.Equal(t, api.Commit{
		Hash:    "abc123",
		Author:  "alice",
		Date:    "2025-01-02T03:04:05+00:00",
		Message: "Created node: First",
	}, commits[0])
	assert.Equal(t, "Updated node: First\n\nwith a body line", commits[1].Message)
}

func TestParseLog_EmptyMessage(t *testing.T) {
	commits := parseLog("abc123\nalice\n2025-01-02T03:04:05+00:00\n" + logSep)
	require.Len(t, commits, 1)
	assert.Equal(t, "", commits[0].Message)
}

func TestParseLog_Empty(t *testing.T) {
	assert.Empty(t, parseLog(""))
	assert.Empty(t, parseLog("\n\n"))
}

func TestParseLog_MalformedChunkSkipped(t *testing.T) {
	out := "not-enough-fields\n" + logSep +
		"abc123\nalice\n2025-01-02T03:04:05+00:00\nok\n" + logSep
	commits := parseLog(out)
	require.Len(t, commits, 1)
	assert.Equal(t, "abc123", commits[0].Hash)
}

func TestParseBranches_CurrentMarker(t *testing.T) {
	branches := parseBranches("dev\t \nmain\t*\n")
	require.Len(t, branches, 2)
	assert.Equal(t, api.Branch{Name: "dev", Current: false}, branches[0])
	assert.Equal(t, api.Branch{Name: "main", Current: true}, branches[1])
}

func TestParseBranches_Empty(t *testing.T) {
	assert.Empty(t, parseBranches(""))
}
