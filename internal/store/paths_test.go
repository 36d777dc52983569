package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftworks/weft/api"
)

func TestCleanPath_Normalizes(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{".", ""},
		{"  nodes/a.md  ", "nodes/a.md"},
		{"nodes//a.md", "nodes/a.md"},
		{"nodes/./a.md", "nodes/a.md"},
		{"nodes/sub/../a.md", "nodes/a.md"},
		{`nodes\a.md`, "nodes/a.md"},
		{"nodes/", "nodes"},
	}
	for _, tc := range cases {
		got, err := CleanPath(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestCleanPath_RejectsEscapes(t *testing.T) {
	for _, in := range []string{
		"..",
		"../outside",
		"nodes/../../outside",
		"/absolute",
		`\absolute`,
		"a/../../..",
	} {
		_, err := CleanPath(in)
		require.Error(t, err, "input %q", in)
		assert.ErrorIs(t, err, api.ErrPathEscape, "input %q", in)
		assert.ErrorIs(t, err, api.ErrInvalidArgument, "input %q", in)
	}
}

func TestPathHelpers(t *testing.T) {
	assert.Equal(t, ".", fsPath(""))
	assert.Equal(t, "nodes", fsPath("nodes"))

	assert.Equal(t, "a/b", joinPath("a", "b"))
	assert.Equal(t, "b", joinPath("", "b"))

	assert.Equal(t, "nodes", dirOf("nodes/a.md"))
	assert.Equal(t, "", dirOf("a.md"))

	assert.Equal(t, "a.md", baseOf("nodes/a.md"))
	assert.Equal(t, "a.md", baseOf("a.md"))

	require.NotNil(t, parentOf("nodes/a.md"))
	assert.Equal(t, "nodes", *parentOf("nodes/a.md"))
	assert.Nil(t, parentOf("a.md"))
}

func TestPathPredicates(t *testing.T) {
	assert.True(t, isHiddenPath(".git"))
	assert.True(t, isHiddenPath("nodes/.hidden/a.md"))
	assert.False(t, isHiddenPath("nodes/a.md"))

	assert.True(t, isSidecarPath("img.png.metadata.md"))
	assert.False(t, isSidecarPath("img.png"))

	assert.True(t, isStructuredPath("nodes/a.md"))
	assert.False(t, isStructuredPath("img.png.metadata.md"))
	assert.False(t, isStructuredPath("img.png"))

	assert.True(t, hasTemplatesSegment("templates/empty.md"))
	assert.True(t, hasTemplatesSegment("sub/templates/empty.md"))
	assert.False(t, hasTemplatesSegment("nodes/templates.md"))

	assert.Equal(t, "img.png.metadata.md", sidecarFor("img.png"))
}
