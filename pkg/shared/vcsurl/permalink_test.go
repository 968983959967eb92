package vcsurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPermalink(t *testing.T) {
	tests := []struct {
		name        string
		params      PermalinkParams
		expected    string
		expectedErr error
	}{
		{
			name:     "line range",
			params:   PermalinkParams{Namespace: "org", Project: "repo", Ref: "main", File: "src/app.js", StartLine: 10, EndLine: 20},
			expected: "https://github.com/org/repo/blob/main/src/app.js#L10-L20",
		},
		{
			name:     "single line",
			params:   PermalinkParams{Namespace: "org", Project: "repo", Ref: "abc123", File: "main.js", StartLine: 5, EndLine: 5},
			expected: "https://github.com/org/repo/blob/abc123/main.js#L5",
		},
		{
			name:     "end before start is a single line",
			params:   PermalinkParams{Namespace: "org", Project: "repo", Ref: "main", File: "a.js", StartLine: 9, EndLine: 3},
			expected: "https://github.com/org/repo/blob/main/a.js#L9",
		},
		{
			name:     "no line numbers",
			params:   PermalinkParams{Namespace: "org", Project: "repo", Ref: "main", File: "README.md"},
			expected: "https://github.com/org/repo/blob/main/README.md",
		},
		{
			name:     "enterprise host and windows path",
			params:   PermalinkParams{Host: "github.example.com", Namespace: "team", Project: "app", Ref: "develop", File: "\\cmd\\main.js", StartLine: 100},
			expected: "https://github.example.com/team/app/blob/develop/cmd/main.js#L100",
		},
		{
			name:        "missing namespace",
			params:      PermalinkParams{Project: "repo", Ref: "main", File: "a.js"},
			expectedErr: ErrMissingNamespace,
		},
		{
			name:        "missing project",
			params:      PermalinkParams{Namespace: "org", Ref: "main", File: "a.js"},
			expectedErr: ErrMissingProject,
		},
		{
			name:        "missing ref",
			params:      PermalinkParams{Namespace: "org", Project: "repo", File: "a.js"},
			expectedErr: ErrMissingRef,
		},
		{
			name:        "missing file",
			params:      PermalinkParams{Namespace: "org", Project: "repo", Ref: "main"},
			expectedErr: ErrMissingFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildPermalink(tt.params)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestVCSURLPermalink(t *testing.T) {
	u, err := Parse("https://github.com/acme/shop/pull/42")
	require.NoError(t, err)

	link, err := u.Permalink("deadbeef", "src/users.js", 3, 7)
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/acme/shop/blob/deadbeef/src/users.js#L3-L7", link)
}
