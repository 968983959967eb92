package ci

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(vars map[string]string) LookupFunc {
	return func(key string) string { return vars[key] }
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want Kind
	}{
		{"github actions", map[string]string{"GITHUB_ACTIONS": "true"}, KindGitHub},
		{"github repository", map[string]string{"GITHUB_REPOSITORY": "acme/shop"}, KindGitHub},
		{"gitlab", map[string]string{"GITLAB_CI": "TRUE"}, KindGitLab},
		{"bitbucket", map[string]string{"BITBUCKET_REPO_SLUG": "shop"}, KindBitbucket},
		{"local", map[string]string{}, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(envOf(tt.vars)))
		})
	}
}

func TestTargetURLForPullRequest(t *testing.T) {
	env, err := Load(envOf(map[string]string{
		"GITHUB_ACTIONS":    "true",
		"CI":                "true",
		"GITHUB_REPOSITORY": "acme/shop",
		"GITHUB_REF":        "refs/pull/42/merge",
		"GITHUB_SHA":        "abc123",
	}))
	require.NoError(t, err)

	assert.True(t, env.CI)
	assert.Equal(t, "https://github.com", env.ServerURL)
	assert.Equal(t, 42, env.PullRequest())

	target, err := env.TargetURL()
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/acme/shop/pull/42", target)
}

func TestTargetURLForPush(t *testing.T) {
	env, err := Load(envOf(map[string]string{
		"GITHUB_REPOSITORY": "acme/shop",
		"GITHUB_SERVER_URL": "https://ghe.example.com/",
		"GITHUB_REF":        "refs/heads/feature/x",
		"GITHUB_SHA":        "abc123",
	}))
	require.NoError(t, err)
	assert.Zero(t, env.PullRequest())

	target, err := env.TargetURL()
	require.NoError(t, err)
	assert.Equal(t, "https://ghe.example.com/acme/shop/tree/abc123", target)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(envOf(map[string]string{"GITLAB_CI": "true"}))
	assert.ErrorContains(t, err, "gitlab pipelines are not supported")

	_, err = Load(envOf(map[string]string{}))
	assert.ErrorContains(t, err, "unknown pipelines are not supported")

	_, err = Load(envOf(map[string]string{"GITHUB_ACTIONS": "true", "GITHUB_REPOSITORY": "shop"}))
	assert.ErrorContains(t, err, "owner/repo")

	env, err := Load(envOf(map[string]string{"GITHUB_REPOSITORY": "acme/shop", "GITHUB_REF": "refs/pull/x/merge"}))
	require.NoError(t, err)
	_, err = env.TargetURL()
	assert.ErrorContains(t, err, "GITHUB_SHA")
}
