package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/scan-io-git/perfscan/pkg/shared/errors"
	"github.com/scan-io-git/perfscan/pkg/shared/files"
)

type fakeGitHub struct {
	mux   *http.ServeMux
	calls atomic.Int32
	auth  atomic.Value
}

func newFakeGitHub(t *testing.T) (*fakeGitHub, *Client) {
	t.Helper()
	f := &fakeGitHub{mux: http.NewServeMux()}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		f.auth.Store(r.Header.Get("Authorization"))
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := NewWithHTTPClient(srv.Client(), Options{
		Token:       "test-token",
		BaseURL:     srv.URL,
		Concurrency: 2,
		MaxFiles:    10,
		MaxFileSize: 1024,
	}, nil)
	require.NoError(t, err)
	return f, client
}

func (f *fakeGitHub) json(pattern, body string) {
	f.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	})
}

func (f *fakeGitHub) blob(sha, content string) {
	f.mux.HandleFunc("GET /api/v3/repos/acme/shop/git/blobs/"+sha, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, content)
	})
}

func jsOnly(t *testing.T) *files.Matcher {
	t.Helper()
	m, err := files.NewMatcher([]string{"**/*.js"}, nil)
	require.NoError(t, err)
	return m
}

func TestPullRequestFiles(t *testing.T) {
	f, client := newFakeGitHub(t)
	f.json("GET /api/v3/repos/acme/shop/pulls/42", `{"number":42,"title":"Speed up users","head":{"sha":"headsha"}}`)
	f.json("GET /api/v3/repos/acme/shop/pulls/42/files", `[
		{"filename":"src/users.js","status":"modified","sha":"s1"},
		{"filename":"src/old.js","status":"removed","sha":"s2"},
		{"filename":"README.md","status":"modified","sha":"s3"},
		{"filename":"src/app.js","status":"added","sha":"s4"}
	]`)
	f.blob("s1", "for (const u of users) {}\n")
	f.blob("s4", "start();\n")

	snap, err := client.PullRequestFiles(context.Background(), "acme", "shop", 42, jsOnly(t))
	require.NoError(t, err)

	assert.Equal(t, "headsha", snap.Ref)
	assert.Equal(t, "PR #42: Speed up users", snap.Title)
	assert.Equal(t, 2, snap.Skipped)
	assert.False(t, snap.Truncated)
	require.Len(t, snap.Files, 2)
	assert.Equal(t, "src/app.js", snap.Files[0].Path)
	assert.Equal(t, "start();\n", string(snap.Files[0].Content))
	assert.Equal(t, "src/users.js", snap.Files[1].Path)
	assert.Equal(t, "s1", snap.Files[1].SHA)
	assert.Equal(t, int64(len("for (const u of users) {}\n")), snap.Files[1].Size)
	assert.Equal(t, "Bearer test-token", f.auth.Load())
}

func TestIssueFilesForPullRequest(t *testing.T) {
	f, client := newFakeGitHub(t)
	f.json("GET /api/v3/repos/acme/shop/issues/5", `{"number":5,"title":"x","pull_request":{"url":"https://api.github.com/repos/acme/shop/pulls/5"}}`)
	f.json("GET /api/v3/repos/acme/shop/pulls/5", `{"number":5,"title":"Refactor","head":{"sha":"abc"}}`)
	f.json("GET /api/v3/repos/acme/shop/pulls/5/files", `[]`)

	snap, err := client.IssueFiles(context.Background(), "acme", "shop", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", snap.Ref)
	assert.Equal(t, "PR #5: Refactor", snap.Title)
	assert.Empty(t, snap.Files)
}

func TestIssueFilesUsesDefaultBranch(t *testing.T) {
	f, client := newFakeGitHub(t)
	f.json("GET /api/v3/repos/acme/shop/issues/7", `{"number":7,"title":"Checkout is slow"}`)
	f.json("GET /api/v3/repos/acme/shop", `{"name":"shop","default_branch":"main"}`)
	f.json("GET /api/v3/repos/acme/shop/git/trees/main", `{"sha":"t1","truncated":false,"tree":[
		{"path":"src","type":"tree","sha":"d1"},
		{"path":"src/checkout.js","type":"blob","sha":"b1","size":20}
	]}`)
	f.blob("b1", "cart.items.forEach(x => x);\n")

	snap, err := client.IssueFiles(context.Background(), "acme", "shop", 7, jsOnly(t))
	require.NoError(t, err)
	assert.Equal(t, "main", snap.Ref)
	assert.Equal(t, "Issue #7: Checkout is slow", snap.Title)
	require.Len(t, snap.Files, 1)
	assert.Equal(t, "src/checkout.js", snap.Files[0].Path)
}

func TestRepositoryFilesFiltersTree(t *testing.T) {
	f, client := newFakeGitHub(t)
	client.maxFiles = 2

	entries := `{"path":"web/a.js","type":"blob","sha":"a","size":10},
		{"path":"web/b.js","type":"blob","sha":"b","size":10},
		{"path":"web/c.js","type":"blob","sha":"c","size":10},
		{"path":"web/huge.js","type":"blob","sha":"h","size":4096},
		{"path":"api/server.js","type":"blob","sha":"s","size":10}`
	f.json("GET /api/v3/repos/acme/shop/git/trees/v2", `{"sha":"t","truncated":false,"tree":[`+entries+`]}`)
	f.blob("a", "a();\n")
	f.blob("b", "b();\n")

	snap, err := client.RepositoryFiles(context.Background(), "acme", "shop", "v2", "/web/", jsOnly(t))
	require.NoError(t, err)

	assert.Equal(t, "acme/shop@v2:web", snap.Title)
	assert.True(t, snap.Truncated)
	assert.Equal(t, 2, snap.Skipped, "one oversized and one over the file cap")
	require.Len(t, snap.Files, 2)
	assert.Equal(t, "web/a.js", snap.Files[0].Path)
	assert.Equal(t, "web/b.js", snap.Files[1].Path)
}

func TestFile(t *testing.T) {
	f, client := newFakeGitHub(t)
	content := "db.query('SELECT * FROM users');\n"
	f.json("GET /api/v3/repos/acme/shop/contents/src/db.js", fmt.Sprintf(
		`{"type":"file","encoding":"base64","path":"src/db.js","sha":"f1","content":%q}`,
		base64.StdEncoding.EncodeToString([]byte(content))))

	snap, err := client.File(context.Background(), "acme", "shop", "main", "src/db.js")
	require.NoError(t, err)
	require.Len(t, snap.Files, 1)
	assert.Equal(t, content, string(snap.Files[0].Content))
	assert.Equal(t, "f1", snap.Files[0].SHA)
	assert.Equal(t, "main", snap.Ref)
}

func TestUpstreamErrors(t *testing.T) {
	f, client := newFakeGitHub(t)
	f.mux.HandleFunc("GET /api/v3/repos/acme/shop/pulls/404", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	_, err := client.PullRequestFiles(context.Background(), "acme", "shop", 404, nil)
	require.Error(t, err)

	var up *perrors.UpstreamError
	require.True(t, errors.As(err, &up))
	assert.Equal(t, "github", up.Service)
	assert.Equal(t, http.StatusNotFound, up.StatusCode)
}

func TestCancelledContext(t *testing.T) {
	f, client := newFakeGitHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.RepositoryFiles(ctx, "acme", "shop", "main", "", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestHost(t *testing.T) {
	client, err := NewWithHTTPClient(http.DefaultClient, Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "github.com", client.Host())

	client, err = NewWithHTTPClient(http.DefaultClient, Options{BaseURL: "https://ghe.example.com/api/v3"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ghe.example.com", client.Host())
}
