package github

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/google/go-github/v47/github"
	"golang.org/x/sync/errgroup"

	"github.com/scan-io-git/perfscan/pkg/shared/files"
)

// blobRef is a file selected for download.
type blobRef struct {
	path string
	sha  string
}

// PullRequestFiles returns the added and modified files of a pull request at its head commit.
func (c *Client) PullRequestFiles(ctx context.Context, owner, repo string, number int, m *files.Matcher) (*Snapshot, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	pr, resp, err := c.gh.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, upstream(fmt.Sprintf("get pull request %s/%s#%d", owner, repo, number), resp, err)
	}

	snap := &Snapshot{
		Owner: owner,
		Repo:  repo,
		Ref:   pr.GetHead().GetSHA(),
		Title: fmt.Sprintf("PR #%d: %s", number, pr.GetTitle()),
	}

	var refs []blobRef
	opts := &github.ListOptions{PerPage: 100}
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		page, resp, err := c.gh.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, upstream(fmt.Sprintf("list files of %s/%s#%d", owner, repo, number), resp, err)
		}
		for _, f := range page {
			if f.GetStatus() == "removed" || !m.Match(f.GetFilename()) {
				snap.Skipped++
				continue
			}
			refs = append(refs, blobRef{path: f.GetFilename(), sha: f.GetSHA()})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	refs = c.capFiles(snap, refs)
	c.logger.Debug("pull request files selected", "repo", owner+"/"+repo, "number", number, "files", len(refs), "skipped", snap.Skipped)

	if snap.Files, err = c.fetchBlobs(ctx, owner, repo, refs); err != nil {
		return nil, err
	}
	return snap, nil
}

// IssueFiles resolves an issue URL. Pull requests opened through the issues endpoint are
// analysed as pull requests; plain issues analyse the default branch of the repository.
func (c *Client) IssueFiles(ctx context.Context, owner, repo string, number int, m *files.Matcher) (*Snapshot, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	issue, resp, err := c.gh.Issues.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, upstream(fmt.Sprintf("get issue %s/%s#%d", owner, repo, number), resp, err)
	}
	if issue.IsPullRequest() {
		return c.PullRequestFiles(ctx, owner, repo, number, m)
	}

	snap, err := c.RepositoryFiles(ctx, owner, repo, "", "", m)
	if err != nil {
		return nil, err
	}
	snap.Title = fmt.Sprintf("Issue #%d: %s", number, issue.GetTitle())
	return snap, nil
}

// RepositoryFiles returns the files under dir at ref. An empty ref means the default branch
// and an empty dir means the whole repository.
func (c *Client) RepositoryFiles(ctx context.Context, owner, repo, ref, dir string, m *files.Matcher) (*Snapshot, error) {
	ref, err := c.resolveRef(ctx, owner, repo, ref)
	if err != nil {
		return nil, err
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	tree, resp, err := c.gh.Git.GetTree(ctx, owner, repo, ref, true)
	if err != nil {
		return nil, upstream(fmt.Sprintf("get tree %s/%s@%s", owner, repo, ref), resp, err)
	}

	snap := &Snapshot{
		Owner:     owner,
		Repo:      repo,
		Ref:       ref,
		Title:     fmt.Sprintf("%s/%s@%s", owner, repo, ref),
		Truncated: tree.GetTruncated(),
	}
	prefix := strings.Trim(dir, "/")
	if prefix != "" {
		snap.Title += ":" + prefix
		prefix += "/"
	}

	var refs []blobRef
	for _, e := range tree.Entries {
		if e.GetType() != "blob" || !strings.HasPrefix(e.GetPath(), prefix) {
			continue
		}
		if !m.Match(e.GetPath()) || (c.maxFileSize > 0 && int64(e.GetSize()) > c.maxFileSize) {
			snap.Skipped++
			continue
		}
		refs = append(refs, blobRef{path: e.GetPath(), sha: e.GetSHA()})
	}

	refs = c.capFiles(snap, refs)
	c.logger.Debug("tree files selected", "repo", owner+"/"+repo, "ref", ref, "files", len(refs), "skipped", snap.Skipped, "truncated", snap.Truncated)

	if snap.Files, err = c.fetchBlobs(ctx, owner, repo, refs); err != nil {
		return nil, err
	}
	return snap, nil
}

// File returns a single file at ref. An empty ref means the default branch.
func (c *Client) File(ctx context.Context, owner, repo, ref, filePath string) (*Snapshot, error) {
	ref, err := c.resolveRef(ctx, owner, repo, ref)
	if err != nil {
		return nil, err
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	content, _, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, filePath, &github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return nil, upstream(fmt.Sprintf("get %s from %s/%s@%s", filePath, owner, repo, ref), resp, err)
	}
	if content == nil {
		return nil, fmt.Errorf("%s in %s/%s@%s is a directory", filePath, owner, repo, ref)
	}

	text, err := content.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filePath, err)
	}
	return &Snapshot{
		Owner: owner,
		Repo:  repo,
		Ref:   ref,
		Title: fmt.Sprintf("%s/%s@%s:%s", owner, repo, ref, path.Clean(filePath)),
		Files: []files.Source{{
			Path:    content.GetPath(),
			Content: []byte(text),
			Size:    int64(len(text)),
			SHA:     content.GetSHA(),
		}},
	}, nil
}

func (c *Client) resolveRef(ctx context.Context, owner, repo, ref string) (string, error) {
	if ref != "" {
		return ref, nil
	}
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	r, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return "", upstream(fmt.Sprintf("get repository %s/%s", owner, repo), resp, err)
	}
	if r.GetDefaultBranch() == "" {
		return "", fmt.Errorf("repository %s/%s has no default branch", owner, repo)
	}
	return r.GetDefaultBranch(), nil
}

// capFiles keeps the first maxFiles refs in path order.
func (c *Client) capFiles(snap *Snapshot, refs []blobRef) []blobRef {
	sort.Slice(refs, func(i, j int) bool { return refs[i].path < refs[j].path })
	if c.maxFiles > 0 && len(refs) > c.maxFiles {
		snap.Skipped += len(refs) - c.maxFiles
		snap.Truncated = true
		refs = refs[:c.maxFiles]
	}
	return refs
}

// fetchBlobs downloads the refs concurrently and returns them in the same order.
func (c *Client) fetchBlobs(ctx context.Context, owner, repo string, refs []blobRef) ([]files.Source, error) {
	out := make([]files.Source, len(refs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, ref := range refs {
		g.Go(func() error {
			if err := c.wait(ctx); err != nil {
				return err
			}
			data, resp, err := c.gh.Git.GetBlobRaw(ctx, owner, repo, ref.sha)
			if err != nil {
				return upstream(fmt.Sprintf("get blob %s (%s)", ref.path, ref.sha), resp, err)
			}
			out[i] = files.Source{
				Path:    ref.path,
				Content: data,
				Size:    int64(len(data)),
				SHA:     ref.sha,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
