package vcsurl

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Parse errors
var (
	ErrUnsupportedHost   = errors.New("only GitHub URLs are supported")
	ErrMissingRepository = errors.New("URL does not name a repository")
	ErrInvalidNumber     = errors.New("pull request or issue number must be a positive integer")
)

// Kind is the GitHub object a URL points at.
type Kind int

const (
	KindUnknown Kind = iota
	KindRepository
	KindPullRequest
	KindIssue
	KindBlob
	KindTree
)

func (k Kind) String() string {
	switch k {
	case KindRepository:
		return "repository"
	case KindPullRequest:
		return "pull"
	case KindIssue:
		return "issue"
	case KindBlob:
		return "blob"
	case KindTree:
		return "tree"
	default:
		return "unknown"
	}
}

var (
	validSchemes = []string{"http", "https", "ssh"}
	scpLike      = regexp.MustCompile(`^git@([^:]+):(.*)$`)
)

func isValidScheme(scheme string) bool {
	for _, s := range validSchemes {
		if scheme == s {
			return true
		}
	}
	return false
}

// VCSURL is a parsed GitHub URL.
type VCSURL struct {
	Kind         Kind
	Host         string
	Namespace    string
	Repository   string
	Number       int    // pull request or issue number
	Ref          string // branch, tag or commit of blob and tree URLs
	FilePath     string // repository relative path of blob and tree URLs
	HTTPRepoLink string
	SSHRepoLink  string
	ParsedURL    *url.URL
	Raw          string
}

// FullName returns "namespace/repository".
func (u *VCSURL) FullName() string {
	return u.Namespace + "/" + u.Repository
}

// GetPathDirs splits the URL path into non-empty segments.
func GetPathDirs(path string) []string {
	var dirs []string
	for _, dir := range strings.Split(path, "/") {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// Parse parses a GitHub URL. Hosts containing "github" are accepted,
// as well as any host listed in extraHosts (GitHub Enterprise).
func Parse(raw string, extraHosts ...string) (*VCSURL, error) {
	u := VCSURL{Raw: raw}

	link := strings.TrimSpace(raw)
	// Slack wraps links as <url> or <url|label>.
	link = strings.TrimSuffix(strings.TrimPrefix(link, "<"), ">")
	if i := strings.IndexByte(link, '|'); i >= 0 {
		link = link[:i]
	}
	if parts := scpLike.FindStringSubmatch(link); len(parts) == 3 {
		link = fmt.Sprintf("ssh://%s/%s", parts[1], parts[2])
	}
	link = strings.TrimSuffix(link, ".git")

	parsed, err := url.ParseRequestURI(link)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if !isValidScheme(parsed.Scheme) {
		return nil, fmt.Errorf("invalid scheme: %q", raw)
	}
	u.ParsedURL = parsed
	u.Host = parsed.Hostname()

	if !isGithubHost(u.Host, extraHosts) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedHost, u.Host)
	}
	if err := parseGithubPath(&u); err != nil {
		return nil, fmt.Errorf("invalid GitHub URL %q: %w", raw, err)
	}
	return &u, nil
}

func isGithubHost(host string, extra []string) bool {
	if strings.Contains(host, "github") {
		return true
	}
	for _, h := range extra {
		if strings.EqualFold(host, h) {
			return true
		}
	}
	return false
}
