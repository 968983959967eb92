// Package ci reads the pipeline environment so that analyse can run without a target argument.
package ci

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Kind is the CI provider the process runs under.
type Kind int

const (
	KindUnknown Kind = iota
	KindGitHub
	KindGitLab
	KindBitbucket
)

func (k Kind) String() string {
	switch k {
	case KindGitHub:
		return "github"
	case KindGitLab:
		return "gitlab"
	case KindBitbucket:
		return "bitbucket"
	default:
		return "unknown"
	}
}

// LookupFunc fetches environment variables. Nil means os.Getenv.
type LookupFunc func(string) string

// Environment is the GitHub Actions metadata needed to build a target URL.
type Environment struct {
	Kind       Kind
	CI         bool
	ServerURL  string // scheme and host, e.g. https://github.com
	Repository string // owner/repo
	SHA        string
	Ref        string // fully qualified, e.g. refs/pull/42/merge
	EventName  string
}

// Detect infers the CI provider from well-known variables.
func Detect(lookup LookupFunc) Kind {
	lookup = orGetenv(lookup)
	switch {
	case lookup("GITHUB_ACTIONS") == "true" || lookup("GITHUB_REPOSITORY") != "":
		return KindGitHub
	case strings.EqualFold(lookup("GITLAB_CI"), "true") || lookup("CI_PROJECT_PATH") != "":
		return KindGitLab
	case lookup("BITBUCKET_REPO_SLUG") != "":
		return KindBitbucket
	}
	return KindUnknown
}

// Load reads the GitHub Actions variables.
// See https://docs.github.com/en/actions/reference/workflows-and-actions/variables.
func Load(lookup LookupFunc) (Environment, error) {
	lookup = orGetenv(lookup)
	kind := Detect(lookup)
	if kind != KindGitHub {
		return Environment{Kind: kind}, fmt.Errorf("ci: %s pipelines are not supported, only GitHub Actions", kind)
	}

	ci, _ := strconv.ParseBool(lookup("CI"))
	env := Environment{
		Kind:       kind,
		CI:         ci,
		ServerURL:  strings.TrimRight(lookup("GITHUB_SERVER_URL"), "/"),
		Repository: lookup("GITHUB_REPOSITORY"),
		SHA:        lookup("GITHUB_SHA"),
		Ref:        lookup("GITHUB_REF"),
		EventName:  lookup("GITHUB_EVENT_NAME"),
	}
	if env.ServerURL == "" {
		env.ServerURL = "https://github.com"
	}
	if strings.Count(env.Repository, "/") != 1 {
		return env, fmt.Errorf("ci: GITHUB_REPOSITORY must be owner/repo, got %q", env.Repository)
	}
	return env, nil
}

// PullRequest returns the pull request number encoded in refs/pull/<n>/merge, or 0.
func (e Environment) PullRequest() int {
	rest, ok := strings.CutPrefix(e.Ref, "refs/pull/")
	if !ok {
		return 0
	}
	num, _, _ := strings.Cut(rest, "/")
	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// TargetURL returns the pull request URL for pull request events and the tree URL at the
// triggering commit otherwise.
func (e Environment) TargetURL() (string, error) {
	base := e.ServerURL + "/" + e.Repository
	if n := e.PullRequest(); n > 0 {
		return fmt.Sprintf("%s/pull/%d", base, n), nil
	}
	if e.SHA == "" {
		return "", fmt.Errorf("ci: neither a pull request ref nor GITHUB_SHA is set")
	}
	return base + "/tree/" + e.SHA, nil
}

// DefaultTarget resolves the URL to analyse from the process environment.
func DefaultTarget() (string, error) {
	env, err := Load(nil)
	if err != nil {
		return "", err
	}
	return env.TargetURL()
}

func orGetenv(lookup LookupFunc) LookupFunc {
	if lookup == nil {
		return os.Getenv
	}
	return lookup
}
