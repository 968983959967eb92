package vcsurl

import (
	"fmt"
	"strconv"
	"strings"
)

// parseGithubPath fills the repository coordinates and the target kind from the URL path.
//
//	/<ns>/<repo>                       repository
//	/<ns>/<repo>/pull/<n>[/files]      pull request
//	/<ns>/<repo>/issues/<n>            issue
//	/<ns>/<repo>/blob/<ref>/<path>     single file
//	/<ns>/<repo>/tree/<ref>[/<path>]   directory at ref
//
// Refs containing slashes are not supported in blob and tree URLs; the first
// segment after blob or tree is taken as the ref.
func parseGithubPath(u *VCSURL) error {
	dirs := GetPathDirs(u.ParsedURL.Path)
	if len(dirs) < 2 {
		return ErrMissingRepository
	}

	u.Namespace = dirs[0]
	u.Repository = dirs[1]
	u.Kind = KindRepository
	buildGenericURLs(u)

	if len(dirs) < 4 {
		return nil
	}

	switch dirs[2] {
	case "pull", "pulls":
		n, err := parseNumber(dirs[3])
		if err != nil {
			return err
		}
		u.Kind = KindPullRequest
		u.Number = n
	case "issues":
		n, err := parseNumber(dirs[3])
		if err != nil {
			return err
		}
		u.Kind = KindIssue
		u.Number = n
	case "blob":
		if len(dirs) < 5 {
			return fmt.Errorf("blob URL has no file path")
		}
		u.Kind = KindBlob
		u.Ref = dirs[3]
		u.FilePath = strings.Join(dirs[4:], "/")
	case "tree":
		u.Kind = KindTree
		u.Ref = dirs[3]
		u.FilePath = strings.Join(dirs[4:], "/")
	}
	return nil
}

func parseNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return n, nil
}

// buildGenericURLs sets the HTTP and SSH URLs for repositories.
func buildGenericURLs(u *VCSURL) {
	u.HTTPRepoLink = fmt.Sprintf("https://%s/%s/%s", u.Host, u.Namespace, u.Repository)
	u.SSHRepoLink = fmt.Sprintf("ssh://git@%s/%s/%s.git", u.Host, u.Namespace, u.Repository)
}
