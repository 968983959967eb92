package vcsurl

import (
	"errors"
	"fmt"
	"strings"
)

// Permalink builder errors
var (
	ErrMissingNamespace = errors.New("namespace is required")
	ErrMissingProject   = errors.New("project is required")
	ErrMissingRef       = errors.New("ref (branch, tag, or commit SHA) is required")
	ErrMissingFile      = errors.New("file path is required")
)

const defaultHost = "github.com"

// PermalinkParams holds parameters for building GitHub file permalinks.
type PermalinkParams struct {
	Host      string // defaults to github.com
	Namespace string
	Project   string
	Ref       string // Branch, tag, or commit SHA
	File      string // Repository-relative file path (forward slashes)
	StartLine int    // 1-based, 0 means no line anchor
	EndLine   int    // 1-based, 0 or equal to StartLine means single line
}

func validatePermalinkParams(p PermalinkParams) error {
	switch {
	case p.Namespace == "":
		return ErrMissingNamespace
	case p.Project == "":
		return ErrMissingProject
	case p.Ref == "":
		return ErrMissingRef
	case p.File == "":
		return ErrMissingFile
	}
	return nil
}

// normalizeFilePath converts backslashes to forward slashes and trims leading slashes.
func normalizeFilePath(file string) string {
	return strings.TrimLeft(strings.ReplaceAll(file, "\\", "/"), "/")
}

// BuildPermalink generates https://{host}/{ns}/{proj}/blob/{ref}/{file}#L{start}-L{end}.
func BuildPermalink(p PermalinkParams) (string, error) {
	if err := validatePermalinkParams(p); err != nil {
		return "", err
	}
	host := p.Host
	if host == "" {
		host = defaultHost
	}

	link := fmt.Sprintf("https://%s/%s/%s/blob/%s/%s", host, p.Namespace, p.Project, p.Ref, normalizeFilePath(p.File))
	return link + buildLineAnchor(p.StartLine, p.EndLine), nil
}

// Permalink builds a link to file at ref in the repository u points at.
func (u *VCSURL) Permalink(ref, file string, startLine, endLine int) (string, error) {
	return BuildPermalink(PermalinkParams{
		Host:      u.Host,
		Namespace: u.Namespace,
		Project:   u.Repository,
		Ref:       ref,
		File:      file,
		StartLine: startLine,
		EndLine:   endLine,
	})
}

// buildLineAnchor returns #L{start} or #L{start}-L{end}, or "" when startLine <= 0.
func buildLineAnchor(startLine, endLine int) string {
	if startLine <= 0 {
		return ""
	}
	if endLine <= startLine {
		return fmt.Sprintf("#L%d", startLine)
	}
	return fmt.Sprintf("#L%d-L%d", startLine, endLine)
}
