package files

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher selects repository paths by doublestar include and exclude globs.
// Paths are slash separated and relative to the repository root.
type Matcher struct {
	include []string
	exclude []string
}

// NewMatcher validates the patterns and returns a Matcher.
// An empty include list matches every path that is not excluded.
func NewMatcher(include, exclude []string) (*Matcher, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return &Matcher{include: include, exclude: exclude}, nil
}

// Match reports whether name passes the filters.
func (m *Matcher) Match(name string) bool {
	if m == nil {
		return true
	}
	name = strings.TrimPrefix(path.Clean("/"+name), "/")

	for _, p := range m.exclude {
		if ok, _ := doublestar.Match(p, name); ok {
			return false
		}
	}
	if len(m.include) == 0 {
		return true
	}
	for _, p := range m.include {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
