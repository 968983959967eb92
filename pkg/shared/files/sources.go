package files

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
)

// Source is a file read from disk, keyed by its slash separated path relative to the load root.
type Source struct {
	Path    string
	Content []byte
	Size    int64
	SHA     string
}

// BlobSHA returns the git blob object id of data, the same id GitHub reports for a tree entry.
func BlobSHA(data []byte) string {
	return plumbing.ComputeHash(plumbing.BlobObject, data).String()
}

// LoadSources reads root and returns every regular file accepted by m.
// A root that is a file yields that single file regardless of m.
// Files larger than maxSize are skipped when maxSize is positive.
// The result is sorted by path.
func LoadSources(root string, m *Matcher, maxSize int64) ([]Source, error) {
	root, err := ExpandPath(root)
	if err != nil {
		return nil, fmt.Errorf("failed to expand %q: %w", root, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %q: %w", root, err)
	}
	if !info.IsDir() {
		src, err := readSource(root, filepath.Base(root))
		if err != nil {
			return nil, err
		}
		return []Source{src}, nil
	}

	var sources []Source
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access %q: %w", p, err)
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !m.Match(rel) {
			return nil
		}
		if maxSize > 0 {
			fi, err := d.Info()
			if err != nil {
				return err
			}
			if fi.Size() > maxSize {
				return nil
			}
		}

		src, err := readSource(p, rel)
		if err != nil {
			return err
		}
		sources = append(sources, src)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Path < sources[j].Path })
	return sources, nil
}

func readSource(fullPath, rel string) (Source, error) {
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return Source{}, fmt.Errorf("failed to read %q: %w", fullPath, err)
	}
	return Source{
		Path:    rel,
		Content: data,
		Size:    int64(len(data)),
		SHA:     BlobSHA(data),
	}, nil
}
