package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/perfscan/internal/perf"
	"github.com/scan-io-git/perfscan/pkg/shared/files"
)

// ErrNotFound is returned when no result is stored under the requested id.
var ErrNotFound = errors.New("analysis result not found")

// Record is a stored analysis result together with what it was run on.
type Record struct {
	Target string               `json:"target"`
	Source string               `json:"source,omitempty"`
	Host   string               `json:"host,omitempty"`
	Owner  string               `json:"owner,omitempty"`
	Repo   string               `json:"repo,omitempty"`
	Title  string               `json:"title,omitempty"`
	Ref    string               `json:"ref,omitempty"`
	Result *perf.AnalysisResult `json:"result"`
}

// ID returns the id of the wrapped result.
func (r *Record) ID() string {
	if r == nil || r.Result == nil {
		return ""
	}
	return r.Result.ID
}

// Store keeps one <id>.json file per analysis in a folder.
type Store struct {
	dir    string
	logger hclog.Logger
}

// New creates a Store rooted at dir. The folder is created when missing.
func New(dir string, logger hclog.Logger) (*Store, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if dir == "" {
		return nil, fmt.Errorf("results folder is not set")
	}
	if err := files.CreateFolderIfNotExists(dir); err != nil {
		return nil, fmt.Errorf("failed to prepare results folder: %w", err)
	}
	return &Store{dir: dir, logger: logger.Named("store")}, nil
}

// Save writes rec to <id>.json, replacing any previous file.
func (s *Store) Save(rec *Record) error {
	id, err := validID(rec.ID())
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result %s: %w", id, err)
	}
	if err := files.WriteFile(s.path(id), data); err != nil {
		return err
	}
	s.logger.Debug("result stored", "id", id, "path", s.path(id))
	return nil
}

// Get reads the record stored under id.
func (s *Store) Get(id string) (*Record, error) {
	id, err := validID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read result %s: %w", id, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode result %s: %w", id, err)
	}
	if rec.Result == nil {
		return nil, fmt.Errorf("result %s is empty", id)
	}
	return &rec, nil
}

// List returns the stored records, newest first. Unreadable files are logged and skipped.
func (s *Store) List() ([]*Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list results folder: %w", err)
	}

	var out []*Record
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		rec, err := s.Get(strings.TrimSuffix(name, ".json"))
		if err != nil {
			s.logger.Warn("skipping stored result", "file", name, "error", err)
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Result.Timestamp.After(out[j].Result.Timestamp)
	})
	return out, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// validID normalises id and rejects anything that is not a UUID, so ids never escape the folder.
func validID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("invalid result id %q", id)
	}
	return u.String(), nil
}
