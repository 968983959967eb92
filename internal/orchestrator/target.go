package orchestrator

import (
	"time"

	"github.com/scan-io-git/perfscan/internal/perf"
	"github.com/scan-io-git/perfscan/pkg/shared/vcsurl"
)

// SourceLocal marks targets read from the local filesystem.
const SourceLocal = "local"

// Target describes what an analysis ran on.
type Target struct {
	Raw    string `json:"raw"`
	Source string `json:"source"` // "local" or the vcsurl kind: pull, issue, repository, blob, tree
	Host   string `json:"host,omitempty"`
	Owner  string `json:"owner,omitempty"`
	Repo   string `json:"repo,omitempty"`
	Ref    string `json:"ref,omitempty"`
	Title  string `json:"title"`
}

// Analysis is the outcome of one orchestrated run.
type Analysis struct {
	Target    Target               `json:"target"`
	Result    *perf.AnalysisResult `json:"result"`
	Skipped   int                  `json:"skipped_files"`
	Truncated bool                 `json:"truncated"`
	Cached    bool                 `json:"cached"`
}

// Permalink links loc to the exact lines on GitHub. Local targets have no permalink.
func (a *Analysis) Permalink(loc perf.SourceLocation) string {
	t := a.Target
	if t.Source == SourceLocal || t.Owner == "" || t.Ref == "" {
		return ""
	}
	link, err := vcsurl.BuildPermalink(vcsurl.PermalinkParams{
		Host:      t.Host,
		Namespace: t.Owner,
		Project:   t.Repo,
		Ref:       t.Ref,
		File:      loc.File,
		StartLine: loc.StartLine,
		EndLine:   loc.EndLine,
	})
	if err != nil {
		return ""
	}
	return link
}

// FindingCounts returns the number of findings per analyzer name.
func (a *Analysis) FindingCounts() map[string]int {
	r := a.Result
	if r == nil {
		return nil
	}
	return map[string]int{
		AnalyzerBottlenecks: len(r.Bottlenecks.Bottlenecks),
		AnalyzerComplexity:  len(r.Complexity.Issues),
		AnalyzerMemory:      len(r.Memory.Issues),
		AnalyzerDatabase:    len(r.Database.Issues),
	}
}

// Summary is the short form of an analysis used by listings.
type Summary struct {
	ID        string                `json:"id"`
	Timestamp time.Time             `json:"timestamp"`
	Target    Target                `json:"target"`
	Score     int                   `json:"score"`
	Level     perf.PerformanceLevel `json:"level"`
	Findings  int                   `json:"findings"`
}

// Summary returns the listing entry of a.
func (a *Analysis) Summary() Summary {
	s := Summary{Target: a.Target}
	if r := a.Result; r != nil {
		s.ID = r.ID
		s.Timestamp = r.Timestamp
		s.Score = r.OverallPerformanceScore
		s.Level = r.PerformanceLevel
		s.Findings = r.TotalFindings()
	}
	return s
}
