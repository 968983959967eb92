package report

import (
	"sort"

	"github.com/scan-io-git/perfscan/internal/perf"
)

// Finding is the domain independent view of one reported issue.
type Finding struct {
	Domain         string              `json:"domain"`
	Type           string              `json:"type"`
	Severity       perf.Severity       `json:"severity"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Recommendation string              `json:"recommendation"`
	Location       perf.SourceLocation `json:"location"`
}

// RuleID names the detector that produced f, e.g. "database/n_plus_one".
func (f Finding) RuleID() string {
	return f.Domain + "/" + f.Type
}

// Collect flattens the four reports of r, most severe first, then by file and line.
func Collect(r *perf.AnalysisResult) []Finding {
	if r == nil {
		return nil
	}
	var out []Finding
	for _, b := range r.Bottlenecks.Bottlenecks {
		out = append(out, Finding{"bottlenecks", b.Type, b.Severity, b.Title, b.Description, b.Recommendation, b.Location})
	}
	for _, c := range r.Complexity.Issues {
		out = append(out, Finding{"complexity", c.IssueType, c.Severity, c.Title, c.Description, c.Recommendation, c.Location})
	}
	for _, m := range r.Memory.Issues {
		out = append(out, Finding{"memory", m.IssueType, m.Severity, m.Title, m.Description, m.Recommendation, m.Location})
	}
	for _, d := range r.Database.Issues {
		out = append(out, Finding{"database", d.IssueType, d.Severity, d.Title, d.Description, d.Recommendation, d.Location})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ra, rb := perf.SeverityRank(a.Severity), perf.SeverityRank(b.Severity); ra != rb {
			return ra > rb
		}
		if a.Location.File != b.Location.File {
			return a.Location.File < b.Location.File
		}
		return a.Location.StartLine < b.Location.StartLine
	})
	return out
}
