package perf

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// nestedLoopWindow is how many lines after a nested loop match are checked for the inner loop header.
const nestedLoopWindow = 5

var loopKeyword = regexp.MustCompile(`\b(?:for|while)\s*\(|\.forEach\s*\(|\bdo\s*\{`)

// DetectBottlenecks scans every file against the bottleneck rules in priority order.
// A line reported by a higher priority rule is never reported again by a lower one.
func DetectBottlenecks(ctx context.Context, files []SourceFile) (BottleneckReport, error) {
	report := BottleneckReport{Bottlenecks: []Bottleneck{}}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return BottleneckReport{}, err
		}
		report.Bottlenecks = append(report.Bottlenecks, detectFileBottlenecks(file)...)
	}

	var slowdown float64
	for _, b := range report.Bottlenecks {
		if b.Severity == SeverityCritical {
			report.CriticalBottlenecks++
		}
		report.Distribution.add(b.Category)
		slowdown += b.EstimatedSlowdown
	}
	report.TotalBottlenecks = len(report.Bottlenecks)
	if report.TotalBottlenecks > 0 {
		report.EstimatedImpact = slowdown / float64(report.TotalBottlenecks)
	}
	return report, nil
}

func detectFileBottlenecks(file SourceFile) []Bottleneck {
	var (
		found   []Bottleneck
		lines   []string
		claimed = make(lineSet)
	)

	for i := range bottleneckRules {
		rule := &bottleneckRules[i]
		for m := range fileMatches(file, rule) {
			if claimed.overlaps(m.Line, m.EndLine) {
				continue
			}
			found = append(found, newBottleneck(file, rule, m))
			claimed.claim(m.Line, m.EndLine)

			if rule.ID == "nested_loops" {
				if lines == nil {
					lines = strings.Split(file.Content, "\n")
				}
				claimNearbyLoops(claimed, lines, m.Line)
			}
		}
	}
	return found
}

// claimNearbyLoops claims the loop headers following a nested loop match so the
// inner loop is not reported again by a lower priority rule.
func claimNearbyLoops(claimed lineSet, lines []string, start int) {
	for l := start + 1; l <= start+nestedLoopWindow && l <= len(lines); l++ {
		if loopKeyword.MatchString(lines[l-1]) {
			claimed.claim(l, l)
		}
	}
}

func newBottleneck(file SourceFile, rule *DetectionRule, m Match) Bottleneck {
	return Bottleneck{
		ID:                uuid.NewString(),
		Type:              rule.ID,
		Category:          rule.Category,
		Severity:          rule.Severity,
		Location:          locationOf(file, m),
		Title:             rule.Title,
		Description:       rule.Description,
		Recommendation:    rule.Recommendation,
		ExampleFix:        rule.ExampleFix,
		EstimatedSlowdown: rule.EstimatedImpact,
	}
}

func (d *BottleneckDistribution) add(c Category) {
	switch c {
	case CategoryLoop:
		d.Loop++
	case CategoryIO:
		d.IO++
	case CategoryAlgorithm:
		d.Algorithm++
	case CategoryMemory:
		d.Memory++
	case CategoryDatabase:
		d.Database++
	case CategoryNetwork:
		d.Network++
	}
}

type lineSet map[int]struct{}

func (s lineSet) overlaps(from, to int) bool {
	for l := from; l <= to; l++ {
		if _, ok := s[l]; ok {
			return true
		}
	}
	return false
}

func (s lineSet) claim(from, to int) {
	for l := from; l <= to; l++ {
		s[l] = struct{}{}
	}
}
