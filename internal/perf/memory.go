package perf

import (
	"context"
	"math"

	"github.com/google/uuid"
)

var memoryPenalty = map[Severity]int{
	SeverityCritical: 15,
	SeverityHigh:     15,
	SeverityMedium:   8,
	SeverityLow:      3,
}

// memoryUsageTiers are applied highest first; only the first crossed tier counts.
var memoryUsageTiers = []struct {
	above   float64
	penalty int
}{
	{above: 500, penalty: 30},
	{above: 200, penalty: 20},
	{above: 100, penalty: 10},
}

// memoryBaseline is the usage, in MB, that corresponds to 100% optimisation potential.
const memoryBaseline = 100.0

// AnalyzeMemoryUsage scans every file for memory risk patterns and estimates their footprint.
func AnalyzeMemoryUsage(ctx context.Context, files []SourceFile) (MemoryReport, error) {
	report := MemoryReport{
		Issues:          []MemoryIssue{},
		Recommendations: []string{},
	}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return MemoryReport{}, err
		}
		for i := range memoryRules {
			rule := &memoryRules[i]
			for m := range fileMatches(file, rule) {
				report.Issues = append(report.Issues, MemoryIssue{
					ID:             uuid.NewString(),
					IssueType:      rule.ID,
					Severity:       rule.Severity,
					Location:       locationOf(file, m),
					Title:          rule.Title,
					Description:    rule.Description,
					Recommendation: rule.Recommendation,
					ExampleFix:     rule.ExampleFix,
					MemoryImpact:   rule.EstimatedImpact,
				})
			}
		}
	}

	score := 100
	seen := make(map[string]bool)
	for _, issue := range report.Issues {
		report.EstimatedUsage += issue.MemoryImpact
		score -= memoryPenalty[issue.Severity]
		if !seen[issue.Recommendation] {
			seen[issue.Recommendation] = true
			report.Recommendations = append(report.Recommendations, issue.Recommendation)
		}
	}
	for _, tier := range memoryUsageTiers {
		if report.EstimatedUsage > tier.above {
			score -= tier.penalty
			break
		}
	}
	report.OverallScore = max(score, 0)
	report.OptimizationPotential = math.Min(memoryBaseline, report.EstimatedUsage) / memoryBaseline * 100
	return report, nil
}
