package perf

import (
	"context"

	"github.com/google/uuid"
)

var databasePenalty = map[Severity]int{
	SeverityCritical: 25,
	SeverityHigh:     15,
	SeverityMedium:   8,
}

// AnalyzeDatabasePerformance scans every file for query anti-patterns and
// classifies each matched query.
func AnalyzeDatabasePerformance(ctx context.Context, files []SourceFile) (DatabaseReport, error) {
	report := DatabaseReport{
		Issues:                  []DatabaseIssue{},
		QueryAnalysis:           []QueryAnalysis{},
		OptimizationSuggestions: []OptimizationSuggestion{},
	}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return DatabaseReport{}, err
		}
		for i := range databaseRules {
			rule := &databaseRules[i]
			for m := range fileMatches(file, rule) {
				loc := locationOf(file, m)
				report.Issues = append(report.Issues, DatabaseIssue{
					ID:              uuid.NewString(),
					IssueType:       rule.ID,
					Severity:        rule.Severity,
					Location:        loc,
					Title:           rule.Title,
					Description:     rule.Description,
					Recommendation:  rule.Recommendation,
					QueryPattern:    m.Text,
					EstimatedImpact: rule.ImpactText,
				})
				report.QueryAnalysis = append(report.QueryAnalysis, AnalyzeQuery(m.Text, loc))
			}
		}
	}

	score := 100
	nPlusOne := false
	for _, issue := range report.Issues {
		score -= databasePenalty[issue.Severity]
		if issue.IssueType == "n_plus_one_query" {
			nPlusOne = true
		}
	}
	if nPlusOne {
		report.OptimizationSuggestions = append(report.OptimizationSuggestions, OptimizationSuggestion{
			Type:                 "eager_loading",
			Description:          "Replace per-item queries with a single batched fetch or eager loading of the relation.",
			Before:               eagerLoadBefore,
			After:                eagerLoadAfter,
			EstimatedImprovement: "90%+ fewer queries",
		})
	}
	report.OverallScore = max(score, 0)
	return report, nil
}

// AnalyzeQuery classifies a query by the keywords it contains.
func AnalyzeQuery(query string, loc SourceLocation) QueryAnalysis {
	qa := QueryAnalysis{
		Query:                query,
		Location:             loc,
		Complexity:           "simple",
		CPUIntensive:         orderOrGroup.MatchString(query),
		MemoryIntensive:      groupBy.MatchString(query) || wildcardSelect.MatchString(query),
		IOIntensive:          wildcardSelect.MatchString(query),
		OptimizationPriority: "low",
	}
	if joinKeyword.MatchString(query) {
		qa.Complexity = "complex"
	}
	if wildcardSelect.MatchString(query) {
		qa.OptimizationPriority = "high"
	}
	return qa
}
