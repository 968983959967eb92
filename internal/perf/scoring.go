package perf

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Per-domain penalties applied to the overall score. They are independent of
// the analyzers' own scores.
var (
	bottleneckScorePenalty = map[Severity]int{SeverityCritical: 25, SeverityHigh: 15, SeverityMedium: 8}
	complexityScorePenalty = map[Severity]int{SeverityCritical: 20, SeverityHigh: 10}
	memoryScorePenalty     = map[Severity]int{SeverityHigh: 15, SeverityMedium: 5}
	databaseScorePenalty   = map[Severity]int{SeverityCritical: 20, SeverityHigh: 10}
)

// OverallScore combines the findings of all four reports into a 0-100 score.
func OverallScore(b BottleneckReport, c ComplexityReport, m MemoryReport, d DatabaseReport) int {
	score := 100
	for _, f := range b.Bottlenecks {
		score -= bottleneckScorePenalty[f.Severity]
	}
	for _, f := range c.Issues {
		score -= complexityScorePenalty[f.Severity]
	}
	for _, f := range m.Issues {
		score -= memoryScorePenalty[f.Severity]
	}
	for _, f := range d.Issues {
		score -= databaseScorePenalty[f.Severity]
	}
	return min(max(score, 0), 100)
}

// Level maps a score onto its qualitative grade.
func Level(score int) PerformanceLevel {
	switch {
	case score >= 90:
		return LevelExcellent
	case score >= 75:
		return LevelGood
	case score >= 60:
		return LevelModerate
	default:
		return LevelPoor
	}
}

func buildMetrics(r *AnalysisResult) Metrics {
	m := Metrics{
		ExecutionTime: ExecutionTimeMetrics{
			EstimatedSlowdown: r.Bottlenecks.EstimatedImpact,
			CriticalPaths:     r.Bottlenecks.CriticalBottlenecks,
			MaxExecutionTime:  r.Thresholds.MaxExecutionTime,
		},
		Memory: MemoryMetrics{
			Score:                 r.Memory.OverallScore,
			EstimatedUsageMB:      r.Memory.EstimatedUsage,
			OptimizationPotential: r.Memory.OptimizationPotential,
			ExceedsThreshold:      r.Thresholds.MaxMemoryMB > 0 && r.Memory.EstimatedUsage > r.Thresholds.MaxMemoryMB,
		},
		Complexity: ComplexityMetrics{
			Score:        r.Complexity.OverallScore,
			Distribution: r.Complexity.Distribution,
		},
		Database: DatabaseMetrics{
			Score:          r.Database.OverallScore,
			IssueCount:     len(r.Database.Issues),
			MaxDBQueryTime: r.Thresholds.MaxDBQueryTime,
		},
		OverallEfficiency: EfficiencyMetrics{
			Score: r.OverallPerformanceScore,
			Level: r.PerformanceLevel,
		},
	}

	worst := -1
	for _, issue := range r.Complexity.Issues {
		m.Complexity.MaxFunctionComplexity = max(m.Complexity.MaxFunctionComplexity, issue.ComplexityScore)
		if rank := ComplexityRank(issue.CurrentComplexity); rank > worst {
			worst = rank
			m.Complexity.WorstComplexity = issue.CurrentComplexity
		}
	}
	if worst >= 0 && r.Thresholds.MaxComplexity != "" {
		m.Complexity.ExceedsThreshold = worst > ComplexityRank(r.Thresholds.MaxComplexity)
	}

	for _, issue := range r.Database.Issues {
		if issue.IssueType == "n_plus_one_query" {
			m.Database.NPlusOneCount++
		}
	}
	return m
}

func buildRecommendations(r *AnalysisResult) []Recommendation {
	recs := []Recommendation{}

	if n := len(r.Complexity.Issues); n > 0 {
		recs = append(recs, Recommendation{
			ID:          uuid.NewString(),
			Type:        "algorithm_optimization",
			Priority:    highestSeverity(complexitySeverities(r.Complexity.Issues)),
			Title:       "Optimize algorithm complexity",
			Description: fmt.Sprintf("%d function(s) or code shapes run with higher complexity than needed.", n),
			ImplementationSteps: []string{
				"Profile the flagged functions with realistic input sizes",
				"Replace nested scans with Map or Set lookups",
				"Swap hand-written sorts and searches for built-in O(n log n) and O(log n) algorithms",
				"Split functions with high cyclomatic complexity into smaller units",
				"Add benchmarks to guard the improvement",
			},
			CodeExample: CodeExample{
				Before: "for (const a of left) {\n  for (const b of right) {\n    if (a.id === b.id) matches.push([a, b]);\n  }\n}",
				After:  "const byId = new Map(right.map(b => [b.id, b]));\nfor (const a of left) {\n  const b = byId.get(a.id);\n  if (b) matches.push([a, b]);\n}",
			},
			EstimatedImprovement: "50-90% faster on large inputs",
			Effort:               "medium",
		})
	}

	if n := len(r.Memory.Issues); n > 0 {
		recs = append(recs, Recommendation{
			ID:          uuid.NewString(),
			Type:        "memory_optimization",
			Priority:    highestSeverity(memorySeverities(r.Memory.Issues)),
			Title:       "Reduce memory usage",
			Description: fmt.Sprintf("%d memory risk(s) with an estimated footprint of %.0f MB.", n, r.Memory.EstimatedUsage),
			ImplementationSteps: []string{
				"Take a heap snapshot under load to confirm the retained objects",
				"Bound caches and global collections with a size limit or TTL",
				"Remove listeners and clear timers when their owner is disposed",
				"Avoid full copies of large structures",
				"Re-measure heap usage after the change",
			},
			CodeExample: CodeExample{
				Before: "const cache = {};\nfunction get(key) {\n  if (!cache[key]) cache[key] = load(key);\n  return cache[key];\n}",
				After:  "const cache = new LRUCache({ max: 500 });\nfunction get(key) {\n  if (!cache.has(key)) cache.set(key, load(key));\n  return cache.get(key);\n}",
			},
			EstimatedImprovement: fmt.Sprintf("up to %.0f%% lower memory usage", r.Memory.OptimizationPotential),
			Effort:               "low",
		})
	}

	return recs
}

// degradedResult is returned instead of an error when the analysis fails.
func degradedResult(actx AnalysisContext, err error) *AnalysisResult {
	return &AnalysisResult{
		ID:                      uuid.NewString(),
		Timestamp:               time.Now().UTC(),
		FilesAnalyzed:           len(actx.Files),
		OverallPerformanceScore: 0,
		PerformanceLevel:        LevelPoor,
		Bottlenecks:             BottleneckReport{Bottlenecks: []Bottleneck{}},
		Complexity:              ComplexityReport{Issues: []ComplexityIssue{}, Recommendations: []string{}},
		Memory:                  MemoryReport{Issues: []MemoryIssue{}, Recommendations: []string{}},
		Database: DatabaseReport{
			Issues:                  []DatabaseIssue{},
			QueryAnalysis:           []QueryAnalysis{},
			OptimizationSuggestions: []OptimizationSuggestion{},
		},
		Metrics: Metrics{OverallEfficiency: EfficiencyMetrics{Level: LevelPoor}},
		Recommendations: []Recommendation{{
			ID:          uuid.NewString(),
			Type:        "analysis_failure",
			Priority:    SeverityHigh,
			Title:       "Performance analysis failed",
			Description: fmt.Sprintf("The analysis could not be completed: %v", err),
			ImplementationSteps: []string{
				"Check the analysis configuration and enabled analyzers",
				"Verify the input files are readable text",
				"Retry with a smaller set of files",
			},
			Effort: "low",
		}},
		Thresholds: actx.Thresholds,
		Targets:    actx.Targets,
		Error:      err.Error(),
	}
}

var severityRank = map[Severity]int{SeverityLow: 0, SeverityMedium: 1, SeverityHigh: 2, SeverityCritical: 3}

// SeverityRank orders severities from low to critical.
func SeverityRank(s Severity) int {
	return severityRank[s]
}

// ParseSeverity converts a case-insensitive name into a Severity, defaulting to medium.
func ParseSeverity(s string) Severity {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return sev
	default:
		return SeverityMedium
	}
}

func highestSeverity(severities []Severity) Severity {
	best := SeverityLow
	for _, s := range severities {
		if severityRank[s] > severityRank[best] {
			best = s
		}
	}
	return best
}

func complexitySeverities(issues []ComplexityIssue) []Severity {
	out := make([]Severity, len(issues))
	for i, issue := range issues {
		out[i] = issue.Severity
	}
	return out
}

func memorySeverities(issues []MemoryIssue) []Severity {
	out := make([]Severity, len(issues))
	for i, issue := range issues {
		out[i] = issue.Severity
	}
	return out
}
