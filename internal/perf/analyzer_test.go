package perf

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const mixedSrc = `async function loadPosts(users) {
  for (const user of users) {
    user.posts = await Post.find({ userId: user.id });
  }
}

function startPolling(fn) {
  setInterval(fn, 1000);
}

function fib(n) {
  if (n <= 1) return n;
  return fib(n - 1) + fib(n - 2);
}

const cache = {};
function remember(key, value) {
  cache[key] = value;
}
`

func analyze(t *testing.T, actx AnalysisContext) *AnalysisResult {
	t.Helper()
	result := NewAnalyzer(nil).AnalyzePerformance(context.Background(), actx)
	require.NotNil(t, result)
	return result
}

// withoutIdentity clears the fields that legitimately differ between two runs.
func withoutIdentity(r *AnalysisResult) *AnalysisResult {
	c := *r
	c.ID = ""
	c.Timestamp = time.Time{}
	c.Bottlenecks.Bottlenecks = append([]Bottleneck{}, r.Bottlenecks.Bottlenecks...)
	for i := range c.Bottlenecks.Bottlenecks {
		c.Bottlenecks.Bottlenecks[i].ID = ""
	}
	c.Complexity.Issues = append([]ComplexityIssue{}, r.Complexity.Issues...)
	for i := range c.Complexity.Issues {
		c.Complexity.Issues[i].ID = ""
	}
	c.Memory.Issues = append([]MemoryIssue{}, r.Memory.Issues...)
	for i := range c.Memory.Issues {
		c.Memory.Issues[i].ID = ""
	}
	c.Database.Issues = append([]DatabaseIssue{}, r.Database.Issues...)
	for i := range c.Database.Issues {
		c.Database.Issues[i].ID = ""
	}
	c.Recommendations = append([]Recommendation{}, r.Recommendations...)
	for i := range c.Recommendations {
		c.Recommendations[i].ID = ""
	}
	return &c
}

func TestAnalyzePerformanceNoFiles(t *testing.T) {
	result := analyze(t, AnalysisContext{Options: DefaultOptions()})

	assert.NotEmpty(t, result.ID)
	assert.Empty(t, result.Error)
	assert.Equal(t, 100, result.OverallPerformanceScore)
	assert.Equal(t, LevelExcellent, result.PerformanceLevel)
	assert.NotNil(t, result.Bottlenecks.Bottlenecks)
	assert.NotNil(t, result.Complexity.Issues)
	assert.NotNil(t, result.Memory.Issues)
	assert.NotNil(t, result.Database.Issues)
	assert.NotNil(t, result.Recommendations)
	assert.Empty(t, result.Recommendations)
	assert.Equal(t, 0, result.TotalFindings())
	assert.Equal(t, DefaultThresholds(), result.Thresholds)
}

func TestAnalyzePerformanceUnclearedInterval(t *testing.T) {
	result := analyze(t, AnalysisContext{
		Files:   []SourceFile{jsFile("poll.js", "setInterval(fn, 1000);\n")},
		Options: DefaultOptions(),
	})

	require.Len(t, result.Bottlenecks.Bottlenecks, 1)
	assert.Equal(t, "memory_leak", result.Bottlenecks.Bottlenecks[0].Type)
	assert.Equal(t, 75, result.OverallPerformanceScore)
	assert.Equal(t, LevelGood, result.PerformanceLevel)
	assert.Equal(t, 1, result.Metrics.ExecutionTime.CriticalPaths)
	assert.Equal(t, 100.0, result.Metrics.ExecutionTime.EstimatedSlowdown)
}

func TestAnalyzePerformanceDisabledAnalyzers(t *testing.T) {
	result := analyze(t, AnalysisContext{
		Files:   []SourceFile{jsFile("poll.js", "setInterval(fn, 1000);\n")},
		Options: AnalysisOptions{EnableComplexityAnalysis: true},
	})

	assert.Empty(t, result.Bottlenecks.Bottlenecks)
	assert.NotNil(t, result.Bottlenecks.Bottlenecks)
	assert.Equal(t, 100, result.Memory.OverallScore)
	assert.Equal(t, 100, result.Database.OverallScore)
	assert.Equal(t, 100, result.OverallPerformanceScore)
	assert.Equal(t, LevelExcellent, result.PerformanceLevel)
}

func TestAnalyzePerformanceDatabaseOnlyHasNoAggregateRecommendation(t *testing.T) {
	result := analyze(t, AnalysisContext{
		Files:   []SourceFile{jsFile("users.js", "db.query('SELECT * FROM users WHERE id = ?', [id]);\n")},
		Options: AnalysisOptions{EnableDatabaseAnalysis: true},
	})

	require.NotEmpty(t, result.Database.Issues)
	assert.Empty(t, result.Recommendations)
}

func TestAnalyzePerformanceMixedFile(t *testing.T) {
	result := analyze(t, AnalysisContext{
		Files:   []SourceFile{jsFile("app.js", mixedSrc)},
		Options: DefaultOptions(),
	})

	assert.Empty(t, result.Error)
	assert.Equal(t, 1, result.FilesAnalyzed)

	bottlenecks := map[string]bool{}
	for _, b := range result.Bottlenecks.Bottlenecks {
		bottlenecks[b.Type] = true
	}
	assert.True(t, bottlenecks["query_in_loop"])
	assert.True(t, bottlenecks["memory_leak"])

	require.Len(t, result.Database.Issues, 1)
	assert.Equal(t, "n_plus_one_query", result.Database.Issues[0].IssueType)
	assert.Equal(t, 1, result.Metrics.Database.NPlusOneCount)

	require.Len(t, result.Complexity.Issues, 1)
	assert.Equal(t, "naive_fibonacci", result.Complexity.Issues[0].IssueType)
	assert.Equal(t, ComplexityExponential, result.Metrics.Complexity.WorstComplexity)
	assert.True(t, result.Metrics.Complexity.ExceedsThreshold)

	require.Len(t, result.Memory.Issues, 1)
	assert.Equal(t, "excessive_caching", result.Memory.Issues[0].IssueType)
	assert.False(t, result.Metrics.Memory.ExceedsThreshold)

	types := make([]string, 0, len(result.Recommendations))
	for _, r := range result.Recommendations {
		types = append(types, r.Type)
	}
	assert.Equal(t, []string{"algorithm_optimization", "memory_optimization"}, types)
	assert.Equal(t, SeverityCritical, result.Recommendations[0].Priority)
	assert.Equal(t, SeverityHigh, result.Recommendations[1].Priority)

	assert.Equal(t, result.OverallPerformanceScore, result.Metrics.OverallEfficiency.Score)
	assert.Equal(t, Level(result.OverallPerformanceScore), result.PerformanceLevel)
	assert.GreaterOrEqual(t, result.OverallPerformanceScore, 0)
}

func TestAnalyzePerformanceIsIdempotent(t *testing.T) {
	actx := AnalysisContext{
		Files: []SourceFile{
			jsFile("app.js", mixedSrc),
			jsFile("sort.js", bubbleSortSrc),
		},
		Options: DefaultOptions(),
	}
	first := analyze(t, actx)
	second := analyze(t, actx)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, withoutIdentity(first), withoutIdentity(second))
}

func TestAnalyzePerformanceScoreIsMonotonic(t *testing.T) {
	base := []SourceFile{jsFile("sort.js", bubbleSortSrc)}
	before := analyze(t, AnalysisContext{Files: base, Options: DefaultOptions()})

	extra := []SourceFile{
		jsFile("poll.js", "setInterval(fn, 1000);\n"),
		jsFile("low.js", "for (let i = 0; i < items.length; i++) {\n  total += items[i];\n}\n"),
		jsFile("count.js", "db.query('SELECT COUNT(*) FROM users WHERE id = ?');\n"),
	}
	files := base
	prev := before.OverallPerformanceScore
	for _, f := range extra {
		files = append(files, f)
		after := analyze(t, AnalysisContext{Files: files, Options: DefaultOptions()})
		assert.LessOrEqual(t, after.OverallPerformanceScore, prev, "adding %s raised the score", f.Path)
		prev = after.OverallPerformanceScore
	}
}

func TestAnalyzePerformanceCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := NewAnalyzer(nil).AnalyzePerformance(ctx, AnalysisContext{
		Files:   []SourceFile{jsFile("app.js", mixedSrc)},
		Options: DefaultOptions(),
	})

	require.NotNil(t, result)
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, 0, result.OverallPerformanceScore)
	assert.Equal(t, LevelPoor, result.PerformanceLevel)
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "analysis_failure", result.Recommendations[0].Type)
	assert.Empty(t, result.Bottlenecks.Bottlenecks)
	assert.NotNil(t, result.Database.QueryAnalysis)
}

func TestAnalyzePerformanceKeepsThresholdsAndTargets(t *testing.T) {
	thresholds := PerformanceThresholds{MaxMemoryMB: 64, MaxComplexity: ComplexityCubic}
	targets := PerformanceTargets{LatencyMS: 200, ThroughputRPS: 50}

	result := analyze(t, AnalysisContext{
		Files:      []SourceFile{jsFile("cache.js", "sessionCache[id] = session;\n")},
		Options:    DefaultOptions(),
		Thresholds: thresholds,
		Targets:    targets,
	})

	assert.Equal(t, thresholds, result.Thresholds)
	assert.Equal(t, targets, result.Targets)
	assert.True(t, result.Metrics.Memory.ExceedsThreshold)
}

func TestGuardRecoversPanics(t *testing.T) {
	err := guard("memory analysis", func() error { panic("boom") })()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memory analysis panicked: boom")

	err = guard("database analysis", func() error { return context.DeadlineExceeded })()
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLevel(t *testing.T) {
	tests := []struct {
		score int
		want  PerformanceLevel
	}{
		{100, LevelExcellent},
		{90, LevelExcellent},
		{89, LevelGood},
		{75, LevelGood},
		{74, LevelModerate},
		{60, LevelModerate},
		{59, LevelPoor},
		{0, LevelPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Level(tt.score), "score %d", tt.score)
	}
}

func TestOverallScoreClamps(t *testing.T) {
	var b BottleneckReport
	for i := 0; i < 10; i++ {
		b.Bottlenecks = append(b.Bottlenecks, Bottleneck{Severity: SeverityCritical})
	}
	assert.Equal(t, 0, OverallScore(b, ComplexityReport{}, MemoryReport{}, DatabaseReport{}))

	low := BottleneckReport{Bottlenecks: []Bottleneck{{Severity: SeverityLow}}}
	assert.Equal(t, 100, OverallScore(low, ComplexityReport{}, MemoryReport{}, DatabaseReport{}))

	mixed := OverallScore(
		BottleneckReport{Bottlenecks: []Bottleneck{{Severity: SeverityMedium}}},
		ComplexityReport{Issues: []ComplexityIssue{{Severity: SeverityHigh}}},
		MemoryReport{Issues: []MemoryIssue{{Severity: SeverityMedium}}},
		DatabaseReport{Issues: []DatabaseIssue{{Severity: SeverityCritical}}},
	)
	assert.Equal(t, 100-8-10-5-20, mixed)
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, SeverityHigh, ParseSeverity(" HIGH "))
	assert.Equal(t, SeverityLow, ParseSeverity("low"))
	assert.Equal(t, SeverityMedium, ParseSeverity("urgent"))
	assert.Greater(t, SeverityRank(SeverityCritical), SeverityRank(SeverityHigh))
}
