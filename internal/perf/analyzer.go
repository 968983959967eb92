package perf

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
)

// Analyzer runs the four analyzers and aggregates their reports.
type Analyzer struct {
	logger hclog.Logger
}

// NewAnalyzer creates an Analyzer. A nil logger disables logging.
func NewAnalyzer(logger hclog.Logger) *Analyzer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Analyzer{logger: logger}
}

type reports struct {
	bottlenecks BottleneckReport
	complexity  ComplexityReport
	memory      MemoryReport
	database    DatabaseReport
}

// AnalyzePerformance runs every enabled analyzer over actx.Files and scores the outcome.
// It never fails: errors, panics and cancellation produce a degraded result
// with a zero score and a single failure recommendation.
func (a *Analyzer) AnalyzePerformance(ctx context.Context, actx AnalysisContext) (result *AnalysisResult) {
	started := time.Now()
	if actx.Thresholds == (PerformanceThresholds{}) {
		actx.Thresholds = DefaultThresholds()
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic during analysis: %v", r)
			a.logger.Error("performance analysis failed", "error", err)
			result = degradedResult(actx, err)
		}
	}()

	out, err := a.run(ctx, actx)
	if err != nil {
		a.logger.Error("performance analysis failed", "error", err, "files", len(actx.Files))
		return degradedResult(actx, err)
	}

	result = &AnalysisResult{
		ID:              uuid.NewString(),
		Timestamp:       time.Now().UTC(),
		FilesAnalyzed:   len(actx.Files),
		Bottlenecks:     out.bottlenecks,
		Complexity:      out.complexity,
		Memory:          out.memory,
		Database:        out.database,
		Thresholds:      actx.Thresholds,
		Targets:         actx.Targets,
		Recommendations: []Recommendation{},
	}
	result.OverallPerformanceScore = OverallScore(out.bottlenecks, out.complexity, out.memory, out.database)
	result.PerformanceLevel = Level(result.OverallPerformanceScore)
	result.Metrics = buildMetrics(result)
	result.Recommendations = buildRecommendations(result)

	a.logger.Debug("performance analysis completed",
		"files", result.FilesAnalyzed,
		"findings", result.TotalFindings(),
		"score", result.OverallPerformanceScore,
		"level", result.PerformanceLevel,
		"duration", time.Since(started))
	return result
}

// run executes the enabled analyzers concurrently. Disabled analyzers yield empty reports.
func (a *Analyzer) run(ctx context.Context, actx AnalysisContext) (reports, error) {
	out := reports{
		bottlenecks: BottleneckReport{Bottlenecks: []Bottleneck{}},
		complexity:  ComplexityReport{OverallScore: 100, Issues: []ComplexityIssue{}, Recommendations: []string{}},
		memory:      MemoryReport{OverallScore: 100, Issues: []MemoryIssue{}, Recommendations: []string{}},
		database: DatabaseReport{
			OverallScore:            100,
			Issues:                  []DatabaseIssue{},
			QueryAnalysis:           []QueryAnalysis{},
			OptimizationSuggestions: []OptimizationSuggestion{},
		},
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	g, gctx := errgroup.WithContext(ctx)
	opts := actx.Options
	files := actx.Files

	if opts.EnableBottleneckDetection {
		g.Go(guard("bottleneck detection", func() (err error) {
			out.bottlenecks, err = DetectBottlenecks(gctx, files)
			return err
		}))
	}
	if opts.EnableComplexityAnalysis {
		g.Go(guard("complexity analysis", func() (err error) {
			out.complexity, err = AnalyzeAlgorithmComplexity(gctx, files)
			return err
		}))
	}
	if opts.EnableMemoryAnalysis {
		g.Go(guard("memory analysis", func() (err error) {
			out.memory, err = AnalyzeMemoryUsage(gctx, files)
			return err
		}))
	}
	if opts.EnableDatabaseAnalysis {
		g.Go(guard("database analysis", func() (err error) {
			out.database, err = AnalyzeDatabasePerformance(gctx, files)
			return err
		}))
	}

	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}

// guard turns a panic inside an analyzer goroutine into an error.
func guard(name string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s panicked: %v", name, r)
			}
		}()
		if err := fn(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}
}
