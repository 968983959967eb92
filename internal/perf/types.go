package perf

import (
	"time"
)

// Severity grades a finding and drives its scoring penalty.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// PerformanceLevel is the qualitative grade derived from the overall score.
type PerformanceLevel string

const (
	LevelExcellent PerformanceLevel = "excellent"
	LevelGood      PerformanceLevel = "good"
	LevelModerate  PerformanceLevel = "moderate"
	LevelPoor      PerformanceLevel = "poor"
)

// SourceFile is a single file handed to the analyzers. It is never modified.
type SourceFile struct {
	Path    string `json:"path"`
	Content string `json:"-"`
	Size    int64  `json:"size"`
	SHA     string `json:"sha"`
}

// SourceLocation points at the place a finding was detected.
type SourceLocation struct {
	File        string `json:"file"`
	StartLine   int    `json:"start_line"`
	StartColumn int    `json:"start_column"`
	EndLine     int    `json:"end_line,omitempty"`
	Function    string `json:"function,omitempty"`
	Context     string `json:"context,omitempty"`
}

// Bottleneck is a code pattern likely to cost runtime.
type Bottleneck struct {
	ID                string         `json:"id"`
	Type              string         `json:"type"`
	Category          Category       `json:"category"`
	Severity          Severity       `json:"severity"`
	Location          SourceLocation `json:"location"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Recommendation    string         `json:"recommendation"`
	ExampleFix        string         `json:"example_fix,omitempty"`
	EstimatedSlowdown float64        `json:"estimated_slowdown"`
}

// BottleneckDistribution counts bottlenecks per category bucket.
type BottleneckDistribution struct {
	Loop      int `json:"loop"`
	IO        int `json:"io"`
	Algorithm int `json:"algorithm"`
	Memory    int `json:"memory"`
	Database  int `json:"database"`
	Network   int `json:"network"`
}

// BottleneckReport is the output of DetectBottlenecks.
type BottleneckReport struct {
	TotalBottlenecks    int                    `json:"total_bottlenecks"`
	CriticalBottlenecks int                    `json:"critical_bottlenecks"`
	Bottlenecks         []Bottleneck           `json:"bottlenecks"`
	Distribution        BottleneckDistribution `json:"distribution"`
	EstimatedImpact     float64                `json:"estimated_impact"`
}

// ComplexityIssue is a function or code shape with excessive asymptotic cost.
type ComplexityIssue struct {
	ID                 string         `json:"id"`
	IssueType          string         `json:"issue_type"`
	Severity           Severity       `json:"severity"`
	Location           SourceLocation `json:"location"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	Recommendation     string         `json:"recommendation"`
	CurrentComplexity  string         `json:"current_complexity"`
	ExpectedComplexity string         `json:"expected_complexity"`
	AlgorithmType      string         `json:"algorithm_type"`
	ComplexityScore    int            `json:"complexity_score,omitempty"`
}

// ComplexityDistribution counts issues per Big-O class.
type ComplexityDistribution struct {
	Constant     int `json:"constant"`
	Logarithmic  int `json:"logarithmic"`
	Linear       int `json:"linear"`
	Linearithmic int `json:"linearithmic"`
	Quadratic    int `json:"quadratic"`
	Cubic        int `json:"cubic"`
	Exponential  int `json:"exponential"`
	Factorial    int `json:"factorial"`
}

// ComplexityReport is the output of AnalyzeAlgorithmComplexity.
type ComplexityReport struct {
	OverallScore    int                    `json:"overall_score"`
	Issues          []ComplexityIssue      `json:"issues"`
	Distribution    ComplexityDistribution `json:"distribution"`
	Recommendations []string               `json:"recommendations"`
}

// MemoryIssue is a pattern likely to cause excess allocation or retention.
type MemoryIssue struct {
	ID             string         `json:"id"`
	IssueType      string         `json:"issue_type"`
	Severity       Severity       `json:"severity"`
	Location       SourceLocation `json:"location"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Recommendation string         `json:"recommendation"`
	ExampleFix     string         `json:"example_fix,omitempty"`
	MemoryImpact   float64        `json:"memory_impact"`
}

// MemoryReport is the output of AnalyzeMemoryUsage.
type MemoryReport struct {
	OverallScore          int           `json:"overall_score"`
	EstimatedUsage        float64       `json:"estimated_usage"`
	Issues                []MemoryIssue `json:"issues"`
	OptimizationPotential float64       `json:"optimization_potential"`
	Recommendations       []string      `json:"recommendations"`
}

// DatabaseIssue is a query shape likely to cause slow or excessive database access.
type DatabaseIssue struct {
	ID              string         `json:"id"`
	IssueType       string         `json:"issue_type"`
	Severity        Severity       `json:"severity"`
	Location        SourceLocation `json:"location"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Recommendation  string         `json:"recommendation"`
	QueryPattern    string         `json:"query_pattern"`
	EstimatedImpact string         `json:"estimated_impact"`
}

// QueryAnalysis is a coarse classification of one matched query.
type QueryAnalysis struct {
	Query                string         `json:"query"`
	Location             SourceLocation `json:"location"`
	Complexity           string         `json:"complexity"`
	CPUIntensive         bool           `json:"cpu_intensive"`
	MemoryIntensive      bool           `json:"memory_intensive"`
	IOIntensive          bool           `json:"io_intensive"`
	OptimizationPriority string         `json:"optimization_priority"`
}

// OptimizationSuggestion is a concrete database rewrite proposal.
type OptimizationSuggestion struct {
	Type                 string `json:"type"`
	Description          string `json:"description"`
	Before               string `json:"before"`
	After                string `json:"after"`
	EstimatedImprovement string `json:"estimated_improvement"`
}

// DatabaseReport is the output of AnalyzeDatabasePerformance.
type DatabaseReport struct {
	OverallScore            int                      `json:"overall_score"`
	Issues                  []DatabaseIssue          `json:"issues"`
	QueryAnalysis           []QueryAnalysis          `json:"query_analysis"`
	OptimizationSuggestions []OptimizationSuggestion `json:"optimization_suggestions"`
}

// AnalysisOptions toggles the individual analyzers.
type AnalysisOptions struct {
	EnableBottleneckDetection bool `json:"enable_bottleneck_detection"`
	EnableComplexityAnalysis  bool `json:"enable_complexity_analysis"`
	EnableMemoryAnalysis      bool `json:"enable_memory_analysis"`
	EnableDatabaseAnalysis    bool `json:"enable_database_analysis"`
}

// DefaultOptions enables every analyzer.
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		EnableBottleneckDetection: true,
		EnableComplexityAnalysis:  true,
		EnableMemoryAnalysis:      true,
		EnableDatabaseAnalysis:    true,
	}
}

// PerformanceThresholds are limits the metrics are compared against.
type PerformanceThresholds struct {
	MaxExecutionTime time.Duration `json:"max_execution_time"`
	MaxMemoryMB      float64       `json:"max_memory_mb"`
	MaxDBQueryTime   time.Duration `json:"max_db_query_time"`
	MaxComplexity    string        `json:"max_complexity"`
}

// DefaultThresholds returns the thresholds used when none are configured.
func DefaultThresholds() PerformanceThresholds {
	return PerformanceThresholds{
		MaxExecutionTime: 1 * time.Second,
		MaxMemoryMB:      512,
		MaxDBQueryTime:   100 * time.Millisecond,
		MaxComplexity:    "O(n log n)",
	}
}

// PerformanceTargets are reported alongside the result and never enforced.
type PerformanceTargets struct {
	LatencyMS     float64 `json:"latency_ms"`
	ThroughputRPS float64 `json:"throughput_rps"`
	MemoryMB      float64 `json:"memory_mb"`
	CPUPercent    float64 `json:"cpu_percent"`
}

// AnalysisContext is the input of AnalyzePerformance.
type AnalysisContext struct {
	Files      []SourceFile
	Options    AnalysisOptions
	Thresholds PerformanceThresholds
	Targets    PerformanceTargets
}

// ExecutionTimeMetrics summarises runtime cost estimates.
type ExecutionTimeMetrics struct {
	EstimatedSlowdown float64       `json:"estimated_slowdown"`
	CriticalPaths     int           `json:"critical_paths"`
	MaxExecutionTime  time.Duration `json:"max_execution_time"`
}

// MemoryMetrics summarises memory estimates.
type MemoryMetrics struct {
	Score                 int     `json:"score"`
	EstimatedUsageMB      float64 `json:"estimated_usage_mb"`
	OptimizationPotential float64 `json:"optimization_potential"`
	ExceedsThreshold      bool    `json:"exceeds_threshold"`
}

// ComplexityMetrics summarises complexity findings.
type ComplexityMetrics struct {
	Score                 int                    `json:"score"`
	Distribution          ComplexityDistribution `json:"distribution"`
	MaxFunctionComplexity int                    `json:"max_function_complexity"`
	WorstComplexity       string                 `json:"worst_complexity,omitempty"`
	ExceedsThreshold      bool                   `json:"exceeds_threshold"`
}

// DatabaseMetrics summarises query findings.
type DatabaseMetrics struct {
	Score          int           `json:"score"`
	IssueCount     int           `json:"issue_count"`
	NPlusOneCount  int           `json:"n_plus_one_count"`
	MaxDBQueryTime time.Duration `json:"max_db_query_time"`
}

// EfficiencyMetrics carries the overall grade.
type EfficiencyMetrics struct {
	Score int              `json:"score"`
	Level PerformanceLevel `json:"level"`
}

// Metrics groups the per-domain metrics of a run.
type Metrics struct {
	ExecutionTime     ExecutionTimeMetrics `json:"execution_time"`
	Memory            MemoryMetrics        `json:"memory"`
	Complexity        ComplexityMetrics    `json:"complexity"`
	Database          DatabaseMetrics      `json:"database"`
	OverallEfficiency EfficiencyMetrics    `json:"overall_efficiency"`
}

// CodeExample is a before/after snippet attached to a recommendation.
type CodeExample struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// Recommendation is an aggregate remediation for one finding domain.
type Recommendation struct {
	ID                   string      `json:"id"`
	Type                 string      `json:"type"`
	Priority             Severity    `json:"priority"`
	Title                string      `json:"title"`
	Description          string      `json:"description"`
	ImplementationSteps  []string    `json:"implementation_steps"`
	CodeExample          CodeExample `json:"code_example"`
	EstimatedImprovement string      `json:"estimated_improvement"`
	Effort               string      `json:"effort"`
}

// AnalysisResult is the complete, immutable outcome of one AnalyzePerformance call.
type AnalysisResult struct {
	ID                      string                `json:"id"`
	Timestamp               time.Time             `json:"timestamp"`
	FilesAnalyzed           int                   `json:"files_analyzed"`
	OverallPerformanceScore int                   `json:"overall_performance_score"`
	PerformanceLevel        PerformanceLevel      `json:"performance_level"`
	Bottlenecks             BottleneckReport      `json:"bottlenecks"`
	Complexity              ComplexityReport      `json:"complexity"`
	Memory                  MemoryReport          `json:"memory"`
	Database                DatabaseReport        `json:"database"`
	Metrics                 Metrics               `json:"metrics"`
	Recommendations         []Recommendation      `json:"recommendations"`
	Thresholds              PerformanceThresholds `json:"thresholds"`
	Targets                 PerformanceTargets    `json:"targets"`
	Error                   string                `json:"error,omitempty"`
}

// TotalFindings returns the number of findings across all four domains.
func (r *AnalysisResult) TotalFindings() int {
	return len(r.Bottlenecks.Bottlenecks) + len(r.Complexity.Issues) + len(r.Memory.Issues) + len(r.Database.Issues)
}
