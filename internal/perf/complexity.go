package perf

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// complexityThreshold is the highest per-function score that is not reported.
const complexityThreshold = 5

var complexityPenalty = map[Severity]int{
	SeverityCritical: 20,
	SeverityHigh:     15,
	SeverityMedium:   8,
	SeverityLow:      3,
}

// function is a named function body located by brace counting.
type function struct {
	Name      string
	StartLine int
	EndLine   int
	Header    string
	Body      string
	offset    int
}

// AnalyzeAlgorithmComplexity scores each function's control flow and matches
// named algorithmic anti-patterns.
func AnalyzeAlgorithmComplexity(ctx context.Context, files []SourceFile) (ComplexityReport, error) {
	report := ComplexityReport{
		Issues:          []ComplexityIssue{},
		Recommendations: []string{},
	}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return ComplexityReport{}, err
		}
		report.Issues = append(report.Issues, analyzeFileComplexity(file)...)
	}

	score := 100
	seen := make(map[string]bool)
	for _, issue := range report.Issues {
		report.Distribution.add(issue.CurrentComplexity)
		score -= complexityPenalty[issue.Severity]
		if !seen[issue.Recommendation] {
			seen[issue.Recommendation] = true
			report.Recommendations = append(report.Recommendations, issue.Recommendation)
		}
	}
	report.OverallScore = max(score, 0)
	return report, nil
}

func analyzeFileComplexity(file SourceFile) []ComplexityIssue {
	var issues []ComplexityIssue
	functions := extractFunctions(file.Content)

	for _, fn := range functions {
		score := CyclomaticComplexity(fn.Body)
		if score <= complexityThreshold {
			continue
		}
		issues = append(issues, newFunctionIssue(file, fn, score))
	}

	for i := range complexityRules {
		rule := &complexityRules[i]
		for m := range fileMatches(file, rule) {
			loc := locationOf(file, m)
			loc.Function = enclosingFunction(functions, m.Line)
			issues = append(issues, ComplexityIssue{
				ID:                 uuid.NewString(),
				IssueType:          rule.ID,
				Severity:           rule.Severity,
				Location:           loc,
				Title:              rule.Title,
				Description:        rule.Description,
				Recommendation:     rule.Recommendation,
				CurrentComplexity:  rule.CurrentComplexity,
				ExpectedComplexity: rule.ExpectedComplexity,
				AlgorithmType:      rule.AlgorithmType,
			})
		}
	}
	return issues
}

func newFunctionIssue(file SourceFile, fn function, score int) ComplexityIssue {
	severity := SeverityMedium
	switch {
	case score > 15:
		severity = SeverityCritical
	case score > 10:
		severity = SeverityHigh
	}
	current := ComplexityLinear
	if score > 10 {
		current = ComplexityQuadratic
	}

	rule := highComplexityRule
	return ComplexityIssue{
		ID:        uuid.NewString(),
		IssueType: rule.ID,
		Severity:  severity,
		Location: SourceLocation{
			File:      file.Path,
			StartLine: fn.StartLine,
			EndLine:   fn.EndLine,
			Function:  fn.Name,
			Context:   fn.Header,
		},
		Title:              fmt.Sprintf("%s: %s (score %d)", rule.Title, fn.Name, score),
		Description:        rule.Description,
		Recommendation:     rule.Recommendation,
		CurrentComplexity:  current,
		ExpectedComplexity: rule.ExpectedComplexity,
		AlgorithmType:      rule.AlgorithmType,
		ComplexityScore:    score,
	}
}

// CyclomaticComplexity estimates a McCabe-like score for a block of code:
// 1 plus one per decision construct.
func CyclomaticComplexity(body string) int {
	score := 1
	for _, p := range decisionPatterns {
		score += len(p.FindAllStringIndex(body, -1))
	}
	return score
}

// extractFunctions finds named functions and their brace-balanced bodies, ordered by position.
func extractFunctions(content string) []function {
	byBrace := make(map[int]function)
	for _, p := range functionPatterns {
		for _, loc := range p.FindAllStringSubmatchIndex(content, -1) {
			name := content[loc[2]:loc[3]]
			if reservedWords[name] {
				continue
			}
			brace := loc[1] - 1
			if _, ok := byBrace[brace]; ok {
				continue
			}
			body := balancedBlock(content, brace)
			startLine := 1 + strings.Count(content[:loc[2]], "\n")
			byBrace[brace] = function{
				Name:      name,
				StartLine: startLine,
				EndLine:   1 + strings.Count(content[:brace+len(body)-1], "\n"),
				Header:    headerLine(content, loc[2]),
				Body:      body,
				offset:    brace,
			}
		}
	}

	functions := make([]function, 0, len(byBrace))
	for _, fn := range byBrace {
		functions = append(functions, fn)
	}
	sort.Slice(functions, func(i, j int) bool { return functions[i].offset < functions[j].offset })
	return functions
}

// balancedBlock returns the block starting at the brace at open, up to its
// matching close brace or the end of content when the braces never balance.
func balancedBlock(content string, open int) string {
	depth := 0
	for i := open; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[open : i+1]
			}
		}
	}
	return content[open:]
}

func headerLine(content string, offset int) string {
	start := strings.LastIndexByte(content[:offset], '\n') + 1
	end := strings.IndexByte(content[offset:], '\n')
	if end < 0 {
		return strings.TrimSpace(content[start:])
	}
	return strings.TrimSpace(content[start : offset+end])
}

// enclosingFunction returns the innermost function spanning line, or "".
func enclosingFunction(functions []function, line int) string {
	name, span := "", -1
	for _, fn := range functions {
		if line < fn.StartLine || line > fn.EndLine {
			continue
		}
		if s := fn.EndLine - fn.StartLine; span < 0 || s < span {
			name, span = fn.Name, s
		}
	}
	return name
}

func (d *ComplexityDistribution) add(label string) {
	switch label {
	case ComplexityConstant:
		d.Constant++
	case ComplexityLogarithmic:
		d.Logarithmic++
	case ComplexityLinearithmic:
		d.Linearithmic++
	case ComplexityQuadratic:
		d.Quadratic++
	case ComplexityCubic:
		d.Cubic++
	case ComplexityExponential:
		d.Exponential++
	case ComplexityFactorial:
		d.Factorial++
	default:
		d.Linear++
	}
}
