package perf

import "regexp"

// Big-O labels used by the complexity analyzer.
const (
	ComplexityConstant     = "O(1)"
	ComplexityLogarithmic  = "O(log n)"
	ComplexityLinear       = "O(n)"
	ComplexityLinearithmic = "O(n log n)"
	ComplexityQuadratic    = "O(n²)"
	ComplexityCubic        = "O(n³)"
	ComplexityExponential  = "O(2^n)"
	ComplexityFactorial    = "O(n!)"
)

// complexityRank orders the Big-O labels from cheapest to most expensive.
var complexityRank = map[string]int{
	ComplexityConstant:     0,
	ComplexityLogarithmic:  1,
	ComplexityLinear:       2,
	ComplexityLinearithmic: 3,
	ComplexityQuadratic:    4,
	ComplexityCubic:        5,
	ComplexityExponential:  6,
	ComplexityFactorial:    7,
}

// ComplexityRank returns the position of a Big-O label, treating unknown labels as linear.
func ComplexityRank(label string) int {
	if r, ok := complexityRank[label]; ok {
		return r
	}
	return complexityRank[ComplexityLinear]
}

var complexityRules = RuleSet{
	{
		ID: "bubble_sort",
		Pattern: regexp.MustCompile(forHead + loopBody + forHead + loopBody +
			`\bif\s*\(\s*(\w+)\s*\[\s*(\w+)\s*\]\s*>\s*(\w+)\s*\[\s*(\w+)\s*\+\s*1\s*\]`),
		Multiline:          true,
		Severity:           SeverityHigh,
		Title:              "Bubble sort",
		Description:        "Adjacent elements are compared and swapped inside a double loop, which is quadratic.",
		Recommendation:     "Use the built-in sort with a comparator, which runs in O(n log n).",
		CurrentComplexity:  ComplexityQuadratic,
		ExpectedComplexity: ComplexityLinearithmic,
		AlgorithmType:      "sorting",
		Verify:             sameGroups([2]int{1, 3}, [2]int{2, 4}),
	},
	{
		ID: "linear_search",
		Pattern: regexp.MustCompile(forHead + loopBody +
			`\bif\s*\(\s*\w+\s*\[\s*(\w+)\s*\]\s*===?\s*[\w.]+\s*\)\s*(?:\{\s*)?return\s+(\w+)`),
		Multiline:          true,
		Severity:           SeverityMedium,
		Title:              "Linear search",
		Description:        "The collection is scanned element by element to find a value.",
		Recommendation:     "Keep the data sorted and binary search it, or index it in a Map.",
		CurrentComplexity:  ComplexityLinear,
		ExpectedComplexity: ComplexityLogarithmic,
		AlgorithmType:      "searching",
		Verify:             sameGroups([2]int{1, 2}),
	},
	{
		ID:                 "naive_fibonacci",
		Pattern:            regexp.MustCompile(`\breturn\s+(\w+)\s*\(\s*(\w+)\s*-\s*1\s*\)\s*\+\s*(\w+)\s*\(\s*(\w+)\s*-\s*2\s*\)`),
		Severity:           SeverityCritical,
		Title:              "Naive recursive Fibonacci",
		Description:        "The function recurses twice per call without memoisation, recomputing the same values exponentially often.",
		Recommendation:     "Memoise intermediate results or iterate bottom-up.",
		CurrentComplexity:  ComplexityExponential,
		ExpectedComplexity: ComplexityLinear,
		AlgorithmType:      "recursion",
		Verify:             sameGroups([2]int{1, 3}, [2]int{2, 4}),
	},
	{
		ID: "triple_nested_loop",
		Pattern: regexp.MustCompile(forHead + loopBody + forHead + loopBody +
			`\bfor\s*\(`),
		Multiline:          true,
		Severity:           SeverityHigh,
		Title:              "Triple nested loop",
		Description:        "Three loops are nested, giving cubic running time.",
		Recommendation:     "Precompute lookups for the innermost loop or restructure the algorithm to drop one level of nesting.",
		CurrentComplexity:  ComplexityCubic,
		ExpectedComplexity: ComplexityQuadratic,
		AlgorithmType:      "nested_iteration",
	},
	{
		ID:                 "string_concat_in_loop",
		Pattern:            inLoop(`\b\w+\s*\+=\s*(?:['"\x60]|\w+\s*\+\s*['"\x60])`),
		Multiline:          true,
		Severity:           SeverityMedium,
		Title:              "String concatenation inside loop",
		Description:        "A string is grown by concatenation on every iteration, copying it each time.",
		Recommendation:     "Collect the parts in an array and join them once after the loop.",
		CurrentComplexity:  ComplexityQuadratic,
		ExpectedComplexity: ComplexityLinear,
		AlgorithmType:      "string_manipulation",
	},
}

// ComplexityRules returns the algorithm anti-pattern rules.
func ComplexityRules() RuleSet {
	return append(RuleSet(nil), complexityRules...)
}

// highComplexityRule describes the per-function cyclomatic complexity finding.
var highComplexityRule = DetectionRule{
	ID:                 "high_cyclomatic_complexity",
	Title:              "High cyclomatic complexity",
	Description:        "The function has many independent paths, which makes it slow to reason about and often hides redundant work.",
	Recommendation:     "Split the function into smaller units and replace long conditional chains with lookup tables or early returns.",
	ExpectedComplexity: ComplexityLinear,
	AlgorithmType:      "control_flow",
}

// decisionPatterns are the constructs counted by the cyclomatic complexity estimate.
// "else if" also matches the plain "if" pattern and therefore counts twice.
var decisionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bif\s*\(`),
	regexp.MustCompile(`\belse\s+if\b`),
	regexp.MustCompile(`\bwhile\s*\(`),
	regexp.MustCompile(`\bfor\s*\(`),
	regexp.MustCompile(`\bswitch\s*\(`),
	regexp.MustCompile(`\bcase\s`),
	regexp.MustCompile(`\bcatch\s*[({]`),
	regexp.MustCompile(`&&`),
	regexp.MustCompile(`\|\|`),
	regexp.MustCompile(`[^?]\?\s`),
}

// functionPatterns locate named function headers; group 1 is the name.
var functionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bfunction\s*\*?\s*(\w+)\s*\([^)]*\)\s*\{`),
	regexp.MustCompile(`\b(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s+)?(?:function\s*\*?\s*\w*\s*\([^)]*\)|\([^)]*\)\s*=>|\w+\s*=>)\s*\{`),
	regexp.MustCompile(`(?m)^[ \t]*(?:(?:public|private|protected|static|async|get|set)\s+)*(\w+)\s*\([^)]*\)\s*\{`),
}

// reservedWords are never function names even though they look like method headers.
var reservedWords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"function": true, "return": true, "with": true, "do": true, "else": true,
}
