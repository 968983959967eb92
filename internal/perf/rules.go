package perf

import (
	"regexp"
)

// Category is the bottleneck distribution bucket a rule reports into.
type Category string

const (
	CategoryLoop      Category = "loop"
	CategoryIO        Category = "io"
	CategoryAlgorithm Category = "algorithm"
	CategoryMemory    Category = "memory"
	CategoryDatabase  Category = "database"
	CategoryNetwork   Category = "network"
)

// DetectionRule pairs a pattern with all the metadata reported for its matches.
type DetectionRule struct {
	ID             string
	Category       Category
	Pattern        *regexp.Regexp
	Multiline      bool // scan the whole file instead of line by line
	Severity       Severity
	Title          string
	Description    string
	Recommendation string
	ExampleFix     string

	// EstimatedImpact is the slowdown percentage for bottleneck rules and
	// the memory estimate in MB for memory rules.
	EstimatedImpact float64
	// ImpactText is the human readable impact of database rules.
	ImpactText string

	CurrentComplexity  string
	ExpectedComplexity string
	AlgorithmType      string

	// SuppressedBy silences the rule for a whole file when it matches anywhere in it.
	SuppressedBy *regexp.Regexp
	// Verify filters matches on their capture groups, for shapes RE2 cannot express.
	Verify func(groups []string) bool
}

// RuleSet is an ordered, read-only collection of rules.
type RuleSet []DetectionRule

var defaultRule = DetectionRule{
	ID:             "unknown",
	Category:       CategoryAlgorithm,
	Severity:       SeverityMedium,
	Title:          "Potential performance issue",
	Description:    "Potential performance issue detected",
	Recommendation: "Review this code for performance improvements",
}

// Lookup returns the rule with the given id, or the default rule when the id is unknown.
func (rs RuleSet) Lookup(id string) DetectionRule {
	for _, r := range rs {
		if r.ID == id {
			return r
		}
	}
	return defaultRule
}

// IDs lists rule ids in registry order.
func (rs RuleSet) IDs() []string {
	ids := make([]string, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.ID)
	}
	return ids
}

// suppressed reports whether the rule is silenced for the given file content.
func (r *DetectionRule) suppressed(content string) bool {
	return r.SuppressedBy != nil && r.SuppressedBy.MatchString(content)
}

// parenGroup matches a parenthesised expression with at most one level of nested
// parentheses, e.g. "(const k of Object.keys(m))".
const parenGroup = `\((?:[^()]|\([^()]*\))*\)`

// loopHead matches the header and opening brace of a for/while loop.
const loopHead = `\b(?:for|while)\s*` + parenGroup + `\s*\{`

// forHead matches the header and opening brace of a for loop.
const forHead = `\bfor\s*` + parenGroup + `\s*\{`

// loopBody matches the text up to the first nested block boundary.
const loopBody = `[^{}]*`

func inLoop(expr string) *regexp.Regexp {
	return regexp.MustCompile(loopHead + loopBody + expr)
}

func sameGroups(pairs ...[2]int) func([]string) bool {
	return func(groups []string) bool {
		for _, p := range pairs {
			if p[0] >= len(groups) || p[1] >= len(groups) || groups[p[0]] != groups[p[1]] {
				return false
			}
		}
		return true
	}
}
