package perf

import (
	"regexp"
	"strings"
)

var unboundedSelectGuard = regexp.MustCompile(`(?i)\b(?:LIMIT|TOP|FETCH|WHERE)\b`)

var databaseRules = RuleSet{
	{
		ID: "n_plus_one_query",
		Pattern: regexp.MustCompile(`(?:` + loopHead + `|\.(?:forEach|map)\s*\(\s*async\b[^{}]*\{)` + loopBody +
			`\bawait\s+[\w.]+\.(?:find\w*|query|get|select|where|fetch\w*)\s*\(`),
		Multiline:      true,
		Severity:       SeverityCritical,
		Title:          "N+1 query",
		Description:    "A query is awaited once per item of a collection instead of fetching all rows at once.",
		Recommendation: "Load the related rows in one query (eager loading, IN clause or a batch loader).",
		ImpactText:     "~1000ms+ per 100 affected entities",
	},
	{
		ID:             "select_star",
		Pattern:        regexp.MustCompile(`(?i)\bSELECT\s+\*\s+FROM\b`),
		Severity:       SeverityHigh,
		Title:          "SELECT *",
		Description:    "All columns are fetched even when only a few are used.",
		Recommendation: "List the columns the caller needs.",
		ImpactText:     "~2-5x more data transferred than needed",
	},
	{
		ID:             "function_on_indexed_column",
		Pattern:        regexp.MustCompile(`(?i)\b(?:WHERE|AND|OR)\s+\w+\s*\(\s*[\w.]+\s*\)\s*(?:=|<|>|LIKE\b|IN\b)`),
		Severity:       SeverityHigh,
		Title:          "Function applied to filtered column",
		Description:    "Wrapping a column in a function inside the predicate prevents the database from using its index.",
		Recommendation: "Compare the raw column, or add an expression index that matches the function.",
		ImpactText:     "index bypassed; full table scan on every call",
	},
	{
		ID:             "unbounded_query",
		Pattern:        regexp.MustCompile(`(?i)(\bSELECT\s.+?\sFROM\s+[\w.]+[^;'"\x60]*)|\.findAll\s*\(\s*\)|\.find\s*\(\s*(?:\{\s*\})?\s*\)`),
		Multiline:      true,
		Severity:       SeverityMedium,
		Title:          "Unbounded result set",
		Description:    "The query has neither a filter nor a limit and returns the whole table.",
		Recommendation: "Paginate with LIMIT/OFFSET or keyset pagination and filter on the server.",
		ImpactText:     "memory and latency grow linearly with table size",
		Verify: func(groups []string) bool {
			if len(groups) < 2 || groups[1] == "" {
				return true
			}
			return !unboundedSelectGuard.MatchString(groups[1])
		},
	},
	{
		ID:             "excessive_joins",
		Pattern:        regexp.MustCompile(`(?is)\bJOIN\b[^;'"\x60]*?\bJOIN\b[^;'"\x60]*?\bJOIN\b`),
		Multiline:      true,
		Severity:       SeverityHigh,
		Title:          "Deep join chain",
		Description:    "Three or more joins are chained in one statement.",
		Recommendation: "Denormalise hot paths, split the query, or make sure every join key is indexed.",
		ImpactText:     "intermediate row count multiplies with each join",
	},
	{
		ID:             "leading_wildcard_like",
		Pattern:        regexp.MustCompile(`(?i)\bLIKE\s+['"]%`),
		Severity:       SeverityMedium,
		Title:          "Leading wildcard LIKE",
		Description:    "A LIKE pattern starting with % cannot use a B-tree index.",
		Recommendation: "Use a full-text or trigram index, or anchor the pattern at the start.",
		ImpactText:     "index bypassed; scans every row",
	},
	{
		ID:             "or_in_where",
		Pattern:        regexp.MustCompile(`(?i)\bWHERE\b[^;'"\x60]*\bOR\b`),
		Severity:       SeverityMedium,
		Title:          "OR in WHERE clause",
		Description:    "OR across different columns often prevents index usage.",
		Recommendation: "Rewrite as UNION ALL of indexed queries or use IN on a single column.",
		ImpactText:     "may prevent index usage on large tables",
	},
	{
		ID:             "order_by_random",
		Pattern:        regexp.MustCompile(`(?i)\bORDER\s+BY\s+RAND(?:OM)?\s*\(\s*\)`),
		Severity:       SeverityHigh,
		Title:          "ORDER BY RANDOM()",
		Description:    "Random ordering sorts the entire table to return a few rows.",
		Recommendation: "Pick random ids in the application or sample with TABLESAMPLE.",
		ImpactText:     "sorts the entire table on every call",
	},
	{
		ID:             "count_for_existence",
		Pattern:        regexp.MustCompile(`(?i)\bSELECT\s+COUNT\s*\(\s*\*\s*\)`),
		Severity:       SeverityLow,
		Title:          "COUNT(*) used as existence check",
		Description:    "Counting all rows is more work than checking whether one exists.",
		Recommendation: "Use EXISTS or LIMIT 1 when only presence matters.",
		ImpactText:     "counts every matching row to answer a yes/no question",
	},
	{
		ID:             "raw_query_concatenation",
		Pattern:        regexp.MustCompile(`(?i)\b(?:query|execute|raw)\s*\(\s*['"\x60][^'"\x60]*\b(?:SELECT|INSERT|UPDATE|DELETE)\b[^'"\x60]*['"\x60]\s*\+`),
		Severity:       SeverityHigh,
		Title:          "Query built by string concatenation",
		Description:    "SQL text is concatenated with values, defeating prepared statement caching.",
		Recommendation: "Use parameterised queries.",
		ImpactText:     "defeats statement caching; injection risk",
	},
}

// DatabaseRules returns the query risk rules.
func DatabaseRules() RuleSet {
	return append(RuleSet(nil), databaseRules...)
}

var (
	joinKeyword     = regexp.MustCompile(`(?i)\bJOIN\b`)
	orderOrGroup    = regexp.MustCompile(`(?i)\b(?:ORDER|GROUP)\s+BY\b`)
	groupBy         = regexp.MustCompile(`(?i)\bGROUP\s+BY\b`)
	wildcardSelect  = regexp.MustCompile(`(?i)\bSELECT\s+\*`)
	eagerLoadBefore = strings.Join([]string{
		"for (const user of users) {",
		"  user.posts = await Post.find({ userId: user.id });",
		"}",
	}, "\n")
	eagerLoadAfter = strings.Join([]string{
		"const posts = await Post.find({ userId: { $in: users.map(u => u.id) } });",
		"const byUser = groupBy(posts, 'userId');",
		"users.forEach(u => { u.posts = byUser[u.id] || []; });",
	}, "\n")
)
