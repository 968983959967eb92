package perf

import "regexp"

// bottleneckRules is ordered by priority: on a shared line, the earlier rule wins.
var bottleneckRules = RuleSet{
	{
		ID:        "nested_loops",
		Category:  CategoryLoop,
		Pattern:   regexp.MustCompile(`(?:` + loopHead + loopBody + `\b(?:for|while)\s*\(|\.forEach\s*\([^{}]*\{[^{}]*\.forEach\s*\()`),
		Multiline: true,
		Severity:  SeverityHigh,
		Title:     "Nested loops",
		Description: "A loop runs inside another loop, so the work grows with the product of both " +
			"collection sizes.",
		Recommendation: "Index the inner collection in a Map or Set once, then do constant time lookups from the outer loop.",
		ExampleFix: "const byId = new Map(items.map(i => [i.id, i]));\n" +
			"for (const order of orders) {\n  const item = byId.get(order.itemId);\n}",
		EstimatedImpact: 50,
	},
	{
		ID:              "dom_query_in_loop",
		Category:        CategoryLoop,
		Pattern:         inLoop(`document\.(?:querySelector(?:All)?|getElementById|getElementsBy(?:ClassName|TagName|Name))\s*\(`),
		Multiline:       true,
		Severity:        SeverityHigh,
		Title:           "DOM query inside loop",
		Description:     "The DOM is queried on every iteration, forcing repeated tree traversal and possible layout work.",
		Recommendation:  "Query the element once before the loop and reuse the reference.",
		ExampleFix:      "const list = document.getElementById('list');\nfor (const item of items) {\n  list.appendChild(render(item));\n}",
		EstimatedImpact: 40,
	},
	{
		ID:              "query_in_loop",
		Category:        CategoryDatabase,
		Pattern:         inLoop(`\.(?:query|execute|findOne|findById|findAll|find)\s*\(`),
		Multiline:       true,
		Severity:        SeverityCritical,
		Title:           "Database query inside loop",
		Description:     "A database round trip is issued for every iteration of the loop.",
		Recommendation:  "Fetch all rows in one query (IN clause, join or batch loader) before iterating.",
		ExampleFix:      "const users = await User.find({ _id: { $in: ids } });",
		EstimatedImpact: 80,
	},
	{
		ID:              "await_in_loop",
		Category:        CategoryIO,
		Pattern:         inLoop(`\bawait\s`),
		Multiline:       true,
		Severity:        SeverityHigh,
		Title:           "Sequential await inside loop",
		Description:     "Each iteration waits for the previous asynchronous call, serialising independent work.",
		Recommendation:  "Start the operations together and await them with Promise.all, bounded if needed.",
		ExampleFix:      "const results = await Promise.all(items.map(item => process(item)));",
		EstimatedImpact: 60,
	},
	{
		ID:              "memory_leak",
		Category:        CategoryMemory,
		Pattern:         regexp.MustCompile(`\bsetInterval\s*\(`),
		Severity:        SeverityCritical,
		Title:           "Potential memory leak from uncleared interval",
		Description:     "A periodic timer is started but never cleared, keeping its closure and everything it references alive.",
		Recommendation:  "Keep the timer handle and call clearInterval when the owner is disposed.",
		ExampleFix:      "const timer = setInterval(poll, 1000);\n// on shutdown\nclearInterval(timer);",
		EstimatedImpact: 100,
		SuppressedBy:    regexp.MustCompile(`\bclearInterval\s*\(`),
	},
	{
		ID:              "sync_network_request",
		Category:        CategoryNetwork,
		Pattern:         regexp.MustCompile(`\.open\s*\(\s*['"][A-Za-z]+['"]\s*,[^,]+,\s*false\s*\)`),
		Severity:        SeverityHigh,
		Title:           "Synchronous network request",
		Description:     "A synchronous XMLHttpRequest blocks the event loop until the response arrives.",
		Recommendation:  "Use fetch or an asynchronous request and handle the response in a callback or await.",
		ExampleFix:      "const res = await fetch(url);\nconst data = await res.json();",
		EstimatedImpact: 70,
	},
	{
		ID:              "sync_file_io",
		Category:        CategoryIO,
		Pattern:         regexp.MustCompile(`\b(?:readFileSync|writeFileSync|appendFileSync|readdirSync|statSync|existsSync|execSync)\s*\(`),
		Severity:        SeverityHigh,
		Title:           "Blocking file system call",
		Description:     "A synchronous file system or process call blocks the event loop for its full duration.",
		Recommendation:  "Use the promise based fs API and await it.",
		ExampleFix:      "const data = await fs.promises.readFile(path, 'utf8');",
		EstimatedImpact: 30,
	},
	{
		ID:              "json_in_loop",
		Category:        CategoryAlgorithm,
		Pattern:         inLoop(`\bJSON\.(?:parse|stringify)\s*\(`),
		Multiline:       true,
		Severity:        SeverityMedium,
		Title:           "JSON serialisation inside loop",
		Description:     "Objects are serialised or parsed on every iteration.",
		Recommendation:  "Serialise once outside the loop or work with the parsed objects directly.",
		ExampleFix:      "const parsed = JSON.parse(payload);\nfor (const row of parsed.rows) {\n  handle(row);\n}",
		EstimatedImpact: 20,
	},
	{
		ID:              "regex_in_loop",
		Category:        CategoryAlgorithm,
		Pattern:         inLoop(`\bnew\s+RegExp\s*\(`),
		Multiline:       true,
		Severity:        SeverityMedium,
		Title:           "Regular expression compiled inside loop",
		Description:     "A regular expression is constructed on every iteration.",
		Recommendation:  "Compile the expression once outside the loop.",
		ExampleFix:      "const re = new RegExp(pattern);\nfor (const line of lines) {\n  re.test(line);\n}",
		EstimatedImpact: 15,
	},
	{
		ID:              "inefficient_array_search",
		Category:        CategoryAlgorithm,
		Pattern:         regexp.MustCompile(`\.indexOf\s*\([^)]*\)\s*(?:[!=]==?|>=?|<)\s*-?[01]\b`),
		Severity:        SeverityLow,
		Title:           "Linear membership test",
		Description:     "indexOf scans the array on every membership test.",
		Recommendation:  "Use a Set for repeated membership checks, or includes for readability.",
		ExampleFix:      "const allowed = new Set(list);\nif (allowed.has(value)) { /* ... */ }",
		EstimatedImpact: 10,
	},
	{
		ID:              "array_length_in_loop",
		Category:        CategoryLoop,
		Pattern:         regexp.MustCompile(`\bfor\s*\([^;]*;\s*\w+\s*<=?\s*[\w.]+\.length\s*;`),
		Severity:        SeverityLow,
		Title:           "Array length recalculated in loop condition",
		Description:     "The length property is read on every iteration of the loop condition.",
		Recommendation:  "Cache the length in a local variable or use for...of.",
		ExampleFix:      "for (let i = 0, n = arr.length; i < n; i++) {\n  // ...\n}",
		EstimatedImpact: 5,
	},
}

// BottleneckRules returns the bottleneck rules in priority order.
func BottleneckRules() RuleSet {
	return append(RuleSet(nil), bottleneckRules...)
}
