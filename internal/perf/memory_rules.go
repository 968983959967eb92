package perf

import "regexp"

// memoryRules carry their memory impact estimate (MB) in EstimatedImpact.
var memoryRules = RuleSet{
	{
		ID:              "unnecessary_copy",
		Pattern:         regexp.MustCompile(`\[\s*\.\.\.\w+(?:\.\w+)*\s*\]|\bObject\.assign\s*\(\s*\{\s*\}|\bJSON\.parse\s*\(\s*JSON\.stringify\s*\(|\.slice\s*\(\s*\)`),
		Severity:        SeverityMedium,
		Title:           "Unnecessary copy",
		Description:     "A whole collection or object is duplicated where a reference or a partial view would do.",
		Recommendation:  "Avoid full copies unless the original must stay untouched; prefer structuredClone only where a deep copy is required.",
		ExampleFix:      "// read-only access does not need a copy\nconst total = items.reduce((sum, i) => sum + i.price, 0);",
		EstimatedImpact: 24,
	},
	{
		ID: "closure_capture",
		Pattern: regexp.MustCompile(`\breturn\s+(?:function\s*\w*\s*\([^)]*\)|\([^)]*\)\s*=>)\s*\{` + loopBody +
			`\b\w*(?:[dD]ata|[cC]ache|[bB]uffer|[iI]tems|[rR]ecords)\b`),
		Multiline:       true,
		Severity:        SeverityMedium,
		Title:           "Closure captures large data",
		Description:     "A returned closure references a large structure, keeping it alive as long as the closure exists.",
		Recommendation:  "Capture only the fields the closure needs instead of the whole structure.",
		ExampleFix:      "const { id } = largeData;\nreturn () => lookup(id);",
		EstimatedImpact: 40,
	},
	{
		ID:              "global_accumulation",
		Pattern:         regexp.MustCompile(`\b(?:global|globalThis|window)\.\w+(?:\.push\s*\(|\s*\[[^\]]+\]\s*=[^=])`),
		Severity:        SeverityHigh,
		Title:           "Accumulation in global state",
		Description:     "Data is appended to a global object that is never released.",
		Recommendation:  "Scope the collection to its owner, or bound it and evict old entries.",
		ExampleFix:      "const recent = new BoundedQueue(1000);\nrecent.push(event);",
		EstimatedImpact: 100,
	},
	{
		ID:              "event_listener_leak",
		Pattern:         regexp.MustCompile(`\.addEventListener\s*\(`),
		Severity:        SeverityMedium,
		Title:           "Event listener never removed",
		Description:     "Listeners are registered but never removed, retaining their handlers and captured scope.",
		Recommendation:  "Remove listeners when the component is torn down, or use an AbortController signal.",
		ExampleFix:      "const ctrl = new AbortController();\nel.addEventListener('click', onClick, { signal: ctrl.signal });\n// teardown\nctrl.abort();",
		EstimatedImpact: 30,
		SuppressedBy:    regexp.MustCompile(`\.removeEventListener\s*\(|\bAbortController\b`),
	},
	{
		ID:              "circular_reference",
		Pattern:         regexp.MustCompile(`\b(\w+)\.\w+\s*=\s*(\w+)\s*;?[ \t]*\r?\n\s*(\w+)\.\w+\s*=\s*(\w+)\b`),
		Multiline:       true,
		Severity:        SeverityMedium,
		Title:           "Circular reference",
		Description:     "Two objects reference each other, which keeps both alive and complicates serialisation.",
		Recommendation:  "Hold one side of the relation weakly (WeakRef or WeakMap) or store an identifier instead.",
		ExampleFix:      "const parents = new WeakMap();\nparents.set(child, parent);",
		EstimatedImpact: 50,
		Verify: func(groups []string) bool {
			return len(groups) > 4 && groups[1] != groups[2] && groups[1] == groups[4] && groups[2] == groups[3]
		},
	},
	{
		ID:              "large_object_retention",
		Pattern:         regexp.MustCompile(`\bnew\s+(?:Array|ArrayBuffer|Float64Array|Float32Array|Uint8Array|Int32Array)\s*\(\s*\d{5,}\s*\)|\bBuffer\.alloc(?:Unsafe)?\s*\(\s*\d{6,}`),
		Severity:        SeverityHigh,
		Title:           "Large object retained",
		Description:     "A large fixed-size allocation is created and kept referenced.",
		Recommendation:  "Stream or chunk the data, and release the reference as soon as it is processed.",
		ExampleFix:      "for await (const chunk of stream) {\n  handle(chunk);\n}",
		EstimatedImpact: 75,
	},
	{
		ID:              "excessive_caching",
		Pattern:         regexp.MustCompile(`\b\w*[cC]ache\w*\s*\[[^\]]+\]\s*=[^=]|\b\w*[cC]ache\w*\.set\s*\(`),
		Severity:        SeverityHigh,
		Title:           "Unbounded cache",
		Description:     "Entries are added to a cache that has no eviction, so it grows for the life of the process.",
		Recommendation:  "Use an LRU cache with a maximum size or a TTL.",
		ExampleFix:      "const cache = new LRUCache({ max: 500, ttl: 60_000 });",
		EstimatedImpact: 150,
		SuppressedBy:    regexp.MustCompile(`\b\w*[cC]ache\w*\.(?:delete|clear)\s*\(|\bmaxSize\b|\bmaxAge\b|\bttl\b|\bLRU`),
	},
	{
		ID:              "string_building_in_loop",
		Pattern:         inLoop(`\b\w+\s*\+=\s*['"\x60]`),
		Multiline:       true,
		Severity:        SeverityLow,
		Title:           "String built inside loop",
		Description:     "Every concatenation allocates a new intermediate string.",
		Recommendation:  "Push the parts into an array and join once.",
		ExampleFix:      "const parts = [];\nfor (const row of rows) parts.push(format(row));\nconst out = parts.join('\\n');",
		EstimatedImpact: 10,
	},
	{
		ID:              "unbounded_growth",
		Pattern:         regexp.MustCompile(`(?:\bwhile\s*\(\s*(?:true|1)\s*\)\s*\{|\bsetInterval\s*\([^{}]*\{)` + loopBody + `\.push\s*\(`),
		Multiline:       true,
		Severity:        SeverityHigh,
		Title:           "Unbounded collection growth",
		Description:     "A collection is appended to from an endless loop or timer without any bound.",
		Recommendation:  "Cap the collection size or drain it as it is filled.",
		ExampleFix:      "if (queue.length >= MAX) queue.shift();\nqueue.push(item);",
		EstimatedImpact: 120,
	},
	{
		ID:              "redundant_buffer_conversion",
		Pattern:         regexp.MustCompile(`\bBuffer\.from\s*\(\s*[\w.]+\.toString\s*\(`),
		Severity:        SeverityLow,
		Title:           "Redundant buffer conversion",
		Description:     "A buffer is converted to a string and straight back, copying the data twice.",
		Recommendation:  "Pass the original buffer through.",
		ExampleFix:      "const copy = Buffer.from(source);",
		EstimatedImpact: 12,
	},
}

// MemoryRules returns the memory risk rules.
func MemoryRules() RuleSet {
	return append(RuleSet(nil), memoryRules...)
}
