package perf

import (
	"iter"
	"strings"
)

// Match is a single occurrence of a rule pattern in a file.
type Match struct {
	Text    string
	Groups  []string // Groups[0] is the whole match
	Line    int      // 1-based line of the match start
	EndLine int      // 1-based line of the match end
	Column  int      // offset of the match start within its line
	Context string   // trimmed text of the start line
}

// FindMatches yields every match of the rule in content, in order of appearance.
// Multi-line rules scan the whole content; the others are applied line by line.
// Matching is purely textual and never fails.
func FindMatches(content string, rule *DetectionRule) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		if rule == nil || rule.Pattern == nil || content == "" {
			return
		}
		if rule.Multiline {
			scanContent(content, rule, yield)
			return
		}
		scanLines(content, rule, yield)
	}
}

func scanContent(content string, rule *DetectionRule, yield func(Match) bool) {
	line, cursor := 1, 0
	for _, loc := range rule.Pattern.FindAllStringSubmatchIndex(content, -1) {
		start, end := loc[0], loc[1]
		groups := submatches(content, loc)
		if rule.Verify != nil && !rule.Verify(groups) {
			continue
		}

		line += strings.Count(content[cursor:start], "\n")
		cursor = start

		lineStart := strings.LastIndexByte(content[:start], '\n') + 1
		lineEnd := strings.IndexByte(content[start:], '\n')
		if lineEnd < 0 {
			lineEnd = len(content)
		} else {
			lineEnd += start
		}

		m := Match{
			Text:    content[start:end],
			Groups:  groups,
			Line:    line,
			EndLine: line + strings.Count(content[start:end], "\n"),
			Column:  start - lineStart,
			Context: strings.TrimSpace(content[lineStart:lineEnd]),
		}
		if !yield(m) {
			return
		}
	}
}

func scanLines(content string, rule *DetectionRule, yield func(Match) bool) {
	for i, text := range strings.Split(content, "\n") {
		text = strings.TrimSuffix(text, "\r")
		for _, loc := range rule.Pattern.FindAllStringSubmatchIndex(text, -1) {
			groups := submatches(text, loc)
			if rule.Verify != nil && !rule.Verify(groups) {
				continue
			}
			m := Match{
				Text:    text[loc[0]:loc[1]],
				Groups:  groups,
				Line:    i + 1,
				EndLine: i + 1,
				Column:  loc[0],
				Context: strings.TrimSpace(text),
			}
			if !yield(m) {
				return
			}
		}
	}
}

func submatches(s string, loc []int) []string {
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return groups
}

// fileMatches applies file level suppression before extracting matches.
func fileMatches(file SourceFile, rule *DetectionRule) iter.Seq[Match] {
	if rule.suppressed(file.Content) {
		return func(func(Match) bool) {}
	}
	return FindMatches(file.Content, rule)
}

func locationOf(file SourceFile, m Match) SourceLocation {
	return SourceLocation{
		File:        file.Path,
		StartLine:   m.Line,
		StartColumn: m.Column,
		EndLine:     m.EndLine,
		Context:     m.Context,
	}
}
