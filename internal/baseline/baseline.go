// Package baseline matches the findings of two analyses to tell new problems from fixed ones.
package baseline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/scan-io-git/perfscan/internal/perf"
	"github.com/scan-io-git/perfscan/internal/report"
)

// Diff is the outcome of comparing a current result against a baseline.
type Diff struct {
	New       []report.Finding `json:"new"`
	Fixed     []report.Finding `json:"fixed"`
	Unchanged []report.Finding `json:"unchanged"`
}

// Fingerprint hashes the detected code with whitespace collapsed, so that re-indented
// or moved code keeps its identity. Findings without context have no fingerprint.
func Fingerprint(f report.Finding) string {
	snippet := strings.Join(strings.Fields(f.Location.Context), " ")
	if snippet == "" {
		return ""
	}
	return strconv.FormatUint(xxhash.Sum64String(f.RuleID()+"\x00"+snippet), 16)
}

// Compare pairs every current finding with at most one baseline finding. Pairing runs in
// stages from the strictest to the loosest key; a finding paired in one stage is not
// considered again:
//
//  1. rule, file, line range and fingerprint
//  2. rule, file and fingerprint
//  3. rule, file and line range
//  4. rule, file and start line
func Compare(base, current *perf.AnalysisResult) Diff {
	known := report.Collect(base)
	found := report.Collect(current)

	knownPrint := make([]string, len(known))
	for i, f := range known {
		knownPrint[i] = Fingerprint(f)
	}
	foundPrint := make([]string, len(found))
	for i, f := range found {
		foundPrint[i] = Fingerprint(f)
	}

	pairedKnown := make([]bool, len(known))
	pairedFound := make([]bool, len(found))
	for stage := 1; stage <= 4; stage++ {
		for fi, f := range found {
			if pairedFound[fi] {
				continue
			}
			for ki, k := range known {
				if pairedKnown[ki] || !match(k, f, knownPrint[ki], foundPrint[fi], stage) {
					continue
				}
				pairedKnown[ki] = true
				pairedFound[fi] = true
				break
			}
		}
	}

	var d Diff
	for fi, f := range found {
		if pairedFound[fi] {
			d.Unchanged = append(d.Unchanged, f)
		} else {
			d.New = append(d.New, f)
		}
	}
	for ki, k := range known {
		if !pairedKnown[ki] {
			d.Fixed = append(d.Fixed, k)
		}
	}
	return d
}

func match(a, b report.Finding, printA, printB string, stage int) bool {
	if a.RuleID() != b.RuleID() || a.Location.File != b.Location.File {
		return false
	}
	sameLines := a.Location.StartLine == b.Location.StartLine && a.Location.EndLine == b.Location.EndLine
	samePrint := printA != "" && printA == printB

	switch stage {
	case 1:
		return sameLines && samePrint
	case 2:
		return samePrint
	case 3:
		return sameLines
	case 4:
		return a.Location.StartLine == b.Location.StartLine
	default:
		return false
	}
}

// HasRegressions reports whether the diff introduced findings of at least minSeverity.
func (d Diff) HasRegressions(minSeverity perf.Severity) bool {
	for _, f := range d.New {
		if perf.SeverityRank(f.Severity) >= perf.SeverityRank(minSeverity) {
			return true
		}
	}
	return false
}

// ParseSeverity parses a regression threshold. Unlike perf.ParseSeverity it rejects unknown names.
func ParseSeverity(name string) (perf.Severity, error) {
	sev := perf.Severity(strings.ToLower(strings.TrimSpace(name)))
	if perf.ParseSeverity(string(sev)) != sev {
		return "", fmt.Errorf("unknown severity %q, expected low, medium, high or critical", name)
	}
	return sev, nil
}
