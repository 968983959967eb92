package orchestrator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/scan-io-git/perfscan/internal/perf"
)

// ErrInvalidOption is wrapped by every error caused by a bad analyzer selection.
var ErrInvalidOption = errors.New("invalid analysis option")

// Analyzer names accepted by Options.Skip and Options.Only.
const (
	AnalyzerBottlenecks = "bottlenecks"
	AnalyzerComplexity  = "complexity"
	AnalyzerMemory      = "memory"
	AnalyzerDatabase    = "database"
)

var analyzerAliases = map[string]string{
	"bottleneck":  AnalyzerBottlenecks,
	"bottlenecks": AnalyzerBottlenecks,
	"complexity":  AnalyzerComplexity,
	"memory":      AnalyzerMemory,
	"mem":         AnalyzerMemory,
	"database":    AnalyzerDatabase,
	"db":          AnalyzerDatabase,
}

// Options select the analyzers of one run. Only, when set, wins over the configured skip list;
// Skip is always applied last.
type Options struct {
	Skip    []string `json:"skip,omitempty"`
	Only    []string `json:"only,omitempty"`
	NoCache bool     `json:"no_cache,omitempty"`
}

// AnalyzerNames lists the canonical analyzer names.
func AnalyzerNames() []string {
	return []string{AnalyzerBottlenecks, AnalyzerComplexity, AnalyzerMemory, AnalyzerDatabase}
}

// SplitList splits comma separated values and drops blanks, so "a, b" and ["a","b"] are equivalent.
func SplitList(values ...string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func canonical(names []string) (map[string]bool, error) {
	set := make(map[string]bool)
	for _, n := range SplitList(names...) {
		c, ok := analyzerAliases[strings.ToLower(n)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown analyzer %q, expected one of %s", ErrInvalidOption, n, strings.Join(AnalyzerNames(), ", "))
		}
		set[c] = true
	}
	return set, nil
}

// resolve turns the configured skip list and the run options into analyzer toggles.
func resolve(configSkip []string, opts Options) (perf.AnalysisOptions, error) {
	enabled := map[string]bool{}

	only, err := canonical(opts.Only)
	if err != nil {
		return perf.AnalysisOptions{}, err
	}
	if len(only) > 0 {
		enabled = only
	} else {
		defaultSkip, err := canonical(configSkip)
		if err != nil {
			return perf.AnalysisOptions{}, err
		}
		for _, n := range AnalyzerNames() {
			enabled[n] = !defaultSkip[n]
		}
	}

	skip, err := canonical(opts.Skip)
	if err != nil {
		return perf.AnalysisOptions{}, err
	}
	for n := range skip {
		enabled[n] = false
	}

	out := perf.AnalysisOptions{
		EnableBottleneckDetection: enabled[AnalyzerBottlenecks],
		EnableComplexityAnalysis:  enabled[AnalyzerComplexity],
		EnableMemoryAnalysis:      enabled[AnalyzerMemory],
		EnableDatabaseAnalysis:    enabled[AnalyzerDatabase],
	}
	if out == (perf.AnalysisOptions{}) {
		return out, fmt.Errorf("%w: every analyzer is disabled", ErrInvalidOption)
	}
	return out, nil
}

// enabledNames lists the enabled analyzers in a stable order for cache keys and logs.
func enabledNames(o perf.AnalysisOptions) []string {
	var names []string
	if o.EnableBottleneckDetection {
		names = append(names, AnalyzerBottlenecks)
	}
	if o.EnableComplexityAnalysis {
		names = append(names, AnalyzerComplexity)
	}
	if o.EnableMemoryAnalysis {
		names = append(names, AnalyzerMemory)
	}
	if o.EnableDatabaseAnalysis {
		names = append(names, AnalyzerDatabase)
	}
	sort.Strings(names)
	return names
}
