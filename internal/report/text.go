package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/scan-io-git/perfscan/internal/orchestrator"
	"github.com/scan-io-git/perfscan/internal/perf"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	faint   = color.New(color.FgHiBlack)
)

func severityColor(s perf.Severity) *color.Color {
	switch s {
	case perf.SeverityCritical:
		return color.New(color.FgRed, color.Bold)
	case perf.SeverityHigh:
		return color.New(color.FgRed)
	case perf.SeverityMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

func levelColor(l perf.PerformanceLevel) *color.Color {
	switch l {
	case perf.LevelExcellent:
		return color.New(color.FgGreen, color.Bold)
	case perf.LevelGood:
		return color.New(color.FgGreen)
	case perf.LevelModerate:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// WriteText renders a human readable report. Colors follow fatih/color's terminal detection.
func WriteText(w io.Writer, a *orchestrator.Analysis, opts Options) error {
	r := a.Result
	ew := &errWriter{w: w}

	heading.Fprintf(ew, "Performance report: %s\n", a.Target.Title)
	if a.Target.Ref != "" {
		faint.Fprintf(ew, "ref %s, ", a.Target.Ref)
	}
	faint.Fprintf(ew, "%d files analysed", r.FilesAnalyzed)
	if a.Skipped > 0 {
		faint.Fprintf(ew, ", %d skipped", a.Skipped)
	}
	if a.Truncated {
		faint.Fprint(ew, ", file list truncated")
	}
	if a.Cached {
		faint.Fprint(ew, ", cached")
	}
	fmt.Fprintln(ew)
	fmt.Fprintln(ew)

	fmt.Fprint(ew, "Score: ")
	levelColor(r.PerformanceLevel).Fprintf(ew, "%d/100 (%s)\n", r.OverallPerformanceScore, r.PerformanceLevel)
	fmt.Fprintf(ew, "Bottlenecks: %d  Complexity: %d/100  Memory: %d/100  Database: %d/100\n",
		r.Bottlenecks.TotalBottlenecks, r.Complexity.OverallScore, r.Memory.OverallScore, r.Database.OverallScore)
	if r.Error != "" {
		color.New(color.FgRed).Fprintf(ew, "Analysis failed: %s\n", r.Error)
	}

	findings := Collect(r)
	if len(findings) > 0 {
		fmt.Fprintln(ew)
		heading.Fprintf(ew, "Findings (%d)\n", len(findings))
		shown := findings
		if opts.MaxFindings > 0 && len(shown) > opts.MaxFindings {
			shown = shown[:opts.MaxFindings]
		}
		for i, f := range shown {
			fmt.Fprintf(ew, "%3d. ", i+1)
			severityColor(f.Severity).Fprintf(ew, "[%s]", strings.ToUpper(string(f.Severity)))
			fmt.Fprintf(ew, " %s  %s\n", f.Title, faint.Sprint(f.RuleID()))
			fmt.Fprintf(ew, "     %s\n", location(a, f.Location))
			if f.Recommendation != "" {
				fmt.Fprintf(ew, "     fix: %s\n", f.Recommendation)
			}
		}
		if hidden := len(findings) - len(shown); hidden > 0 {
			faint.Fprintf(ew, "     ... and %d more\n", hidden)
		}
	}

	if len(r.Recommendations) > 0 {
		fmt.Fprintln(ew)
		heading.Fprintln(ew, "Recommendations")
		for _, rec := range r.Recommendations {
			severityColor(rec.Priority).Fprintf(ew, "  - [%s]", rec.Priority)
			fmt.Fprintf(ew, " %s: %s\n", rec.Title, rec.Description)
			for _, step := range rec.ImplementationSteps {
				fmt.Fprintf(ew, "      * %s\n", step)
			}
		}
	}
	return ew.err
}

func location(a *orchestrator.Analysis, loc perf.SourceLocation) string {
	s := fmt.Sprintf("%s:%d", loc.File, loc.StartLine)
	if loc.Function != "" {
		s += " in " + loc.Function
	}
	if link := a.Permalink(loc); link != "" {
		s += " " + link
	}
	return s
}

// errWriter keeps the first write error so rendering code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
