package report

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/scan-io-git/perfscan/internal/orchestrator"
	"github.com/scan-io-git/perfscan/internal/perf"
)

const (
	toolName = "perfscan"
	toolURI  = "https://github.com/scan-io-git/perfscan"
)

// WriteSARIF renders the findings of a as a SARIF 2.1.0 log with one run.
func WriteSARIF(w io.Writer, a *orchestrator.Analysis) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolURI)

	seen := map[string]bool{}
	for _, f := range Collect(a.Result) {
		id := f.RuleID()
		if !seen[id] {
			seen[id] = true
			run.AddRule(id).
				WithDescription(f.Title).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: sarifLevel(f.Severity)}).
				WithProperties(sarif.Properties{"domain": f.Domain})
		}

		region := sarif.NewRegion().WithStartLine(max(f.Location.StartLine, 1))
		if f.Location.EndLine > f.Location.StartLine {
			region.WithEndLine(f.Location.EndLine)
		}
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.Location.File)).
				WithRegion(region),
		)

		message := f.Description
		if f.Recommendation != "" {
			message += " " + f.Recommendation
		}
		result := sarif.NewRuleResult(id).
			WithMessage(sarif.NewTextMessage(message)).
			WithLevel(sarifLevel(f.Severity)).
			WithLocations([]*sarif.Location{location})
		if link := a.Permalink(f.Location); link != "" {
			result.PropertyBag = *sarif.NewPropertyBag()
			result.Add("permalink", link)
		}
		run.AddResult(result)
	}

	report.AddRun(run)
	if err := report.PrettyWrite(w); err != nil {
		return fmt.Errorf("failed to write SARIF report: %w", err)
	}
	return nil
}

func sarifLevel(s perf.Severity) string {
	switch s {
	case perf.SeverityCritical, perf.SeverityHigh:
		return "error"
	case perf.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}
