package diff

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/perfscan/internal/baseline"
	internalcmd "github.com/scan-io-git/perfscan/internal/cmd"
	"github.com/scan-io-git/perfscan/internal/config"
	"github.com/scan-io-git/perfscan/internal/orchestrator"
	"github.com/scan-io-git/perfscan/internal/perf"
	"github.com/scan-io-git/perfscan/internal/report"
	"github.com/scan-io-git/perfscan/internal/store"
	perrors "github.com/scan-io-git/perfscan/pkg/shared/errors"
)

// RunOptionsDiff holds the arguments for the diff command.
type RunOptionsDiff struct {
	JSON   bool
	FailOn string
}

// Output is the JSON document printed by diff --json.
type Output struct {
	Base      orchestrator.Summary `json:"base"`
	Head      orchestrator.Summary `json:"head"`
	ScoreDiff int                  `json:"score_diff"`
	baseline.Diff
}

var (
	AppConfig        *config.Config
	logger           hclog.Logger
	diffOptions      RunOptionsDiff
	exampleDiffUsage = `  # Show what changed between two stored analyses
  perfscan diff 3f1c2a8e-6d7b-4c1e-9a55-0b8f2d7e4c10 9b2e61f0-1d3c-4f7a-8c2e-5a4b3c2d1e0f

  # Fail when the newer analysis introduced high or critical findings
  perfscan diff --fail-on high BASE_ID HEAD_ID`
)

// DiffCmd represents the diff command.
var DiffCmd = &cobra.Command{
	Use:                   "diff [--json] [--fail-on SEVERITY] BASE_ID HEAD_ID",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleDiffUsage,
	Short:                 "Compare the findings of two stored analyses",
	Args:                  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiff(diffOptions, args[0], args[1], cmd.OutOrStdout())
	},
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runDiff(options RunOptionsDiff, baseID, headID string, w io.Writer) error {
	var failOn perf.Severity
	if options.FailOn != "" {
		sev, err := baseline.ParseSeverity(options.FailOn)
		if err != nil {
			return perrors.NewCommandError(options, fmt.Errorf("invalid --fail-on: %w", err), perrors.ExitInvalidUse)
		}
		failOn = sev
	}

	svc, err := internalcmd.BuildService(AppConfig, nil, logger)
	if err != nil {
		return perrors.NewCommandError(options, err, perrors.ExitFailure)
	}
	base, err := load(svc, baseID)
	if err != nil {
		return perrors.NewCommandError(options, err, exitCodeFor(err))
	}
	head, err := load(svc, headID)
	if err != nil {
		return perrors.NewCommandError(options, err, exitCodeFor(err))
	}

	out := Output{
		Base: base.Summary(),
		Head: head.Summary(),
		Diff: baseline.Compare(base.Result, head.Result),
	}
	out.ScoreDiff = out.Head.Score - out.Base.Score
	logger.Debug("analyses compared", "base", baseID, "head", headID,
		"new", len(out.New), "fixed", len(out.Fixed), "unchanged", len(out.Unchanged))

	if options.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return perrors.NewCommandError(options, err, perrors.ExitFailure)
		}
	} else {
		printDiff(w, out)
	}

	if failOn != "" && out.HasRegressions(failOn) {
		return perrors.NewCommandError(out, fmt.Errorf("new findings of severity %s or higher", failOn), perrors.ExitBelowScore)
	}
	return nil
}

func load(svc *orchestrator.Service, id string) (*orchestrator.Analysis, error) {
	a, err := svc.Get(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis %s: %w", id, err)
	}
	return a, nil
}

func exitCodeFor(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return perrors.ExitInvalidUse
	}
	return perrors.ExitFailure
}

func printDiff(w io.Writer, out Output) {
	fmt.Fprintf(w, "Base: %s (score %d)\n", out.Base.Target.Title, out.Base.Score)
	fmt.Fprintf(w, "Head: %s (score %d, %+d)\n\n", out.Head.Target.Title, out.Head.Score, out.ScoreDiff)

	added := color.New(color.FgRed)
	fixed := color.New(color.FgGreen)
	for _, f := range out.New {
		added.Fprintf(w, "+ %s\n", line(f))
	}
	for _, f := range out.Fixed {
		fixed.Fprintf(w, "- %s\n", line(f))
	}
	fmt.Fprintf(w, "\n%d new, %d fixed, %d unchanged\n", len(out.New), len(out.Fixed), len(out.Unchanged))
}

func line(f report.Finding) string {
	return fmt.Sprintf("[%s] %s %s:%d %s", f.Severity, f.RuleID(), f.Location.File, f.Location.StartLine, f.Title)
}

func init() {
	DiffCmd.Flags().BoolVar(&diffOptions.JSON, "json", false, "Print the comparison as JSON.")
	DiffCmd.Flags().StringVar(&diffOptions.FailOn, "fail-on", "", "Exit with code 3 when the head analysis adds findings of this severity or higher: low, medium, high, critical.")
	DiffCmd.Flags().BoolP("help", "h", false, "Show help for the diff command.")
}
