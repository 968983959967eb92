package analyse

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/perfscan/internal/ci"
	internalcmd "github.com/scan-io-git/perfscan/internal/cmd"
	"github.com/scan-io-git/perfscan/internal/config"
	"github.com/scan-io-git/perfscan/internal/orchestrator"
	"github.com/scan-io-git/perfscan/internal/report"
	perrors "github.com/scan-io-git/perfscan/pkg/shared/errors"
)

// RunOptionsAnalyse holds the arguments for the analyse command.
type RunOptionsAnalyse struct {
	Format      string
	OutputPath  string
	Skip        []string
	Only        []string
	FailUnder   int
	NoCache     bool
	MaxFindings int
	Baseline    string
	FailOnNew   string
}

// Global variables for configuration and command arguments
var (
	AppConfig           *config.Config
	logger              hclog.Logger
	analyseOptions      RunOptionsAnalyse
	exampleAnalyseUsage = `  # Analysing a pull request
  perfscan analyse https://github.com/acme/shop/pull/42

  # Analysing a directory of a repository at a tag and writing SARIF next to other reports
  perfscan analyse --format sarif --output ./reports https://github.com/acme/shop/tree/v2.1.0/src

  # Analysing a local folder with the memory and database analyzers only
  perfscan analyse --only memory,database ./src

  # Failing a CI job when the score drops below 80; the target comes from the GitHub Actions environment
  perfscan analyse --fail-under 80 --format json --output perfscan.json

  # Failing when the analysis adds high or critical findings compared to a stored one
  perfscan analyse --baseline 3f1c2a8e-6d7b-4c1e-9a55-0b8f2d7e4c10 --fail-on-new high ./src`
)

// AnalyseCmd represents the analyse command.
var AnalyseCmd = &cobra.Command{
	Use:                   "analyse [--format/-f FORMAT] [--output/-o PATH] [--skip LIST] [--only LIST] [--fail-under SCORE] [--baseline ID [--fail-on-new SEVERITY]] [--no-cache] [URL | PATH]",
	Aliases:               []string{"analyze"},
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleAnalyseUsage,
	Short:                 "Analyse a GitHub pull request, issue, repository or local path for performance problems",
	Long: `Analyse a GitHub pull request, issue, repository, tree or file, or a local path, for
performance bottlenecks, algorithmic complexity, memory usage and database access patterns.

Without a target the pull request or commit of the current GitHub Actions run is analysed.`,
	RunE: runAnalyseCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

// runAnalyseCommand executes the analyse command.
func runAnalyseCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !internalcmd.HasFlags(cmd.Flags()) && ci.Detect(nil) == ci.KindUnknown {
		return cmd.Help()
	}
	return runAnalyse(cmd.Context(), &analyseOptions, args, cmd.OutOrStdout())
}

func runAnalyse(ctx context.Context, options *RunOptionsAnalyse, args []string, stdout io.Writer) error {
	if err := validateAnalyseArgs(options, args); err != nil {
		logger.Error("invalid analyse arguments", "error", err)
		return perrors.NewCommandError(options, fmt.Errorf("invalid analyse arguments: %w", err), perrors.ExitInvalidUse)
	}

	mode := internalcmd.DetermineMode(args)
	target, err := prepareTarget(mode, args)
	if err != nil {
		logger.Error("failed to prepare analysis target", "error", err)
		return perrors.NewCommandError(options, fmt.Errorf("failed to prepare analysis target: %w", err), perrors.ExitInvalidUse)
	}

	svc, err := internalcmd.BuildService(AppConfig, nil, logger)
	if err != nil {
		logger.Error("failed to initialise analysis", "error", err)
		return perrors.NewCommandError(options, err, exitCodeFor(err))
	}

	sp := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	sp.Suffix = " analysing " + target
	sp.Start()
	a, err := analyseTarget(ctx, svc, mode, target, options)
	sp.Stop()
	if err != nil {
		logger.Error("analyse command failed", "target", target, "error", err)
		return perrors.NewCommandError(options, fmt.Errorf("analyse command failed: %w", err), exitCodeFor(err))
	}

	path, err := writeReport(a, options, stdout)
	if err != nil {
		logger.Error("failed to write report", "error", err)
		return perrors.NewCommandError(a, fmt.Errorf("failed to write report: %w", err), perrors.ExitFailure)
	}
	if path != "" {
		logger.Info("report saved to file", "path", path)
	}

	logger.Info("analyse command completed successfully",
		"id", a.Result.ID,
		"score", a.Result.OverallPerformanceScore,
		"level", a.Result.PerformanceLevel,
		"findings", a.Result.TotalFindings(),
		"cached", a.Cached,
	)
	if err := checkBaseline(svc, a, options); err != nil {
		return err
	}
	return checkScore(a, options.FailUnder)
}

// Initialize flags for the analyse command.
func init() {
	AnalyseCmd.Flags().StringVarP(&analyseOptions.Format, "format", "f", string(report.FormatText), "Report format: "+strings.Join(report.Formats(), ", ")+".")
	AnalyseCmd.Flags().StringVarP(&analyseOptions.OutputPath, "output", "o", "", "Path to the output file or directory for the report. Defaults to stdout.")
	AnalyseCmd.Flags().StringSliceVar(&analyseOptions.Skip, "skip", nil, "Analyzers to skip: "+strings.Join(orchestrator.AnalyzerNames(), ", ")+".")
	AnalyseCmd.Flags().StringSliceVar(&analyseOptions.Only, "only", nil, "Run only these analyzers. Overrides the configured skip list.")
	AnalyseCmd.Flags().IntVar(&analyseOptions.FailUnder, "fail-under", -1, "Exit with code 3 when the overall score is below this value (0-100).")
	AnalyseCmd.Flags().BoolVar(&analyseOptions.NoCache, "no-cache", false, "Ignore cached results and analyse again.")
	AnalyseCmd.Flags().IntVar(&analyseOptions.MaxFindings, "max-findings", 0, "Maximum number of findings in the text report. 0 prints all.")
	AnalyseCmd.Flags().StringVar(&analyseOptions.Baseline, "baseline", "", "ID of a stored analysis to compare the findings against.")
	AnalyseCmd.Flags().StringVar(&analyseOptions.FailOnNew, "fail-on-new", "", "With --baseline, exit with code 3 when new findings of this severity or higher appear.")
	AnalyseCmd.Flags().BoolP("help", "h", false, "Show help for the analyse command.")
}
