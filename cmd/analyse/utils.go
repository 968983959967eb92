package analyse

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/scan-io-git/perfscan/internal/baseline"
	"github.com/scan-io-git/perfscan/internal/ci"
	internalcmd "github.com/scan-io-git/perfscan/internal/cmd"
	"github.com/scan-io-git/perfscan/internal/config"
	"github.com/scan-io-git/perfscan/internal/orchestrator"
	"github.com/scan-io-git/perfscan/internal/report"
	"github.com/scan-io-git/perfscan/internal/store"
	perrors "github.com/scan-io-git/perfscan/pkg/shared/errors"
	"github.com/scan-io-git/perfscan/pkg/shared/files"
)

// prepareTarget returns the URL or path to analyse for the given mode.
func prepareTarget(mode string, args []string) (string, error) {
	switch mode {
	case internalcmd.ModeURL, internalcmd.ModePath:
		return args[0], nil
	case internalcmd.ModeCI:
		target, err := ci.DefaultTarget()
		if err != nil {
			return "", fmt.Errorf("no target given and none found in the CI environment: %w", err)
		}
		logger.Info("target resolved from CI environment", "target", target)
		return target, nil
	default:
		return "", fmt.Errorf("invalid analysing mode: %s", mode)
	}
}

func analysisOptions(options *RunOptionsAnalyse) orchestrator.Options {
	return orchestrator.Options{
		Skip:    orchestrator.SplitList(options.Skip...),
		Only:    orchestrator.SplitList(options.Only...),
		NoCache: options.NoCache,
	}
}

// analyseTarget runs the orchestrator on a URL or on the files under a local path.
func analyseTarget(ctx context.Context, svc *orchestrator.Service, mode, target string, options *RunOptionsAnalyse) (*orchestrator.Analysis, error) {
	opts := analysisOptions(options)
	if mode != internalcmd.ModePath {
		return svc.AnalyzeURL(ctx, target, opts)
	}

	maxSize := config.SetThen(AppConfig.GitHub.MaxFileSize, config.Default().GitHub.MaxFileSize)
	sources, err := files.LoadSources(target, svc.Matcher(), maxSize)
	if err != nil {
		return nil, perrors.NewUnsupportedTargetError(target, err.Error())
	}
	if len(sources) == 0 {
		logger.Warn("no files matched the analysis filters", "path", target)
	}
	return svc.AnalyzeFiles(ctx, target, sources, opts)
}

// writeReport renders the report to stdout, or to a file when an output path is set.
// It returns the written file path.
func writeReport(a *orchestrator.Analysis, options *RunOptionsAnalyse, stdout io.Writer) (string, error) {
	format, err := report.ParseFormat(options.Format)
	if err != nil {
		return "", err
	}
	ropts := report.Options{MaxFindings: options.MaxFindings}
	if options.OutputPath == "" {
		return "", report.Write(stdout, format, a, ropts)
	}
	return report.WriteFile(options.OutputPath, format, a, ropts)
}

// checkScore enforces --fail-under. A negative threshold disables the gate.
func checkScore(a *orchestrator.Analysis, failUnder int) error {
	if failUnder < 0 || a.Result.OverallPerformanceScore >= failUnder {
		return nil
	}
	err := fmt.Errorf("performance score %d is below the required %d", a.Result.OverallPerformanceScore, failUnder)
	logger.Warn("score gate failed", "score", a.Result.OverallPerformanceScore, "fail_under", failUnder)
	return perrors.NewCommandError(a, err, perrors.ExitBelowScore)
}

// checkBaseline compares a against the --baseline analysis and enforces --fail-on-new.
func checkBaseline(svc *orchestrator.Service, a *orchestrator.Analysis, options *RunOptionsAnalyse) error {
	if options.Baseline == "" {
		return nil
	}
	base, err := svc.Get(options.Baseline)
	if err != nil {
		code := perrors.ExitFailure
		if errors.Is(err, store.ErrNotFound) {
			code = perrors.ExitInvalidUse
		}
		return perrors.NewCommandError(a, fmt.Errorf("failed to load baseline %s: %w", options.Baseline, err), code)
	}

	d := baseline.Compare(base.Result, a.Result)
	logger.Info("compared with baseline", "baseline", options.Baseline,
		"new", len(d.New), "fixed", len(d.Fixed), "unchanged", len(d.Unchanged))
	if options.FailOnNew == "" {
		return nil
	}

	// validateAnalyseArgs has already rejected unknown names.
	sev, _ := baseline.ParseSeverity(options.FailOnNew)
	if !d.HasRegressions(sev) {
		return nil
	}
	logger.Warn("baseline gate failed", "fail_on_new", sev, "new", len(d.New))
	return perrors.NewCommandError(d, fmt.Errorf("%d new findings since %s, at least one is %s or higher", len(d.New), options.Baseline, sev), perrors.ExitBelowScore)
}

// exitCodeFor separates bad input from runtime failures.
func exitCodeFor(err error) int {
	var unsupported *perrors.UnsupportedTargetError
	if errors.As(err, &unsupported) || errors.Is(err, orchestrator.ErrInvalidOption) {
		return perrors.ExitInvalidUse
	}
	return perrors.ExitFailure
}
