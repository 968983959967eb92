package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	internalcmd "github.com/scan-io-git/perfscan/internal/cmd"
	"github.com/scan-io-git/perfscan/internal/config"
	renderer "github.com/scan-io-git/perfscan/internal/report"
	"github.com/scan-io-git/perfscan/internal/store"
	perrors "github.com/scan-io-git/perfscan/pkg/shared/errors"
)

// RunOptionsReport holds the arguments for the report command.
type RunOptionsReport struct {
	Format      string
	OutputPath  string
	MaxFindings int
}

var (
	AppConfig          *config.Config
	logger             hclog.Logger
	reportOptions      RunOptionsReport
	exampleReportUsage = `  # Print a stored analysis as text
  perfscan report 3f1c2a8e-6d7b-4c1e-9a55-0b8f2d7e4c10

  # Convert a stored analysis to SARIF
  perfscan report --format sarif --output ./reports 3f1c2a8e-6d7b-4c1e-9a55-0b8f2d7e4c10`
)

// ReportCmd represents the report command.
var ReportCmd = &cobra.Command{
	Use:                   "report [--format/-f FORMAT] [--output/-o PATH] ID",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleReportUsage,
	Short:                 "Render a stored analysis result in another format",
	Args:                  cobra.ExactArgs(1),
	RunE:                  runReportCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runReportCommand(cmd *cobra.Command, args []string) error {
	format, err := renderer.ParseFormat(reportOptions.Format)
	if err != nil {
		return perrors.NewCommandError(reportOptions, err, perrors.ExitInvalidUse)
	}

	svc, err := internalcmd.BuildService(AppConfig, nil, logger)
	if err != nil {
		return perrors.NewCommandError(reportOptions, err, perrors.ExitFailure)
	}
	a, err := svc.Get(args[0])
	if err != nil {
		code := perrors.ExitFailure
		if errors.Is(err, store.ErrNotFound) {
			code = perrors.ExitInvalidUse
		}
		return perrors.NewCommandError(reportOptions, fmt.Errorf("failed to load analysis %s: %w", args[0], err), code)
	}

	opts := renderer.Options{MaxFindings: reportOptions.MaxFindings}
	if reportOptions.OutputPath == "" {
		return renderer.Write(cmd.OutOrStdout(), format, a, opts)
	}

	path, err := renderer.WriteFile(reportOptions.OutputPath, format, a, opts)
	if err != nil {
		return perrors.NewCommandError(reportOptions, fmt.Errorf("failed to write report: %w", err), perrors.ExitFailure)
	}
	logger.Info("report saved to file", "path", path)
	return nil
}

func init() {
	ReportCmd.Flags().StringVarP(&reportOptions.Format, "format", "f", string(renderer.FormatText), "Report format: "+strings.Join(renderer.Formats(), ", ")+".")
	ReportCmd.Flags().StringVarP(&reportOptions.OutputPath, "output", "o", "", "Path to the output file or directory. Defaults to stdout.")
	ReportCmd.Flags().IntVar(&reportOptions.MaxFindings, "max-findings", 0, "Maximum number of findings in the text report. 0 prints all.")
	ReportCmd.Flags().BoolP("help", "h", false, "Show help for the report command.")
}
