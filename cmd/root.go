package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/perfscan/cmd/analyse"
	"github.com/scan-io-git/perfscan/cmd/diff"
	"github.com/scan-io-git/perfscan/cmd/list"
	"github.com/scan-io-git/perfscan/cmd/report"
	"github.com/scan-io-git/perfscan/cmd/serve"
	"github.com/scan-io-git/perfscan/cmd/version"
	"github.com/scan-io-git/perfscan/internal/config"
	"github.com/scan-io-git/perfscan/internal/logger"
	perrors "github.com/scan-io-git/perfscan/pkg/shared/errors"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "perfscan [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "Perfscan finds performance problems in source code.",
		Long: `Perfscan analyses GitHub pull requests, issues, repositories and local folders for
performance bottlenecks, algorithmic complexity, memory usage and database access patterns.
It runs as a CLI, in CI pipelines, or as a server answering Slack slash commands.`,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to the config file (default $PERFSCAN_CONFIG or ./config.yml).")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return perrors.NewCommandError(nil, err, perrors.ExitInvalidUse)
	})
	rootCmd.AddCommand(
		analyse.AnalyseCmd,
		serve.ServeCmd,
		list.ListCmd,
		report.ReportCmd,
		diff.DiffCmd,
		version.NewVersionCmd(),
	)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		var cmdErr *perrors.CommandError
		if errors.As(err, &cmdErr) {
			return cmdErr.ExitCode
		}
		return perrors.ExitFailure
	}
	return 0
}

func initConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return perrors.NewCommandError(nil, fmt.Errorf("initializing config failed: %w", err), perrors.ExitInvalidUse)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return perrors.NewCommandError(nil, err, perrors.ExitInvalidUse)
	}
	AppConfig = cfg

	analyse.Init(cfg, logger.NewLogger(cfg, "core-analyse"))
	serve.Init(cfg, logger.NewLogger(cfg, "core-serve"))
	list.Init(cfg, logger.NewLogger(cfg, "core-list"))
	report.Init(cfg, logger.NewLogger(cfg, "core-report"))
	diff.Init(cfg, logger.NewLogger(cfg, "core-diff"))
	return nil
}
