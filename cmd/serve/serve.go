package serve

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/perfscan/cmd/version"
	internalcmd "github.com/scan-io-git/perfscan/internal/cmd"
	"github.com/scan-io-git/perfscan/internal/config"
	"github.com/scan-io-git/perfscan/internal/httpclient"
	"github.com/scan-io-git/perfscan/internal/metrics"
	"github.com/scan-io-git/perfscan/internal/server"
	"github.com/scan-io-git/perfscan/internal/slack"
	perrors "github.com/scan-io-git/perfscan/pkg/shared/errors"
)

// RunOptionsServe holds the arguments for the serve command.
type RunOptionsServe struct {
	Addr string
}

var (
	AppConfig         *config.Config
	logger            hclog.Logger
	serveOptions      RunOptionsServe
	exampleServeUsage = `  # Serving the Slack command endpoint and the API on the configured address
  SLACK_SIGNING_SECRET=... GITHUB_TOKEN=... perfscan serve

  # Serving on a specific address
  perfscan serve --addr 127.0.0.1:9090`
)

// ServeCmd represents the serve command.
var ServeCmd = &cobra.Command{
	Use:                   "serve [--addr HOST:PORT]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleServeUsage,
	Short:                 "Run the HTTP server for Slack slash commands and the analysis API",
	Long: `Run the HTTP server. It exposes:

  POST /slack/commands          Slack slash command endpoint
  POST /api/v1/analyses         analyse a GitHub URL
  GET  /api/v1/analyses         list stored analyses
  GET  /api/v1/analyses/{id}    fetch a stored analysis
  GET  /healthz                 health check
  GET  /metrics                 Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: runServeCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	if serveOptions.Addr != "" {
		if err := config.ValidateServerConfig(&config.Server{Addr: serveOptions.Addr}); err != nil {
			return perrors.NewCommandError(serveOptions, fmt.Errorf("invalid serve arguments: %w", err), perrors.ExitInvalidUse)
		}
		AppConfig.Server.Addr = serveOptions.Addr
	}

	m := metrics.New()
	svc, err := internalcmd.BuildService(AppConfig, m, logger)
	if err != nil {
		logger.Error("failed to initialise analysis", "error", err)
		return perrors.NewCommandError(serveOptions, err, perrors.ExitFailure)
	}

	if AppConfig.Slack.SigningSecret == "" {
		logger.Warn("slack signing secret is not set, slash commands will be rejected")
	}
	responder := slack.NewResponder(httpclient.InitializeRestyClient(logger.Named("slack-http"), AppConfig))
	slackHandler := slack.NewHandler(AppConfig, svc, responder, m, logger)

	srv := server.New(AppConfig, svc, slackHandler, m, logger, version.CoreVersion)
	if err := srv.ListenAndServe(cmd.Context()); err != nil {
		logger.Error("server stopped with an error", "error", err)
		return perrors.NewCommandError(serveOptions, err, perrors.ExitFailure)
	}
	logger.Info("server stopped")
	return nil
}

func init() {
	ServeCmd.Flags().StringVar(&serveOptions.Addr, "addr", "", "Listen address. Overrides server.addr from the config.")
	ServeCmd.Flags().BoolP("help", "h", false, "Show help for the serve command.")
}
