package list

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	internalcmd "github.com/scan-io-git/perfscan/internal/cmd"
	"github.com/scan-io-git/perfscan/internal/config"
	"github.com/scan-io-git/perfscan/internal/orchestrator"
	perrors "github.com/scan-io-git/perfscan/pkg/shared/errors"
)

// RunOptionsList holds the arguments for the list command.
type RunOptionsList struct {
	JSON  bool
	Limit int
}

// Global variables for configuration and command arguments
var (
	AppConfig        *config.Config
	logger           hclog.Logger
	listOptions      RunOptionsList
	exampleListUsage = `  # List the stored analyses, newest first
  perfscan list

  # List the ten most recent analyses as JSON
  perfscan list --json --limit 10`
)

// ListCmd represents the list command.
var ListCmd = &cobra.Command{
	Use:                   "list [--json] [--limit N]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleListUsage,
	Short:                 "List the analysis results kept in the results folder",
	Args:                  cobra.NoArgs,
	RunE:                  runListCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runListCommand(cmd *cobra.Command, _ []string) error {
	return runList(&listOptions, cmd.OutOrStdout())
}

func runList(options *RunOptionsList, w io.Writer) error {
	if options.Limit < 0 {
		return perrors.NewCommandError(options, fmt.Errorf("the 'limit' flag cannot be negative: %d", options.Limit), perrors.ExitInvalidUse)
	}
	if !config.GetBoolValue(AppConfig, "Storage.Enabled", true) {
		return perrors.NewCommandError(options, fmt.Errorf("result storage is disabled in the config"), perrors.ExitInvalidUse)
	}

	svc, err := internalcmd.BuildService(AppConfig, nil, logger)
	if err != nil {
		return perrors.NewCommandError(options, err, perrors.ExitFailure)
	}
	analyses, err := svc.List()
	if err != nil {
		logger.Error("list command failed", "error", err)
		return perrors.NewCommandError(options, fmt.Errorf("list command failed: %w", err), perrors.ExitFailure)
	}
	if options.Limit > 0 && len(analyses) > options.Limit {
		analyses = analyses[:options.Limit]
	}

	summaries := make([]orchestrator.Summary, 0, len(analyses))
	for _, a := range analyses {
		summaries = append(summaries, a.Summary())
	}

	if options.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}
	if len(summaries) == 0 {
		_, err := fmt.Fprintf(w, "No analyses stored in %s\n", AppConfig.Storage.ResultsFolder)
		return err
	}
	_, err = fmt.Fprintln(w, renderTable(summaries))
	return err
}

// renderTable lays the summaries out as a bordered table.
func renderTable(summaries []orchestrator.Summary) string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.ID,
			s.Timestamp.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(s.Score),
			string(s.Level),
			strconv.Itoa(s.Findings),
			s.Target.Title,
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TIME", "SCORE", "LEVEL", "FINDINGS", "TARGET").
		Rows(rows...).
		String()
}

func init() {
	ListCmd.Flags().BoolVar(&listOptions.JSON, "json", false, "Print the list as JSON.")
	ListCmd.Flags().IntVar(&listOptions.Limit, "limit", 0, "Maximum number of analyses to print. 0 prints all.")
	ListCmd.Flags().BoolP("help", "h", false, "Show help for the list command.")
}
