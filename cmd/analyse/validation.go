package analyse

import (
	"fmt"
	"os"

	"github.com/scan-io-git/perfscan/internal/baseline"
	internalcmd "github.com/scan-io-git/perfscan/internal/cmd"
	"github.com/scan-io-git/perfscan/internal/report"
)

// validateAnalyseArgs validates the arguments provided to the analyse command.
func validateAnalyseArgs(options *RunOptionsAnalyse, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("only one target can be analysed at a time, got %d", len(args))
	}
	if _, err := report.ParseFormat(options.Format); err != nil {
		return err
	}
	if options.FailUnder < -1 || options.FailUnder > 100 {
		return fmt.Errorf("the 'fail-under' flag must be between 0 and 100: %d", options.FailUnder)
	}
	if options.MaxFindings < 0 {
		return fmt.Errorf("the 'max-findings' flag cannot be negative: %d", options.MaxFindings)
	}
	if options.FailOnNew != "" {
		if options.Baseline == "" {
			return fmt.Errorf("the 'fail-on-new' flag requires 'baseline'")
		}
		if _, err := baseline.ParseSeverity(options.FailOnNew); err != nil {
			return fmt.Errorf("the 'fail-on-new' flag is invalid: %w", err)
		}
	}

	if len(args) == 1 && !internalcmd.LooksLikeURL(args[0]) {
		if _, err := os.Stat(args[0]); os.IsNotExist(err) {
			return fmt.Errorf("the target path does not exist: %v", args[0])
		}
	}
	return nil
}
