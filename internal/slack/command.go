package slack

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/scan-io-git/perfscan/internal/orchestrator"
)

// Command is the parsed text of a slash command.
type Command struct {
	URL     string
	Options orchestrator.Options
	Help    bool
}

// ErrUsage wraps every command text error.
var ErrUsage = errors.New("invalid command")

func newFlagSet() (*pflag.FlagSet, *[]string, *[]string, *bool, *bool) {
	fs := pflag.NewFlagSet("perfscan", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	skip := fs.StringSlice("skip", nil, "analyzers to skip: "+strings.Join(orchestrator.AnalyzerNames(), ", "))
	only := fs.StringSlice("only", nil, "run only these analyzers")
	noCache := fs.Bool("no-cache", false, "ignore cached results")
	help := fs.BoolP("help", "h", false, "show usage")
	return fs, skip, only, noCache, help
}

// ParseCommandText parses "<url> [--skip a,b] [--only a,b] [--no-cache]" or "help".
func ParseCommandText(text string) (*Command, error) {
	args := strings.Fields(normalizeDashes(text))
	if len(args) == 0 || (len(args) == 1 && strings.EqualFold(args[0], "help")) {
		return &Command{Help: true}, nil
	}

	fs, skip, only, noCache, help := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if *help {
		return &Command{Help: true}, nil
	}
	if fs.NArg() != 1 {
		return nil, fmt.Errorf("%w: expected exactly one URL, got %d arguments", ErrUsage, fs.NArg())
	}

	return &Command{
		URL: fs.Arg(0),
		Options: orchestrator.Options{
			Skip:    orchestrator.SplitList(*skip...),
			Only:    orchestrator.SplitList(*only...),
			NoCache: *noCache,
		},
	}, nil
}

// Usage returns the flag help of the command.
func Usage() string {
	fs, _, _, _, _ := newFlagSet()
	return fs.FlagUsages()
}

// normalizeDashes undoes the Slack client's "smart" dash substitution of "--".
func normalizeDashes(s string) string {
	return strings.NewReplacer("—", "--", "–", "--").Replace(s)
}
