// Package cmd holds wiring shared by the perfscan commands.
package cmd

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"github.com/scan-io-git/perfscan/internal/config"
	"github.com/scan-io-git/perfscan/internal/github"
	"github.com/scan-io-git/perfscan/internal/metrics"
	"github.com/scan-io-git/perfscan/internal/orchestrator"
	"github.com/scan-io-git/perfscan/internal/store"
)

// Mode constants
const (
	ModeURL  = "url"
	ModePath = "path"
	ModeCI   = "ci"
)

// DetermineMode determines how the analyse target is resolved from the arguments.
// Without arguments the target comes from the CI environment.
func DetermineMode(args []string) string {
	if len(args) == 0 {
		return ModeCI
	}
	if LooksLikeURL(args[0]) {
		return ModeURL
	}
	return ModePath
}

// LooksLikeURL reports whether s is meant as a remote URL rather than a local path.
func LooksLikeURL(s string) bool {
	s = strings.TrimSpace(s)
	return strings.Contains(s, "://") || strings.HasPrefix(s, "git@") || strings.HasPrefix(s, "<http")
}

// HasFlags reports whether any flag was set on the command line.
func HasFlags(flags *pflag.FlagSet) bool {
	set := false
	flags.Visit(func(*pflag.Flag) { set = true })
	return set
}

// BuildService wires the GitHub client, the result store and the orchestrator from cfg.
// m and logger may be nil.
func BuildService(cfg *config.Config, m *metrics.Metrics, logger hclog.Logger) (*orchestrator.Service, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	gh, err := github.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	var st *store.Store
	if config.GetBoolValue(cfg, "Storage.Enabled", true) {
		if st, err = store.New(cfg.Storage.ResultsFolder, logger); err != nil {
			return nil, err
		}
	}

	svc, err := orchestrator.New(cfg, orchestrator.Deps{
		Fetcher: gh,
		Store:   st,
		Metrics: m,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis service: %w", err)
	}
	return svc, nil
}
