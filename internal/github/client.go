package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v47/github"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/scan-io-git/perfscan/internal/config"
	"github.com/scan-io-git/perfscan/internal/httpclient"
	perrors "github.com/scan-io-git/perfscan/pkg/shared/errors"
	"github.com/scan-io-git/perfscan/pkg/shared/files"
)

const serviceName = "github"

// Options tunes the client limits. Zero values fall back to the config defaults.
type Options struct {
	Token             string
	BaseURL           string
	RequestsPerSecond float64
	Burst             int
	Concurrency       int
	MaxFiles          int
	MaxFileSize       int64
}

// OptionsFromConfig maps the github section to Options.
func OptionsFromConfig(cfg *config.Config) Options {
	gh := cfg.GitHub
	return Options{
		Token:             gh.Token,
		BaseURL:           gh.BaseURL,
		RequestsPerSecond: gh.RequestsPerSecond,
		Burst:             gh.Burst,
		Concurrency:       gh.Concurrency,
		MaxFiles:          gh.MaxFiles,
		MaxFileSize:       gh.MaxFileSize,
	}
}

// Snapshot is the set of files fetched for one GitHub target.
type Snapshot struct {
	Owner     string
	Repo      string
	Ref       string // commit SHA or branch the files were read at
	Title     string
	Files     []files.Source
	Skipped   int  // files dropped by filters or size limits
	Truncated bool // MaxFiles was reached or GitHub truncated the tree
}

// Client reads pull requests, issues and repository trees through the GitHub REST API.
// Every API call waits on a shared rate limiter.
type Client struct {
	gh          *github.Client
	limiter     *rate.Limiter
	logger      hclog.Logger
	concurrency int
	maxFiles    int
	maxFileSize int64
}

// New creates a Client from the global configuration.
func New(cfg *config.Config, logger hclog.Logger) (*Client, error) {
	hc, err := httpclient.NewHTTPClient(cfg)
	if err != nil {
		return nil, err
	}
	opts := OptionsFromConfig(cfg)
	if opts.Token == "" {
		logger.Warn("no GitHub token configured, requests are unauthenticated and heavily rate limited")
	}
	return NewWithHTTPClient(hc, opts, logger)
}

// NewWithHTTPClient creates a Client on top of hc. A token wraps hc in an oauth2 transport.
func NewWithHTTPClient(hc *http.Client, opts Options, logger hclog.Logger) (*Client, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	defaults := config.Default().GitHub

	if opts.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, hc)
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}))
	}

	var gh *github.Client
	if opts.BaseURL != "" {
		base := strings.TrimSuffix(opts.BaseURL, "/") + "/"
		var err error
		gh, err = github.NewEnterpriseClient(base, base, hc)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL %q: %w", opts.BaseURL, err)
		}
	} else {
		gh = github.NewClient(hc)
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Client{
		gh:          gh,
		limiter:     rate.NewLimiter(limit, config.SetThen(opts.Burst, defaults.Burst)),
		logger:      logger.Named("github"),
		concurrency: config.SetThen(opts.Concurrency, defaults.Concurrency),
		maxFiles:    config.SetThen(opts.MaxFiles, defaults.MaxFiles),
		maxFileSize: config.SetThen(opts.MaxFileSize, defaults.MaxFileSize),
	}, nil
}

// Host returns the web host of the API the client talks to.
func (c *Client) Host() string {
	host := c.gh.BaseURL.Hostname()
	if host == "api.github.com" {
		return "github.com"
	}
	return host
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// upstream wraps a go-github error with the HTTP status when one was received.
func upstream(op string, resp *github.Response, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		status = ghErr.Response.StatusCode
	}
	return fmt.Errorf("%s: %w", op, perrors.NewUpstreamError(serviceName, status, err))
}
