package slack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/slack-go/slack"

	"github.com/scan-io-git/perfscan/internal/config"
	"github.com/scan-io-git/perfscan/internal/metrics"
	"github.com/scan-io-git/perfscan/internal/orchestrator"
	"github.com/scan-io-git/perfscan/pkg/shared/vcsurl"
)

// Analyzer is the part of the orchestrator the Slack handler needs.
type Analyzer interface {
	ParseURL(rawURL string) (*vcsurl.VCSURL, error)
	AnalyzeURL(ctx context.Context, rawURL string, opts orchestrator.Options) (*orchestrator.Analysis, error)
}

// Handler serves slash commands. Each accepted command is acknowledged immediately
// and analysed in a background job whose report is posted to the response_url.
type Handler struct {
	secret          string
	command         string
	maxFindings     int
	analysisTimeout time.Duration
	responseTimeout time.Duration

	analyzer  Analyzer
	responder Responder
	metrics   *metrics.Metrics
	logger    hclog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	jobs   sync.WaitGroup
}

// NewHandler creates a Handler from the slack and server sections of cfg.
func NewHandler(cfg *config.Config, analyzer Analyzer, responder Responder, m *metrics.Metrics, logger hclog.Logger) *Handler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	def := config.Default()
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handler{
		secret:          cfg.Slack.SigningSecret,
		command:         config.SetThen(cfg.Slack.CommandName, def.Slack.CommandName),
		maxFindings:     config.SetThen(cfg.Slack.MaxFindings, def.Slack.MaxFindings),
		analysisTimeout: config.SetThen(cfg.Server.AnalysisTimeout, def.Server.AnalysisTimeout),
		responseTimeout: config.SetThen(cfg.Slack.ResponseTimeout, def.Slack.ResponseTimeout),
		analyzer:        analyzer,
		responder:       responder,
		metrics:         m,
		logger:          logger.Named("slack"),
		ctx:             ctx,
		cancel:          cancel,
	}
	if h.secret == "" {
		h.logger.Warn("slack signing secret is not configured, slash commands will be rejected")
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		http.Error(w, "slack integration is not configured", http.StatusServiceUnavailable)
		return
	}

	sc, err := VerifyRequest(r, h.secret)
	if errors.Is(err, ErrUnauthorized) {
		h.logger.Warn("rejected slash command", "remote", r.RemoteAddr, "error", err)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd, err := ParseCommandText(sc.Text)
	if err != nil {
		writeMsg(w, ErrorMessage("", err))
		return
	}
	if cmd.Help {
		writeMsg(w, HelpMessage(h.commandName(sc)))
		return
	}
	if _, err := h.analyzer.ParseURL(cmd.URL); err != nil {
		writeMsg(w, ErrorMessage(cmd.URL, err))
		return
	}
	if sc.ResponseURL == "" {
		writeMsg(w, ErrorMessage(cmd.URL, errors.New("the request has no response_url")))
		return
	}

	h.logger.Info("slash command accepted", "user", sc.UserID, "team", sc.TeamID, "channel", sc.ChannelID, "url", cmd.URL)
	h.jobs.Add(1)
	h.metrics.JobStarted()
	go h.run(sc, cmd)

	writeMsg(w, AckMessage(cmd.URL))
}

func (h *Handler) commandName(sc slack.SlashCommand) string {
	if sc.Command != "" {
		return sc.Command
	}
	return h.command
}

// run analyses cmd.URL and posts the outcome. It always replies, also on failure.
func (h *Handler) run(sc slack.SlashCommand, cmd *Command) {
	defer h.jobs.Done()
	defer h.metrics.JobFinished()

	ctx, cancel := context.WithTimeout(h.ctx, h.analysisTimeout)
	defer cancel()

	var msg *slack.Msg
	a, err := h.analyzer.AnalyzeURL(ctx, cmd.URL, cmd.Options)
	if err != nil {
		h.logger.Error("slash command analysis failed", "url", cmd.URL, "user", sc.UserID, "error", err)
		msg = ErrorMessage(cmd.URL, err)
	} else {
		msg = ReportMessage(a, h.maxFindings)
	}

	rctx, rcancel := context.WithTimeout(context.Background(), h.responseTimeout)
	defer rcancel()
	if err := h.responder.Respond(rctx, sc.ResponseURL, msg); err != nil {
		h.logger.Error("failed to deliver slash command response", "url", cmd.URL, "error", err)
	}
}

// Shutdown waits for running jobs. When ctx ends first the jobs are cancelled,
// still get to post their failure, and ctx's error is returned.
func (h *Handler) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.jobs.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.cancel()
		return nil
	case <-ctx.Done():
		h.cancel()
		<-done
		return ctx.Err()
	}
}

func writeMsg(w http.ResponseWriter, msg *slack.Msg) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(msg)
}
