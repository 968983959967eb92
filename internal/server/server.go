package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/perfscan/internal/config"
	"github.com/scan-io-git/perfscan/internal/metrics"
	"github.com/scan-io-git/perfscan/internal/orchestrator"
	"github.com/scan-io-git/perfscan/internal/slack"
	"github.com/scan-io-git/perfscan/internal/store"
	perrors "github.com/scan-io-git/perfscan/pkg/shared/errors"
)

// Service is the part of the orchestrator the API needs.
type Service interface {
	AnalyzeURL(ctx context.Context, rawURL string, opts orchestrator.Options) (*orchestrator.Analysis, error)
	Get(id string) (*orchestrator.Analysis, error)
	List() ([]*orchestrator.Analysis, error)
}

// Server exposes the health check, the Slack command endpoint and the analysis API.
type Server struct {
	cfg     config.Server
	service Service
	slack   *slack.Handler
	metrics *metrics.Metrics
	logger  hclog.Logger
	version string

	router *mux.Router
	http   *http.Server
}

// New wires the routes. slackHandler and m may be nil.
func New(cfg *config.Config, service Service, slackHandler *slack.Handler, m *metrics.Metrics, logger hclog.Logger, version string) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	def := config.Default().Server
	s := &Server{
		cfg: config.Server{
			Addr:            config.SetThen(cfg.Server.Addr, def.Addr),
			ReadTimeout:     config.SetThen(cfg.Server.ReadTimeout, def.ReadTimeout),
			WriteTimeout:    config.SetThen(cfg.Server.WriteTimeout, def.WriteTimeout),
			ShutdownTimeout: config.SetThen(cfg.Server.ShutdownTimeout, def.ShutdownTimeout),
			AnalysisTimeout: config.SetThen(cfg.Server.AnalysisTimeout, def.AnalysisTimeout),
		},
		service: service,
		slack:   slackHandler,
		logger:  logger.Named("server"),
		version: version,
	}
	if config.GetBoolValue(cfg, "Server.EnableMetrics", true) {
		s.metrics = m
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.Use(s.metrics.Middleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
	if s.slack != nil {
		r.Handle("/slack/commands", s.slack).Methods(http.MethodPost)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/analyses", s.handleCreateAnalysis).Methods(http.MethodPost)
	api.HandleFunc("/analyses", s.handleListAnalyses).Methods(http.MethodGet)
	api.HandleFunc("/analyses/{id}", s.handleGetAnalysis).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, errors.New("not found"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
	})
	return r
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully:
// in-flight requests and background Slack jobs get ShutdownTimeout to finish.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.http = &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       2 * s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String(), "version", s.version)
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if s.slack != nil {
		if err := s.slack.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("slack jobs: %w", err))
		}
	}
	<-errCh
	return errors.Join(errs...)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request served", "method", r.Method, "path", r.URL.Path, "duration", time.Since(started))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

type createRequest struct {
	URL     string               `json:"url"`
	Options orchestrator.Options `json:"options"`
}

func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, errors.New("url is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.AnalysisTimeout)
	defer cancel()

	a, err := s.service.AnalyzeURL(ctx, req.URL, req.Options)
	if err != nil {
		s.logger.Warn("analysis request failed", "url", req.URL, "error", err)
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := s.service.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, _ *http.Request) {
	list, err := s.service.List()
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	out := make([]orchestrator.Summary, 0, len(list))
	for _, a := range list {
		out = append(out, a.Summary())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"analyses": out})
}

// StatusFor maps an orchestrator error to an HTTP status.
func StatusFor(err error) int {
	var (
		unsupported *perrors.UnsupportedTargetError
		upstream    *perrors.UpstreamError
	)
	switch {
	case errors.As(err, &unsupported), errors.Is(err, orchestrator.ErrInvalidOption):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &upstream):
		if upstream.StatusCode == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
