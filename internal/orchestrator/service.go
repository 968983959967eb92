package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/perfscan/internal/cache"
	"github.com/scan-io-git/perfscan/internal/config"
	"github.com/scan-io-git/perfscan/internal/github"
	"github.com/scan-io-git/perfscan/internal/metrics"
	"github.com/scan-io-git/perfscan/internal/perf"
	"github.com/scan-io-git/perfscan/internal/store"
	perrors "github.com/scan-io-git/perfscan/pkg/shared/errors"
	"github.com/scan-io-git/perfscan/pkg/shared/files"
	"github.com/scan-io-git/perfscan/pkg/shared/vcsurl"
)

// Fetcher reads source files of GitHub targets. *github.Client implements it.
type Fetcher interface {
	Host() string
	PullRequestFiles(ctx context.Context, owner, repo string, number int, m *files.Matcher) (*github.Snapshot, error)
	IssueFiles(ctx context.Context, owner, repo string, number int, m *files.Matcher) (*github.Snapshot, error)
	RepositoryFiles(ctx context.Context, owner, repo, ref, dir string, m *files.Matcher) (*github.Snapshot, error)
	File(ctx context.Context, owner, repo, ref, filePath string) (*github.Snapshot, error)
}

// Deps are the optional collaborators of a Service. Nil members disable the feature.
type Deps struct {
	Fetcher Fetcher
	Store   *store.Store
	Metrics *metrics.Metrics
	Logger  hclog.Logger
}

// Service turns URLs and local files into stored analysis results.
type Service struct {
	fetcher    Fetcher
	analyzer   *perf.Analyzer
	cache      *cache.TTL[*Analysis]
	store      *store.Store
	metrics    *metrics.Metrics
	matcher    *files.Matcher
	skip       []string
	thresholds perf.PerformanceThresholds
	logger     hclog.Logger
}

// New builds a Service from the analysis, cache and github sections of cfg.
func New(cfg *config.Config, deps Deps) (*Service, error) {
	logger := deps.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	m, err := files.NewMatcher(cfg.Analysis.Include, cfg.Analysis.Exclude)
	if err != nil {
		return nil, fmt.Errorf("analysis filters: %w", err)
	}
	if _, err := resolve(cfg.Analysis.Skip, Options{}); err != nil {
		return nil, fmt.Errorf("analysis skip list: %w", err)
	}

	s := &Service{
		fetcher:    deps.Fetcher,
		analyzer:   perf.NewAnalyzer(logger.Named("perf")),
		store:      deps.Store,
		metrics:    deps.Metrics,
		matcher:    m,
		skip:       cfg.Analysis.Skip,
		thresholds: thresholdsFromConfig(cfg.Analysis),
		logger:     logger.Named("orchestrator"),
	}
	if config.GetBoolValue(cfg, "Cache.Enabled", true) {
		s.cache = cache.New[*Analysis](cfg.Cache.TTL, cfg.Cache.MaxEntries)
	}
	return s, nil
}

func thresholdsFromConfig(a config.Analysis) perf.PerformanceThresholds {
	def := perf.DefaultThresholds()
	return perf.PerformanceThresholds{
		MaxExecutionTime: config.SetThen(a.MaxExecutionTime, def.MaxExecutionTime),
		MaxMemoryMB:      config.SetThen(a.MaxMemoryMB, def.MaxMemoryMB),
		MaxDBQueryTime:   config.SetThen(a.MaxDBQueryTime, def.MaxDBQueryTime),
		MaxComplexity:    config.SetThen(a.MaxComplexity, def.MaxComplexity),
	}
}

// Matcher returns the include and exclude filters of the service.
func (s *Service) Matcher() *files.Matcher {
	return s.matcher
}

// ParseURL resolves rawURL to a supported GitHub target.
func (s *Service) ParseURL(rawURL string) (*vcsurl.VCSURL, error) {
	var hosts []string
	if s.fetcher != nil {
		hosts = append(hosts, s.fetcher.Host())
	}
	u, err := vcsurl.Parse(rawURL, hosts...)
	if err != nil {
		return nil, perrors.NewUnsupportedTargetError(rawURL, err.Error())
	}
	return u, nil
}

// AnalyzeURL fetches the files rawURL points at and analyses them.
func (s *Service) AnalyzeURL(ctx context.Context, rawURL string, opts Options) (*Analysis, error) {
	aopts, err := resolve(s.skip, opts)
	if err != nil {
		return nil, err
	}
	u, err := s.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	if s.fetcher == nil {
		return nil, perrors.NewUnsupportedTargetError(rawURL, "GitHub access is not configured")
	}

	started := time.Now()
	s.logger.Info("fetching target", "url", u.Raw, "kind", u.Kind, "repo", u.FullName())

	snap, err := s.fetch(ctx, u)
	if err != nil {
		s.metrics.ObserveAnalysis(u.Kind.String(), "error", time.Since(started), -1, nil)
		return nil, err
	}

	target := Target{
		Raw:    u.Raw,
		Source: u.Kind.String(),
		Host:   u.Host,
		Owner:  snap.Owner,
		Repo:   snap.Repo,
		Ref:    snap.Ref,
		Title:  snap.Title,
	}
	a, err := s.analyze(ctx, target, snap.Files, aopts, opts.NoCache, started)
	if err != nil {
		return nil, err
	}
	a.Skipped = snap.Skipped
	a.Truncated = snap.Truncated
	return a, nil
}

// AnalyzeFiles analyses sources that were read locally. name identifies the target in reports.
func (s *Service) AnalyzeFiles(ctx context.Context, name string, sources []files.Source, opts Options) (*Analysis, error) {
	aopts, err := resolve(s.skip, opts)
	if err != nil {
		return nil, err
	}
	target := Target{Raw: name, Source: SourceLocal, Title: name}
	return s.analyze(ctx, target, sources, aopts, opts.NoCache, time.Now())
}

// Get returns a stored analysis by result id.
func (s *Service) Get(id string) (*Analysis, error) {
	if s.store == nil {
		return nil, store.ErrNotFound
	}
	rec, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return fromRecord(rec), nil
}

// List returns the stored analyses, newest first. Without a store the list is empty.
func (s *Service) List() ([]*Analysis, error) {
	if s.store == nil {
		return nil, nil
	}
	recs, err := s.store.List()
	if err != nil {
		return nil, err
	}
	out := make([]*Analysis, 0, len(recs))
	for _, rec := range recs {
		out = append(out, fromRecord(rec))
	}
	return out, nil
}

func (s *Service) fetch(ctx context.Context, u *vcsurl.VCSURL) (*github.Snapshot, error) {
	switch u.Kind {
	case vcsurl.KindPullRequest:
		return s.fetcher.PullRequestFiles(ctx, u.Namespace, u.Repository, u.Number, s.matcher)
	case vcsurl.KindIssue:
		return s.fetcher.IssueFiles(ctx, u.Namespace, u.Repository, u.Number, s.matcher)
	case vcsurl.KindRepository:
		return s.fetcher.RepositoryFiles(ctx, u.Namespace, u.Repository, "", "", s.matcher)
	case vcsurl.KindTree:
		return s.fetcher.RepositoryFiles(ctx, u.Namespace, u.Repository, u.Ref, u.FilePath, s.matcher)
	case vcsurl.KindBlob:
		return s.fetcher.File(ctx, u.Namespace, u.Repository, u.Ref, u.FilePath)
	default:
		return nil, perrors.NewUnsupportedTargetError(u.Raw, "URL kind "+u.Kind.String()+" cannot be analysed")
	}
}

func (s *Service) analyze(ctx context.Context, target Target, sources []files.Source, aopts perf.AnalysisOptions, noCache bool, started time.Time) (*Analysis, error) {
	key := s.cacheKey(sources, aopts)
	if s.cache != nil && !noCache {
		cached, ok := s.cache.Get(key)
		s.metrics.CacheLookup(ok)
		if ok {
			s.logger.Debug("cache hit", "target", target.Raw, "id", cached.Result.ID)
			hit := *cached
			hit.Target = target
			hit.Cached = true
			return &hit, nil
		}
	}

	perfFiles := make([]perf.SourceFile, 0, len(sources))
	for _, src := range sources {
		perfFiles = append(perfFiles, perf.SourceFile{
			Path:    src.Path,
			Content: string(src.Content),
			Size:    src.Size,
			SHA:     src.SHA,
		})
	}

	result := s.analyzer.AnalyzePerformance(ctx, perf.AnalysisContext{
		Files:      perfFiles,
		Options:    aopts,
		Thresholds: s.thresholds,
	})
	if result.Error != "" {
		s.metrics.ObserveAnalysis(target.Source, "error", time.Since(started), -1, nil)
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analysis of %s interrupted: %w", target.Raw, err)
		}
		return nil, errors.New(result.Error)
	}

	a := &Analysis{Target: target, Result: result}
	s.metrics.ObserveAnalysis(target.Source, "ok", time.Since(started), result.OverallPerformanceScore, a.FindingCounts())
	s.logger.Info("analysis completed",
		"target", target.Raw,
		"id", result.ID,
		"files", result.FilesAnalyzed,
		"findings", result.TotalFindings(),
		"score", result.OverallPerformanceScore,
		"level", result.PerformanceLevel)

	if s.cache != nil {
		s.cache.Set(key, a)
	}
	if s.store != nil {
		if err := s.store.Save(toRecord(a)); err != nil {
			s.logger.Warn("failed to store result", "id", result.ID, "error", err)
		}
	}
	return a, nil
}

// cacheKey identifies a run by the content of its files, the enabled analyzers and the thresholds.
func (s *Service) cacheKey(sources []files.Source, aopts perf.AnalysisOptions) uint64 {
	parts := enabledNames(aopts)
	t := s.thresholds
	parts = append(parts,
		t.MaxComplexity,
		t.MaxExecutionTime.String(),
		t.MaxDBQueryTime.String(),
		strconv.FormatFloat(t.MaxMemoryMB, 'f', -1, 64))
	for _, src := range sources {
		sha := src.SHA
		if sha == "" {
			sha = files.BlobSHA(src.Content)
		}
		parts = append(parts, src.Path, sha)
	}
	return cache.Key(parts...)
}

func toRecord(a *Analysis) *store.Record {
	return &store.Record{
		Target: a.Target.Raw,
		Source: a.Target.Source,
		Host:   a.Target.Host,
		Owner:  a.Target.Owner,
		Repo:   a.Target.Repo,
		Title:  a.Target.Title,
		Ref:    a.Target.Ref,
		Result: a.Result,
	}
}

func fromRecord(rec *store.Record) *Analysis {
	return &Analysis{
		Target: Target{
			Raw:    rec.Target,
			Source: rec.Source,
			Host:   rec.Host,
			Owner:  rec.Owner,
			Repo:   rec.Repo,
			Ref:    rec.Ref,
			Title:  rec.Title,
		},
		Result: rec.Result,
	}
}
