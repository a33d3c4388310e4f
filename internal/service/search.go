// Package service implements the business logic for search submission,
// refresh, leads, templates and credentials.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alphaleads/leadsearch/internal/apify"
	"github.com/alphaleads/leadsearch/internal/core"
	"github.com/alphaleads/leadsearch/internal/data"
	domainlead "github.com/alphaleads/leadsearch/internal/domain/lead"
	"github.com/alphaleads/leadsearch/internal/domain/model"
	apperrors "github.com/alphaleads/leadsearch/internal/errors"
)

// DefaultRunTimeout bounds how long a run may stay in flight before a refresh
// fails it without consulting the executor.
const DefaultRunTimeout = 30 * time.Minute

// defaultPollCacheTTL bounds how long a run-status response is reused across
// closely spaced refreshes.
const defaultPollCacheTTL = 5 * time.Second

// ingestGuardTTL covers one full ingestion attempt; the guard key expires on
// its own if the holder dies mid-ingest.
const ingestGuardTTL = 2 * time.Minute

// SearchConfig holds tunables for the search lifecycle.
type SearchConfig struct {
	// RunTimeout is the wall-clock ceiling from started_at; exceeded runs fail.
	RunTimeout time.Duration
	// DefaultToken is the process-wide executor token used when a user has
	// not stored their own.
	DefaultToken string
	// PollCacheTTL is how long executor run-status responses are cached.
	PollCacheTTL time.Duration
}

// SearchServiceOptions groups dependencies for SearchService.
type SearchServiceOptions struct {
	Searches core.SearchRepository // Required: search repository
	Leads    core.LeadRepository   // Required: lead repository
	Profiles core.ProfileRepository
	Executor core.Executor        // Required: executor client
	Cache    core.CacheRepository // Optional: poll cache and ingest guard
	Metrics  core.MetricsSink     // Optional: lifecycle counters
	Logger   *slog.Logger         // Optional: structured logger
	Time     data.TimeProvider    // Optional: defaults to real time
	Config   SearchConfig
}

// SearchService orchestrates the search lifecycle: submission, polling,
// result ingestion and browsing.
type SearchService struct {
	searches core.SearchRepository
	leads    core.LeadRepository
	profiles core.ProfileRepository
	executor core.Executor
	cache    core.CacheRepository
	metrics  core.MetricsSink
	logger   *slog.Logger
	time     data.TimeProvider
	cfg      SearchConfig
}

// NewSearchService constructs a new SearchService.
func NewSearchService(opts SearchServiceOptions) (*SearchService, error) {
	if opts.Searches == nil {
		return nil, errors.New("SearchRepository is required")
	}
	if opts.Leads == nil {
		return nil, errors.New("LeadRepository is required")
	}
	if opts.Executor == nil {
		return nil, errors.New("Executor is required")
	}

	cfg := opts.Config
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = DefaultRunTimeout
	}
	if cfg.PollCacheTTL <= 0 {
		cfg.PollCacheTTL = defaultPollCacheTTL
	}

	tp := opts.Time
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "search_service")
	}

	return &SearchService{
		searches: opts.Searches,
		leads:    opts.Leads,
		profiles: opts.Profiles,
		executor: opts.Executor,
		cache:    opts.Cache,
		metrics:  opts.Metrics,
		logger:   logger,
		time:     tp,
		cfg:      cfg,
	}, nil
}

// MustNewSearchService constructs a new SearchService and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewSearchService(opts SearchServiceOptions) *SearchService {
	svc, err := NewSearchService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create SearchService: %v", err))
	}
	return svc
}

// Start validates the filters, creates the search and launches an executor
// run. The pending row is created before the run starts so a search id exists
// even when credential resolution or the start call fails; on those failures
// the returned error carries the reason and the persisted search reflects the
// failed state.
func (s *SearchService) Start(ctx context.Context, req *model.CreateSearchRequest) (*model.Search, error) {
	if req == nil {
		return nil, apperrors.Validation("create search request is required")
	}
	if !req.Filters.HasCriteria() {
		return nil, apperrors.Validation("at least one filter must be set")
	}
	if strings.TrimSpace(req.Name) == "" {
		name := strings.TrimSpace(req.Filters.FileName)
		if name == "" {
			name = model.SearchName(s.time.Now())
		}
		req.Name = name
	}

	search, err := s.searches.Create(ctx, req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "create search")
	}

	token, err := s.resolveToken(ctx, req.UserID)
	if err != nil || token == "" {
		const msg = "executor API token is not configured"
		s.failSearch(ctx, search.ID, msg)
		return s.reload(ctx, search), apperrors.Credential(msg)
	}

	input := apify.Translate(req.Filters)
	run, err := s.executor.StartRun(ctx, token, input)
	if err != nil {
		msg := startFailureMessage(err)
		s.failSearch(ctx, search.ID, msg)
		if s.metrics != nil {
			s.metrics.Count("search.start_failed", 1, nil)
		}
		return s.reload(ctx, search), apperrors.Wrap(err, apperrors.ErrCodeExecutor, msg)
	}

	started, err := s.searches.MarkRunning(ctx, search.ID, model.RunHandles{
		RunID:     run.ID,
		DatasetID: run.DatasetID,
	})
	if err != nil {
		return s.reload(ctx, search), apperrors.Wrap(err, apperrors.ErrCodeStorage, "mark search running")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "search started",
			"search_id", started.ID,
			"run_id", run.ID,
			"dataset_id", run.DatasetID,
		)
	}
	if s.metrics != nil {
		s.metrics.Count("search.started", 1, nil)
	}
	return started, nil
}

// Refresh re-reads a search and, when it is still in flight, advances it by
// one poll step. Safe to call repeatedly and concurrently; terminal searches
// are returned unchanged without touching the executor.
func (s *SearchService) Refresh(ctx context.Context, id, userID string) (*model.Search, error) {
	search, err := s.searches.GetByIDForUser(ctx, id, userID)
	if errors.Is(err, data.ErrSearchNotFound) {
		return nil, apperrors.NotFound("search not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "get search")
	}

	if search.Status.Terminal() {
		return search, nil
	}
	if search.RunID == nil || search.StartedAt == nil {
		// Submission never reached the executor; nothing to poll.
		return search, nil
	}

	// Timeout is checked before any executor traffic so a hung run cannot
	// keep a search alive past the ceiling.
	if s.time.Now().Sub(*search.StartedAt) > s.cfg.RunTimeout {
		msg := fmt.Sprintf("search exceeded the maximum run time of %s", s.cfg.RunTimeout)
		s.failSearch(ctx, search.ID, msg)
		if s.metrics != nil {
			s.metrics.Count("search.timed_out", 1, nil)
		}
		return s.reload(ctx, search), nil
	}

	token, err := s.resolveToken(ctx, userID)
	if err != nil || token == "" {
		return nil, apperrors.Credential("executor API token is not configured")
	}

	run, ok := s.pollRunStatus(ctx, token, *search.RunID)
	if !ok {
		// Transport failure is transient: leave the persisted state alone and
		// let the next poll retry.
		return search, nil
	}

	switch {
	case run.Status == apify.RunStatusSucceeded:
		return s.ingest(ctx, search, token), nil
	case apify.IsFailedStatus(run.Status):
		msg := run.StatusMessage
		if strings.TrimSpace(msg) == "" {
			msg = "executor run finished with status " + run.Status
		}
		s.failSearch(ctx, search.ID, msg)
		if s.metrics != nil {
			s.metrics.Count("search.failed", 1, map[string]string{"executor_status": run.Status})
		}
		return s.reload(ctx, search), nil
	default:
		// Still in progress.
		return search, nil
	}
}

// ingest fetches the dataset, dedupes it and persists the leads. The terminal
// transition is a conditional update on status=running, so of two concurrent
// refreshes only one wins; the loser discards its items without inserting.
func (s *SearchService) ingest(ctx context.Context, search *model.Search, token string) *model.Search {
	if search.DatasetID == nil {
		s.failSearch(ctx, search.ID, "executor run succeeded but no dataset was recorded")
		return s.reload(ctx, search)
	}

	if s.cache != nil {
		// Best-effort guard against concurrent refreshes downloading the same
		// dataset. Correctness rests on the conditional transition below.
		set, guardErr := s.cache.SetIfNotExists(ctx, "search:ingest:"+search.ID, []byte("1"), ingestGuardTTL)
		if guardErr == nil && !set {
			return search
		}
	}

	items, err := s.executor.DatasetItems(ctx, token, *search.DatasetID)
	if err != nil {
		// Unlike a status poll, a dataset fetch failure after the run
		// succeeded is terminal.
		s.failSearch(ctx, search.ID, "failed to fetch results from the executor dataset")
		return s.reload(ctx, search)
	}

	deduped := domainlead.Deduplicate(items)

	won, err := s.searches.MarkSucceeded(ctx, search.ID, len(deduped))
	if err != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "mark search succeeded failed",
				"search_id", search.ID,
				"error", err,
			)
		}
		return search
	}
	if !won {
		// Another refresh already finished this search.
		return s.reload(ctx, search)
	}

	if len(deduped) > 0 {
		leads := domainlead.ProjectAll(search.ID, deduped)
		inserted, insertErr := s.leads.InsertBatch(ctx, leads)
		if insertErr != nil && s.logger != nil {
			s.logger.ErrorContext(ctx, "lead persistence incomplete",
				"search_id", search.ID,
				"inserted", inserted,
				"expected", len(leads),
				"error", insertErr,
			)
		}
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "search succeeded",
			"search_id", search.ID,
			"raw_items", len(items),
			"leads_count", len(deduped),
		)
	}
	if s.metrics != nil {
		s.metrics.Count("search.succeeded", 1, nil)
		s.metrics.Gauge("search.leads_count", float64(len(deduped)), nil)
		if search.StartedAt != nil {
			s.metrics.Timing("search.run_duration", s.time.Now().Sub(*search.StartedAt), nil)
		}
	}
	return s.reload(ctx, search)
}

// pollRunStatus returns the executor's view of the run, serving closely
// spaced refreshes from the cache. ok is false on transport failure.
func (s *SearchService) pollRunStatus(ctx context.Context, token, runID string) (apify.RunInfo, bool) {
	cacheKey := "search:poll:" + runID

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var run apify.RunInfo
			if json.Unmarshal(cached, &run) == nil {
				return run, true
			}
		}
	}

	run, err := s.executor.RunStatus(ctx, token, runID)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "executor status poll failed",
				"run_id", runID,
				"error", err,
			)
		}
		return apify.RunInfo{}, false
	}

	if s.cache != nil {
		if encoded, encErr := json.Marshal(run); encErr == nil {
			_ = s.cache.Set(ctx, cacheKey, encoded, s.cfg.PollCacheTTL)
		}
	}
	return run, true
}

// Get returns a search owned by the user without polling the executor.
func (s *SearchService) Get(ctx context.Context, id, userID string) (*model.Search, error) {
	search, err := s.searches.GetByIDForUser(ctx, id, userID)
	if errors.Is(err, data.ErrSearchNotFound) {
		return nil, apperrors.NotFound("search not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "get search")
	}
	return search, nil
}

// ListByUser returns the user's searches, newest first.
func (s *SearchService) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.Search, error) {
	searches, err := s.searches.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "list searches")
	}
	return searches, nil
}

// Stats returns per-status counts of the user's searches.
func (s *SearchService) Stats(ctx context.Context, userID string) (*model.SearchStats, error) {
	stats, err := s.searches.StatsByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "search stats")
	}
	return stats, nil
}

// Delete removes a search and its leads.
func (s *SearchService) Delete(ctx context.Context, id, userID string) error {
	err := s.searches.Delete(ctx, id, userID)
	if errors.Is(err, data.ErrSearchNotFound) {
		return apperrors.NotFound("search not found")
	}
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "delete search")
	}
	return nil
}

// resolveToken prefers the user's stored token and falls back to the
// process-wide default.
func (s *SearchService) resolveToken(ctx context.Context, userID string) (string, error) {
	if s.profiles != nil {
		token, err := s.profiles.GetExecutorToken(ctx, userID)
		if err != nil {
			return "", err
		}
		if token != "" {
			return token, nil
		}
	}
	return s.cfg.DefaultToken, nil
}

// failSearch conditionally fails a search, logging when the transition lost.
func (s *SearchService) failSearch(ctx context.Context, id, msg string) {
	won, err := s.searches.MarkFailed(ctx, id, msg)
	if err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "mark search failed errored",
			"search_id", id,
			"error", err,
		)
		return
	}
	if !won && s.logger != nil {
		s.logger.DebugContext(ctx, "search already terminal, fail skipped",
			"search_id", id,
		)
	}
}

// reload refetches a search after a transition; the stale copy is the
// fallback when the refetch fails.
func (s *SearchService) reload(ctx context.Context, search *model.Search) *model.Search {
	fresh, err := s.searches.GetByIDForUser(ctx, search.ID, search.UserID)
	if err != nil {
		return search
	}
	return fresh
}

func startFailureMessage(err error) string {
	if se, ok := apify.IsStatusError(err); ok {
		return fmt.Sprintf("executor rejected the run: %d - %s", se.StatusCode, se.Body)
	}
	return "failed to start the executor run"
}
