package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alphaleads/leadsearch/internal/core"
)

// PollerConfig holds tunables for the background poll loop.
type PollerConfig struct {
	// Interval is how often in-flight searches are swept.
	Interval time.Duration
	// BatchSize caps how many searches one sweep picks up.
	BatchSize int
	// Concurrency caps how many refreshes run at once within a sweep.
	Concurrency int
}

// PollerServiceOptions groups dependencies for PollerService.
type PollerServiceOptions struct {
	Searches  core.SearchRepository // Required: source of in-flight searches
	Refresher *SearchService        // Required: performs the per-search poll step
	Config    PollerConfig
	Logger    *slog.Logger     // Optional: structured logger
	Metrics   core.MetricsSink // Optional: sweep counters
}

// PollerService periodically advances in-flight searches so results land even
// when no client is polling the status endpoint. Each sweep lists running
// searches and refreshes them with bounded concurrency; per-search outcomes
// are the refresher's concern.
type PollerService struct {
	searches  core.SearchRepository
	refresher *SearchService
	config    PollerConfig
	logger    *slog.Logger
	metrics   core.MetricsSink
}

// NewPollerService constructs a new PollerService.
func NewPollerService(opts PollerServiceOptions) (*PollerService, error) {
	if opts.Searches == nil {
		return nil, errors.New("SearchRepository is required")
	}
	if opts.Refresher == nil {
		return nil, errors.New("SearchService is required")
	}

	cfg := opts.Config
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "poller_service")
	}

	return &PollerService{
		searches:  opts.Searches,
		refresher: opts.Refresher,
		config:    cfg,
		logger:    logger,
		metrics:   opts.Metrics,
	}, nil
}

// MustNewPollerService constructs a new PollerService and panics on error.
func MustNewPollerService(opts PollerServiceOptions) *PollerService {
	svc, err := NewPollerService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create PollerService: %v", err))
	}
	return svc
}

// Run starts the poll loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *PollerService) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting poller service", "interval", s.config.Interval)
	}

	// Add jitter to prevent thundering herd if multiple instances start together
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if err := s.sweep(ctx); err != nil {
		s.logSweepError(err, "initial sweep")
	}

	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.InfoContext(ctx, "poller service stopping", "reason", ctx.Err())
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			if err := s.sweep(ctx); err != nil {
				s.logSweepError(err, "sweep")
			}
		}
	}
}

// waitWithJitter adds a random delay up to 10% of the interval to prevent thundering herd.
func (s *PollerService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// If crypto/rand fails, skip jitter rather than failing startup
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		}
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
		// Graceful shutdown during jitter
	}
}

// sweep refreshes one batch of in-flight searches.
func (s *PollerService) sweep(ctx context.Context) error {
	start := time.Now()

	searches, err := s.searches.ListInFlight(ctx, s.config.BatchSize)
	if err != nil {
		return fmt.Errorf("list in-flight searches: %w", err)
	}
	if len(searches) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)

	for _, search := range searches {
		g.Go(func() error {
			if _, refreshErr := s.refresher.Refresh(gctx, search.ID, search.UserID); refreshErr != nil {
				if s.logger != nil && !isContextCancellation(refreshErr) {
					s.logger.WarnContext(gctx, "poll refresh failed",
						"search_id", search.ID,
						"error", refreshErr,
					)
				}
			}
			// A single failed refresh must not stop the sweep.
			return nil
		})
	}
	_ = g.Wait()

	if s.logger != nil {
		s.logger.DebugContext(ctx, "poll sweep complete",
			"searches", len(searches),
			"elapsed", time.Since(start),
		)
	}
	if s.metrics != nil {
		s.metrics.Count("poller.swept", int64(len(searches)), nil)
		s.metrics.Timing("poller.sweep_duration", time.Since(start), nil)
	}
	return nil
}

func (s *PollerService) logSweepError(err error, label string) {
	if err == nil || s.logger == nil {
		return
	}
	if isContextCancellation(err) {
		s.logger.Debug(label+" cancelled by context", "error", err)
		return
	}
	s.logger.Error(label+" failed", "error", err)
}

func isContextCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
