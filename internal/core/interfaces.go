// Package core defines the ports between the service layer and its
// collaborators (storage, cache, executor). Services depend on these
// interfaces, never on concrete implementations.
package core

import (
	"context"
	"time"

	"github.com/alphaleads/leadsearch/internal/apify"
	"github.com/alphaleads/leadsearch/internal/domain/model"
)

// SearchRepository defines the interface for search data operations.
type SearchRepository interface {
	Create(ctx context.Context, req *model.CreateSearchRequest) (*model.Search, error)
	// GetByIDForUser retrieves a search only if it belongs to the given user.
	GetByIDForUser(ctx context.Context, id, userID string) (*model.Search, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.Search, error)
	StatsByUser(ctx context.Context, userID string) (*model.SearchStats, error)
	// MarkRunning records the executor handles and moves pending -> running.
	MarkRunning(ctx context.Context, id string, handles model.RunHandles) (*model.Search, error)
	// MarkSucceeded conditionally moves running -> succeeded, setting
	// leads_count and completed_at in the same statement. Returns false when
	// the search was no longer running, in which case the caller must discard
	// its in-flight results.
	MarkSucceeded(ctx context.Context, id string, leadsCount int) (bool, error)
	// MarkFailed conditionally moves a non-terminal search to failed.
	// Returns false when the search was already terminal.
	MarkFailed(ctx context.Context, id, errMsg string) (bool, error)
	Delete(ctx context.Context, id, userID string) error
	// ListInFlight returns running searches with run handles, oldest first,
	// across all users. Used by the background poller.
	ListInFlight(ctx context.Context, limit int) ([]*model.Search, error)
}

// LeadRepository defines the interface for lead data operations.
type LeadRepository interface {
	// InsertBatch persists leads in fixed-size batches. A failed batch is
	// logged and skipped; the returned count is the number actually inserted.
	InsertBatch(ctx context.Context, leads []model.Lead) (int, error)
	List(ctx context.Context, opts *model.LeadListOptions) (*model.LeadPage, error)
	// ListForExport streams every lead of a search, optionally restricted to ids.
	ListForExport(ctx context.Context, searchID string, ids []string) ([]model.Lead, error)
}

// ProfileRepository defines the interface for per-user settings.
type ProfileRepository interface {
	// GetExecutorToken returns the user's decrypted token, or "" if unset.
	GetExecutorToken(ctx context.Context, userID string) (string, error)
	SetExecutorToken(ctx context.Context, userID, token string) error
	ClearExecutorToken(ctx context.Context, userID string) error
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
}

// TemplateRepository defines the interface for saved filter templates.
type TemplateRepository interface {
	Create(ctx context.Context, req *model.SaveTemplateRequest) (*model.Template, error)
	GetByIDForUser(ctx context.Context, id, userID string) (*model.Template, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Template, error)
	Update(ctx context.Context, id string, req *model.SaveTemplateRequest) (*model.Template, error)
	Delete(ctx context.Context, id, userID string) error
}

// CacheRepository defines the interface for caching operations.
type CacheRepository interface {
	// Set stores a value in the cache with the given key and TTL.
	// If TTL is 0, the key will not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value from the cache by key.
	// Returns nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key from the cache.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// SetIfNotExists atomically sets a key only if it doesn't already exist.
	// Returns true if the key was set, false if it already existed.
	// This is useful for implementing distributed locks and deduplication.
	SetIfNotExists(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Health checks the health of the cache connection.
	Health(ctx context.Context) error
}

// Executor defines the interface to the external lead-search runner.
type Executor interface {
	StartRun(ctx context.Context, token string, input map[string]any) (apify.RunInfo, error)
	RunStatus(ctx context.Context, token, runID string) (apify.RunInfo, error)
	DatasetItems(ctx context.Context, token, datasetID string) ([]map[string]any, error)
	VerifyToken(ctx context.Context, token string) error
}

// SessionStore defines the interface for bearer session lookup and
// management. Session lifetime is owned by the implementation.
type SessionStore interface {
	// Resolve maps a session token to a user id, or "" when unknown/expired.
	Resolve(ctx context.Context, token string) (string, error)
	Create(ctx context.Context, userID string) (string, error)
	Destroy(ctx context.Context, token string) error
}

// MetricsSink receives operational counters and timings.
type MetricsSink interface {
	Count(name string, value int64, tags map[string]string)
	Gauge(name string, value float64, tags map[string]string)
	Timing(name string, value time.Duration, tags map[string]string)
}
