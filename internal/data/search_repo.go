package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alphaleads/leadsearch/internal/domain/model"
)

// SearchRepoConfig holds configuration options for the search repository.
type SearchRepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// SearchRepo provides database operations for search lifecycle management.
//
// Terminal transitions are conditional UPDATEs keyed on the current status so
// that concurrent refreshes cannot both claim a search; the loser sees zero
// rows affected.
type SearchRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewSearchRepo creates a new SearchRepo instance with the given database connection.
func NewSearchRepo(db *sql.DB, cfg SearchRepoConfig) *SearchRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}

	return &SearchRepo{
		DB:           db,
		timeProvider: tp,
		logger:       cfg.Logger,
	}
}

const searchColumns = `
  id,
  user_id,
  name,
  filters,
  status,
  run_id,
  dataset_id,
  leads_count,
  error_message,
  started_at,
  completed_at,
  created_at
`

// Create inserts a new search in pending status.
func (r *SearchRepo) Create(ctx context.Context, req *model.CreateSearchRequest) (*model.Search, error) {
	if req == nil {
		return nil, errors.New("create search request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	filters, err := json.Marshal(req.Filters)
	if err != nil {
		return nil, fmt.Errorf("marshal filters: %w", err)
	}

	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO searches (user_id, name, filters, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING `+searchColumns, req.UserID, req.Name, filters)

	search, err := scanSearch(row)
	if err != nil {
		return nil, fmt.Errorf("insert search: %w", err)
	}
	return search, nil
}

// GetByIDForUser retrieves a search only if it belongs to the given user.
func (r *SearchRepo) GetByIDForUser(ctx context.Context, id, userID string) (*model.Search, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+searchColumns+`
		FROM searches
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	search, err := scanSearch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSearchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get search: %w", err)
	}
	return search, nil
}

// ListByUser returns the user's searches, newest first.
func (r *SearchRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.Search, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+searchColumns+`
		FROM searches
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var searches []*model.Search
	for rows.Next() {
		search, scanErr := scanSearch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan search: %w", scanErr)
		}
		searches = append(searches, search)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("list searches: %w", rowsErr)
	}
	return searches, nil
}

// ListInFlight returns running searches across all users, oldest first, so
// the background poller can advance them. Only searches with run handles
// qualify; a pending row without a run has nothing to poll.
func (r *SearchRepo) ListInFlight(ctx context.Context, limit int) ([]*model.Search, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+searchColumns+`
		FROM searches
		WHERE status = 'running' AND run_id IS NOT NULL
		ORDER BY started_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list in-flight searches: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var searches []*model.Search
	for rows.Next() {
		search, scanErr := scanSearch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan search: %w", scanErr)
		}
		searches = append(searches, search)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("list in-flight searches: %w", rowsErr)
	}
	return searches, nil
}

// StatsByUser returns per-status counts of the user's searches.
func (r *SearchRepo) StatsByUser(ctx context.Context, userID string) (*model.SearchStats, error) {
	var s model.SearchStats
	err := r.DB.QueryRowContext(ctx, `
  SELECT
    count(*) FILTER (WHERE status = 'pending')   AS pending,
    count(*) FILTER (WHERE status = 'running')   AS running,
    count(*) FILTER (WHERE status = 'succeeded') AS succeeded,
    count(*) FILTER (WHERE status = 'failed')    AS failed
  FROM searches
  WHERE user_id = $1
  `, userID).Scan(
		&s.Pending,
		&s.Running,
		&s.Succeeded,
		&s.Failed,
	)
	if err != nil {
		return nil, fmt.Errorf("search stats: %w", err)
	}
	return &s, nil
}

// MarkRunning records the executor handles and moves pending -> running.
func (r *SearchRepo) MarkRunning(ctx context.Context, id string, handles model.RunHandles) (*model.Search, error) {
	now := r.timeProvider.Now().UTC()

	row := r.DB.QueryRowContext(ctx, `
		UPDATE searches
		SET status = 'running',
		    run_id = $2,
		    dataset_id = $3,
		    started_at = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING `+searchColumns, id, handles.RunID, handles.DatasetID, now)

	search, err := scanSearch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSearchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mark search running: %w", err)
	}
	return search, nil
}

// MarkSucceeded conditionally moves running -> succeeded. The leads count and
// completion timestamp land in the same statement as the status change.
func (r *SearchRepo) MarkSucceeded(ctx context.Context, id string, leadsCount int) (bool, error) {
	now := r.timeProvider.Now().UTC()

	res, err := r.DB.ExecContext(ctx, `
		UPDATE searches
		SET status = 'succeeded',
		    leads_count = $2,
		    completed_at = $3,
		    error_message = NULL
		WHERE id = $1 AND status = 'running'
	`, id, leadsCount, now)
	if err != nil {
		return false, fmt.Errorf("mark search succeeded: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark search succeeded rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// MarkFailed conditionally moves a non-terminal search to failed.
func (r *SearchRepo) MarkFailed(ctx context.Context, id, errMsg string) (bool, error) {
	now := r.timeProvider.Now().UTC()

	res, err := r.DB.ExecContext(ctx, `
		UPDATE searches
		SET status = 'failed',
		    error_message = $2,
		    completed_at = $3
		WHERE id = $1 AND status IN ('pending', 'running')
	`, id, errMsg, now)
	if err != nil {
		return false, fmt.Errorf("mark search failed: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark search failed rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// Delete removes a search and, via cascade, its leads.
func (r *SearchRepo) Delete(ctx context.Context, id, userID string) error {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM searches
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("delete search: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete search rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSearchNotFound
	}
	return nil
}

type searchRowScanner interface {
	Scan(dest ...any) error
}

func scanSearch(scanner searchRowScanner) (*model.Search, error) {
	search := &model.Search{}
	var (
		filters                []byte
		runID, datasetID       sql.NullString
		errorMessage           sql.NullString
		startedAt, completedAt sql.NullTime
	)

	if err := scanner.Scan(
		&search.ID,
		&search.UserID,
		&search.Name,
		&filters,
		&search.Status,
		&runID,
		&datasetID,
		&search.LeadsCount,
		&errorMessage,
		&startedAt,
		&completedAt,
		&search.CreatedAt,
	); err != nil {
		return nil, err
	}

	if len(filters) > 0 {
		if err := json.Unmarshal(filters, &search.Filters); err != nil {
			return nil, fmt.Errorf("unmarshal filters: %w", err)
		}
	}
	search.RunID = cloneNullableString(runID)
	search.DatasetID = cloneNullableString(datasetID)
	search.ErrorMessage = cloneNullableString(errorMessage)
	search.StartedAt = cloneNullableTime(startedAt)
	search.CompletedAt = cloneNullableTime(completedAt)
	return search, nil
}
