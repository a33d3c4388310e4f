// Package model defines the core data types used throughout the leadsearch system.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// SearchStatus represents the lifecycle state of a search.
type SearchStatus string

const (
	// SearchStatusPending indicates the search row exists but the executor run has not started.
	SearchStatusPending SearchStatus = "pending"
	// SearchStatusRunning indicates the executor run is in flight.
	SearchStatusRunning SearchStatus = "running"
	// SearchStatusSucceeded indicates results were ingested and the search is complete.
	SearchStatusSucceeded SearchStatus = "succeeded"
	// SearchStatusFailed indicates the search terminated without results.
	SearchStatusFailed SearchStatus = "failed"
)

// Valid returns true if the SearchStatus is a known state.
func (s SearchStatus) Valid() bool {
	return s == SearchStatusPending || s == SearchStatusRunning ||
		s == SearchStatusSucceeded || s == SearchStatusFailed
}

// Terminal returns true once the status can no longer change.
func (s SearchStatus) Terminal() bool {
	return s == SearchStatusSucceeded || s == SearchStatusFailed
}

// UnmarshalText implements encoding.TextUnmarshaler for SearchStatus.
func (s *SearchStatus) UnmarshalText(text []byte) error {
	v := SearchStatus(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid SearchStatus: %q", v)
	}
	*s = v
	return nil
}

// Search is a single lead-search request and its lifecycle record.
//
// Status transitions are monotonic: pending -> running -> succeeded|failed.
// RunID and DatasetID are the opaque executor handles and are only present once
// the run has been started. LeadsCount is authoritative only when the search
// has succeeded.
type Search struct {
	ID           string        `json:"id"                      db:"id"`
	UserID       string        `json:"user_id"                 db:"user_id"`
	Name         string        `json:"name"                    db:"name"`
	Filters      SearchFilters `json:"filters"                 db:"filters"`
	Status       SearchStatus  `json:"status"                  db:"status"`
	RunID        *string       `json:"run_id,omitempty"        db:"run_id"`
	DatasetID    *string       `json:"dataset_id,omitempty"    db:"dataset_id"`
	LeadsCount   int           `json:"leads_count"             db:"leads_count"`
	ErrorMessage *string       `json:"error_message,omitempty" db:"error_message"`
	StartedAt    *time.Time    `json:"started_at,omitempty"    db:"started_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"  db:"completed_at"`
	CreatedAt    time.Time     `json:"created_at"              db:"created_at"`
}

// CreateSearchRequest carries the inputs for creating a new search row.
type CreateSearchRequest struct {
	UserID  string        `json:"user_id"`
	Name    string        `json:"name"`
	Filters SearchFilters `json:"filters"`
}

// Validate validates the CreateSearchRequest fields.
func (r *CreateSearchRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if !r.Filters.HasCriteria() {
		return errors.New("at least one filter must be set")
	}
	return nil
}

// RunHandles are the opaque identifiers returned by the executor when a run starts.
type RunHandles struct {
	RunID     string
	DatasetID string
}

// SearchStats represents per-status counts of a user's searches.
type SearchStats struct {
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// SearchName builds the fallback display name for a search started at the
// given time, used when the caller did not supply one.
func SearchName(now time.Time) string {
	return "Search " + now.Format("2006-01-02 15:04")
}
