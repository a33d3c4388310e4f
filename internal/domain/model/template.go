package model

import (
	"errors"
	"strings"
	"time"
)

// Template is a saved, reusable set of search filters owned by a user.
type Template struct {
	ID        string        `json:"id"         db:"id"`
	UserID    string        `json:"user_id"    db:"user_id"`
	Name      string        `json:"name"       db:"name"`
	Filters   SearchFilters `json:"filters"    db:"filters"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// SaveTemplateRequest carries the inputs for creating or updating a template.
type SaveTemplateRequest struct {
	UserID  string        `json:"user_id"`
	Name    string        `json:"name"`
	Filters SearchFilters `json:"filters"`
}

// Validate validates the SaveTemplateRequest fields.
func (r *SaveTemplateRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}
