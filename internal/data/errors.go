// Package data implements the PostgreSQL and Redis repositories.
package data

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Shared sentinel errors for data-layer repositories.
var (
	ErrSearchNotFound   = errors.New("search not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrTemplateExists   = errors.New("template with that name already exists")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrSearchIDRequired = errors.New("search_id is required")
	ErrUserIDRequired   = errors.New("user_id is required")
)

// isUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
