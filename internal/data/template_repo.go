package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alphaleads/leadsearch/internal/domain/model"
)

// TemplateRepo provides database operations for saved filter templates.
type TemplateRepo struct {
	DB *sql.DB
}

// NewTemplateRepo creates a new TemplateRepo with the given database connection.
func NewTemplateRepo(db *sql.DB) *TemplateRepo {
	return &TemplateRepo{DB: db}
}

const templateColumns = `id, user_id, name, filters, created_at, updated_at`

// Create inserts a new template for the user.
func (r *TemplateRepo) Create(ctx context.Context, req *model.SaveTemplateRequest) (*model.Template, error) {
	if req == nil {
		return nil, errors.New("save template request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	filters, err := json.Marshal(req.Filters)
	if err != nil {
		return nil, fmt.Errorf("marshal filters: %w", err)
	}

	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO templates (user_id, name, filters)
		VALUES ($1, $2, $3)
		RETURNING `+templateColumns, req.UserID, req.Name, filters)

	tpl, err := scanTemplate(row)
	if isUniqueViolation(err) {
		return nil, ErrTemplateExists
	}
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	return tpl, nil
}

// GetByIDForUser retrieves a template only if it belongs to the given user.
func (r *TemplateRepo) GetByIDForUser(ctx context.Context, id, userID string) (*model.Template, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+templateColumns+`
		FROM templates
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	tpl, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return tpl, nil
}

// ListByUser returns the user's templates, newest first.
func (r *TemplateRepo) ListByUser(ctx context.Context, userID string) ([]*model.Template, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+templateColumns+`
		FROM templates
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var templates []*model.Template
	for rows.Next() {
		tpl, scanErr := scanTemplate(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan template: %w", scanErr)
		}
		templates = append(templates, tpl)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("list templates: %w", rowsErr)
	}
	return templates, nil
}

// Update replaces a template's name and filters. The row must belong to the
// requesting user.
func (r *TemplateRepo) Update(ctx context.Context, id string, req *model.SaveTemplateRequest) (*model.Template, error) {
	if req == nil {
		return nil, errors.New("save template request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	filters, err := json.Marshal(req.Filters)
	if err != nil {
		return nil, fmt.Errorf("marshal filters: %w", err)
	}

	row := r.DB.QueryRowContext(ctx, `
		UPDATE templates
		SET name = $3,
		    filters = $4,
		    updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+templateColumns, id, req.UserID, req.Name, filters)

	tpl, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTemplateNotFound
	}
	if isUniqueViolation(err) {
		return nil, ErrTemplateExists
	}
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return tpl, nil
}

// Delete removes a template owned by the user.
func (r *TemplateRepo) Delete(ctx context.Context, id, userID string) error {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM templates
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete template rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

type templateRowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(scanner templateRowScanner) (*model.Template, error) {
	tpl := &model.Template{}
	var filters []byte
	if err := scanner.Scan(
		&tpl.ID,
		&tpl.UserID,
		&tpl.Name,
		&filters,
		&tpl.CreatedAt,
		&tpl.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(filters) > 0 {
		if err := json.Unmarshal(filters, &tpl.Filters); err != nil {
			return nil, fmt.Errorf("unmarshal filters: %w", err)
		}
	}
	return tpl, nil
}
