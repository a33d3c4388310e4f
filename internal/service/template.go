package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alphaleads/leadsearch/internal/core"
	"github.com/alphaleads/leadsearch/internal/data"
	"github.com/alphaleads/leadsearch/internal/domain/model"
	apperrors "github.com/alphaleads/leadsearch/internal/errors"
)

// TemplateServiceOptions groups dependencies for TemplateService.
type TemplateServiceOptions struct {
	Templates core.TemplateRepository // Required: template storage
	Logger    *slog.Logger            // Optional: structured logger
}

// TemplateService manages saved filter templates.
type TemplateService struct {
	templates core.TemplateRepository
	logger    *slog.Logger
}

// NewTemplateService constructs a new TemplateService.
func NewTemplateService(opts TemplateServiceOptions) (*TemplateService, error) {
	if opts.Templates == nil {
		return nil, errors.New("TemplateRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "template_service")
	}

	return &TemplateService{
		templates: opts.Templates,
		logger:    logger,
	}, nil
}

// MustNewTemplateService constructs a new TemplateService and panics on error.
func MustNewTemplateService(opts TemplateServiceOptions) *TemplateService {
	svc, err := NewTemplateService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create TemplateService: %v", err))
	}
	return svc
}

// Save stores a named filter template for the user.
func (s *TemplateService) Save(ctx context.Context, req *model.SaveTemplateRequest) (*model.Template, error) {
	if req == nil {
		return nil, apperrors.Validation("template request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	req.Name = strings.TrimSpace(req.Name)

	tpl, err := s.templates.Create(ctx, req)
	if errors.Is(err, data.ErrTemplateExists) {
		return nil, apperrors.Conflict("a template with this name already exists")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "save template")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "template saved", "template_id", tpl.ID, "user_id", req.UserID)
	}
	return tpl, nil
}

// Update replaces the name and filters of one of the user's templates.
func (s *TemplateService) Update(ctx context.Context, id string, req *model.SaveTemplateRequest) (*model.Template, error) {
	if req == nil {
		return nil, apperrors.Validation("template request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	req.Name = strings.TrimSpace(req.Name)

	tpl, err := s.templates.Update(ctx, id, req)
	if errors.Is(err, data.ErrTemplateNotFound) {
		return nil, apperrors.NotFound("template not found")
	}
	if errors.Is(err, data.ErrTemplateExists) {
		return nil, apperrors.Conflict("a template with this name already exists")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "update template")
	}
	return tpl, nil
}

// Get returns one of the user's templates by id.
func (s *TemplateService) Get(ctx context.Context, id, userID string) (*model.Template, error) {
	tpl, err := s.templates.GetByIDForUser(ctx, id, userID)
	if errors.Is(err, data.ErrTemplateNotFound) {
		return nil, apperrors.NotFound("template not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "get template")
	}
	return tpl, nil
}

// ListByUser returns all of the user's templates, newest first.
func (s *TemplateService) ListByUser(ctx context.Context, userID string) ([]*model.Template, error) {
	templates, err := s.templates.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "list templates")
	}
	return templates, nil
}

// Delete removes one of the user's templates.
func (s *TemplateService) Delete(ctx context.Context, id, userID string) error {
	err := s.templates.Delete(ctx, id, userID)
	if errors.Is(err, data.ErrTemplateNotFound) {
		return apperrors.NotFound("template not found")
	}
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "delete template")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "template deleted", "template_id", id, "user_id", userID)
	}
	return nil
}
