package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alphaleads/leadsearch/internal/apify"
	"github.com/alphaleads/leadsearch/internal/core"
	"github.com/alphaleads/leadsearch/internal/data"
	"github.com/alphaleads/leadsearch/internal/domain/model"
	apperrors "github.com/alphaleads/leadsearch/internal/errors"
)

// CredentialServiceOptions groups dependencies for CredentialService.
type CredentialServiceOptions struct {
	Profiles core.ProfileRepository // Required: profile storage
	Executor core.Executor          // Required: token verification
	Logger   *slog.Logger           // Optional: structured logger
}

// CredentialService manages per-user executor tokens. Tokens are verified
// against the executor before being stored.
type CredentialService struct {
	profiles core.ProfileRepository
	executor core.Executor
	logger   *slog.Logger
}

// NewCredentialService constructs a new CredentialService.
func NewCredentialService(opts CredentialServiceOptions) (*CredentialService, error) {
	if opts.Profiles == nil {
		return nil, errors.New("ProfileRepository is required")
	}
	if opts.Executor == nil {
		return nil, errors.New("Executor is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "credential_service")
	}

	return &CredentialService{
		profiles: opts.Profiles,
		executor: opts.Executor,
		logger:   logger,
	}, nil
}

// MustNewCredentialService constructs a new CredentialService and panics on error.
func MustNewCredentialService(opts CredentialServiceOptions) *CredentialService {
	svc, err := NewCredentialService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create CredentialService: %v", err))
	}
	return svc
}

// VerifyToken checks a candidate token against the executor without storing it.
func (s *CredentialService) VerifyToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.ValidationField("token", "token is required")
	}

	if err := s.executor.VerifyToken(ctx, token); err != nil {
		if _, ok := apify.IsStatusError(err); ok {
			return apperrors.Credential("the executor rejected the token")
		}
		return apperrors.Wrap(err, apperrors.ErrCodeTransient, "verify token")
	}
	return nil
}

// SetToken verifies the token and stores it on the user's profile.
func (s *CredentialService) SetToken(ctx context.Context, userID, token string) error {
	if err := s.VerifyToken(ctx, token); err != nil {
		return err
	}

	if err := s.profiles.SetExecutorToken(ctx, userID, strings.TrimSpace(token)); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "store token")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "executor token updated", "user_id", userID)
	}
	return nil
}

// ClearToken removes the user's stored executor token.
func (s *CredentialService) ClearToken(ctx context.Context, userID string) error {
	if err := s.profiles.ClearExecutorToken(ctx, userID); err != nil {
		if errors.Is(err, data.ErrProfileNotFound) {
			return nil
		}
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "clear token")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "executor token cleared", "user_id", userID)
	}
	return nil
}

// GetProfile returns the user's profile. A user with no stored profile gets
// an empty one so callers can always render settings.
func (s *CredentialService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, data.ErrProfileNotFound) {
		return &model.Profile{UserID: userID}, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "get profile")
	}
	return profile, nil
}
