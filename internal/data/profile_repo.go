package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alphaleads/leadsearch/internal/data/cryptoutil"
	"github.com/alphaleads/leadsearch/internal/domain/model"
)

// ProfileRepo provides database operations for per-user settings. Executor
// tokens never touch storage in plaintext; the configured Encryptor seals them
// on write and opens them on read.
type ProfileRepo struct {
	DB        *sql.DB
	encryptor cryptoutil.Encryptor
}

// NewProfileRepo creates a new ProfileRepo with the given database connection and encryptor.
func NewProfileRepo(db *sql.DB, encryptor cryptoutil.Encryptor) (*ProfileRepo, error) {
	if encryptor == nil {
		return nil, errors.New("encryptor is required")
	}
	return &ProfileRepo{DB: db, encryptor: encryptor}, nil
}

// GetExecutorToken returns the user's decrypted token, or "" if unset.
func (r *ProfileRepo) GetExecutorToken(ctx context.Context, userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrUserIDRequired
	}

	var cipherText sql.NullString
	err := r.DB.QueryRowContext(ctx, `
		SELECT executor_token_cipher FROM profiles WHERE user_id = $1
	`, userID).Scan(&cipherText)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get executor token: %w", err)
	}
	if !cipherText.Valid || cipherText.String == "" {
		return "", nil
	}

	token, err := r.encryptor.Decrypt(cipherText.String)
	if err != nil {
		return "", fmt.Errorf("decrypt executor token: %w", err)
	}
	return string(token), nil
}

// SetExecutorToken stores the user's token, creating the profile row if needed.
func (r *ProfileRepo) SetExecutorToken(ctx context.Context, userID, token string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUserIDRequired
	}
	if strings.TrimSpace(token) == "" {
		return errors.New("token is required")
	}

	cipherText, err := r.encryptor.Encrypt([]byte(token))
	if err != nil {
		return fmt.Errorf("encrypt executor token: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO profiles (user_id, executor_token_cipher, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE
		SET executor_token_cipher = EXCLUDED.executor_token_cipher,
		    updated_at = now()
	`, userID, cipherText)
	if err != nil {
		return fmt.Errorf("set executor token: %w", err)
	}
	return nil
}

// ClearExecutorToken removes the user's stored token.
func (r *ProfileRepo) ClearExecutorToken(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUserIDRequired
	}

	_, err := r.DB.ExecContext(ctx, `
		UPDATE profiles
		SET executor_token_cipher = NULL,
		    updated_at = now()
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("clear executor token: %w", err)
	}
	return nil
}

// GetByUserID retrieves the user's profile. The decrypted token is not
// included; HasExecutorToken reports whether one is stored.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserIDRequired
	}

	profile := &model.Profile{UserID: userID}
	var (
		fullName   sql.NullString
		cipherText sql.NullString
		updatedAt  sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT full_name, executor_token_cipher, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`, userID).Scan(&fullName, &cipherText, &profile.CreatedAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	profile.FullName = cloneNullableString(fullName)
	profile.HasExecutorToken = cipherText.Valid && cipherText.String != ""
	profile.UpdatedAt = cloneNullableTime(updatedAt)
	return profile, nil
}
