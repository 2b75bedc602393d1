package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
)

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) SaveProfile(ctx context.Context, profile *domain.UserProfile) error {
	prefsJSON, err := json.Marshal(profile.Preferences)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}

	const query = `
INSERT INTO user_profiles (user_id, preferences, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE
SET preferences = EXCLUDED.preferences, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, profile.UserID, prefsJSON, profile.UpdatedAt); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	const query = `
SELECT user_id, preferences, updated_at
FROM user_profiles
WHERE user_id = $1`

	var (
		profile   domain.UserProfile
		prefsJSON []byte
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&profile.UserID, &prefsJSON, &profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrProfileNotFound, "get profile", err)
		}
		return nil, fmt.Errorf("select profile: %w", err)
	}
	if err := json.Unmarshal(prefsJSON, &profile.Preferences); err != nil {
		return nil, fmt.Errorf("unmarshal preferences: %w", err)
	}
	if profile.Preferences.TechStack == nil {
		profile.Preferences.TechStack = []string{}
	}
	return &profile, nil
}

func (r *ProfileRepository) CountProfiles(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_profiles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return n, nil
}
