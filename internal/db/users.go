package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/resume-builder/internal/types"
)

const userColumns = `id, supabase_id, email, profile, settings, usage, created_at, updated_at`

func scanUser(row pgx.Row) (*types.User, error) {
	var (
		u                        types.User
		id                       uuid.UUID
		profile, settings, usage []byte
	)
	if err := row.Scan(&id, &u.SupabaseID, &u.Email, &profile, &settings, &usage, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.ID = id.String()
	if err := json.Unmarshal(profile, &u.Profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if err := json.Unmarshal(settings, &u.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := json.Unmarshal(usage, &u.Usage); err != nil {
		return nil, fmt.Errorf("failed to decode usage: %w", err)
	}
	return &u, nil
}

// FindOrCreateUser returns the user for a Supabase subject, creating it with default
// settings on first sight. An existing user has usage.lastActiveAt refreshed.
func (db *DB) FindOrCreateUser(ctx context.Context, subject, email string) (*types.User, error) {
	now := time.Now().UTC()
	settings, err := json.Marshal(types.DefaultSettings())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}
	usage, err := json.Marshal(types.Usage{LastActiveAt: now})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal usage: %w", err)
	}
	lastActive, err := json.Marshal(now)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO app_users (id, supabase_id, email, profile, settings, usage, created_at, updated_at)
		 VALUES ($1, $2, $3, '{}'::jsonb, $4, $5, $6, $6)
		 ON CONFLICT (supabase_id) DO UPDATE SET
		   usage = jsonb_set(app_users.usage, '{lastActiveAt}', $7::jsonb),
		   email = CASE WHEN app_users.email = '' THEN EXCLUDED.email ELSE app_users.email END
		 RETURNING `+userColumns,
		uuid.New(), subject, email, settings, usage, now, lastActive,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find or create user: %w", err)
	}
	return u, nil
}

// GetUser retrieves a user by Supabase subject. Returns nil, nil when absent.
func (db *DB) GetUser(ctx context.Context, subject string) (*types.User, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM app_users WHERE supabase_id = $1`, subject)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// UpdateUser persists profile, settings and usage for an existing user.
func (db *DB) UpdateUser(ctx context.Context, u *types.User) error {
	profile, err := json.Marshal(u.Profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	settings, err := json.Marshal(u.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	usage, err := json.Marshal(u.Usage)
	if err != nil {
		return fmt.Errorf("failed to marshal usage: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`UPDATE app_users SET email = $2, profile = $3, settings = $4, usage = $5, updated_at = $6
		 WHERE supabase_id = $1`,
		u.SupabaseID, u.Email, profile, settings, usage, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// DeleteUser removes a user. Reports whether a row was deleted.
func (db *DB) DeleteUser(ctx context.Context, subject string) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM app_users WHERE supabase_id = $1`, subject)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// IncrementGenerations bumps usage.generationsCount by one.
func (db *DB) IncrementGenerations(ctx context.Context, subject string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE app_users
		 SET usage = jsonb_set(usage, '{generationsCount}',
		     to_jsonb(COALESCE((usage->>'generationsCount')::int, 0) + 1)),
		     updated_at = NOW()
		 WHERE supabase_id = $1`,
		subject,
	)
	if err != nil {
		return fmt.Errorf("failed to increment generations: %w", err)
	}
	return nil
}
