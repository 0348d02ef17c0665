package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/resume-builder/internal/types"
)

const resumeColumns = `id, user_id, title, status, raw_data, structured_data, created_at, updated_at`

func scanResume(row pgx.Row) (*types.Resume, error) {
	var (
		r          types.Resume
		id         uuid.UUID
		status     string
		structured []byte
	)
	if err := row.Scan(&id, &r.UserID, &r.Title, &status, &r.RawData, &structured, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.ID = id.String()
	r.Status = types.ResumeStatus(status)
	if len(structured) > 0 && string(structured) != "null" {
		r.StructuredData = &types.StructuredData{}
		if err := json.Unmarshal(structured, r.StructuredData); err != nil {
			return nil, fmt.Errorf("failed to decode structured data: %w", err)
		}
	}
	return &r, nil
}

func marshalStructured(data *types.StructuredData) ([]byte, error) {
	if data == nil {
		return nil, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal structured data: %w", err)
	}
	return b, nil
}

// parseID converts an identifier to a UUID. ok is false for malformed ids, which
// can never match a row.
func parseID(id string) (uuid.UUID, bool) {
	parsed, err := uuid.Parse(id)
	return parsed, err == nil
}

// CreateResume inserts a new resume. ID and timestamps must already be set.
func (db *DB) CreateResume(ctx context.Context, r *types.Resume) error {
	id, ok := parseID(r.ID)
	if !ok {
		return fmt.Errorf("failed to create resume: invalid id %q", r.ID)
	}
	structured, err := marshalStructured(r.StructuredData)
	if err != nil {
		return err
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO resumes (`+resumeColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, r.UserID, r.Title, string(r.Status), r.RawData, structured, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create resume: %w", err)
	}
	return nil
}

// ListResumes returns summaries for a user ordered by most recently updated.
func (db *DB) ListResumes(ctx context.Context, userID string) ([]types.ResumeSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, title, status, updated_at FROM resumes
		 WHERE user_id = $1 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	summaries := []types.ResumeSummary{}
	for rows.Next() {
		var (
			s      types.ResumeSummary
			id     uuid.UUID
			status string
		)
		if err := rows.Scan(&id, &s.Title, &status, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		s.ID = id.String()
		s.Status = types.ResumeStatus(status)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate resumes: %w", err)
	}
	return summaries, nil
}

// GetResume retrieves a resume by ID. Returns nil, nil when absent.
func (db *DB) GetResume(ctx context.Context, id string) (*types.Resume, error) {
	parsed, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	row := db.pool.QueryRow(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE id = $1`, parsed)
	r, err := scanResume(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	return r, nil
}

// UpdateResume persists the mutable fields of a resume.
func (db *DB) UpdateResume(ctx context.Context, r *types.Resume) error {
	id, ok := parseID(r.ID)
	if !ok {
		return fmt.Errorf("failed to update resume: invalid id %q", r.ID)
	}
	structured, err := marshalStructured(r.StructuredData)
	if err != nil {
		return err
	}

	_, err = db.pool.Exec(ctx,
		`UPDATE resumes SET title = $2, status = $3, raw_data = $4, structured_data = $5, updated_at = $6
		 WHERE id = $1`,
		id, r.Title, string(r.Status), r.RawData, structured, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update resume: %w", err)
	}
	return nil
}

// DeleteResume removes a resume. Reports whether a row was deleted.
func (db *DB) DeleteResume(ctx context.Context, id string) (bool, error) {
	parsed, ok := parseID(id)
	if !ok {
		return false, nil
	}
	tag, err := db.pool.Exec(ctx, `DELETE FROM resumes WHERE id = $1`, parsed)
	if err != nil {
		return false, fmt.Errorf("failed to delete resume: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteResumesByUser removes every resume owned by userID and returns the count.
func (db *DB) DeleteResumesByUser(ctx context.Context, userID string) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM resumes WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete resumes for user: %w", err)
	}
	return tag.RowsAffected(), nil
}
