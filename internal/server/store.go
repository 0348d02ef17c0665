package server

import (
	"context"

	"github.com/jonathan/resume-builder/internal/types"
)

// Store is the persistence the services need. Lookups return nil, nil when
// the record does not exist; deletes report whether anything was removed.
// Both the Postgres and the Mongo backends satisfy it.
type Store interface {
	FindOrCreateUser(ctx context.Context, subject, email string) (*types.User, error)
	GetUser(ctx context.Context, subject string) (*types.User, error)
	UpdateUser(ctx context.Context, user *types.User) error
	DeleteUser(ctx context.Context, subject string) (bool, error)
	IncrementGenerations(ctx context.Context, subject string) error

	CreateResume(ctx context.Context, resume *types.Resume) error
	ListResumes(ctx context.Context, userID string) ([]types.ResumeSummary, error)
	GetResume(ctx context.Context, id string) (*types.Resume, error)
	UpdateResume(ctx context.Context, resume *types.Resume) error
	DeleteResume(ctx context.Context, id string) (bool, error)
	DeleteResumesByUser(ctx context.Context, userID string) (int64, error)

	Ping(ctx context.Context) error
	Close()
}
