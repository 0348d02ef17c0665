package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/types"
)

// UserService provides business logic for the signed-in user's record
type UserService struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(store Store, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{store: store, logger: logger, now: time.Now}
}

// Me returns the caller's record, creating it on first sight
func (s *UserService) Me(ctx context.Context, p *middleware.Principal) (*types.User, error) {
	user, err := s.store.FindOrCreateUser(ctx, p.Subject, p.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find or create user: %w", err)
	}
	return user, nil
}

// Update merges the provided profile and settings fields
func (s *UserService) Update(ctx context.Context, subject string, req *types.UpdateUserRequest) (*types.User, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	user, err := s.store.GetUser(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, &ErrUserNotFound{Subject: subject}
	}

	req.Apply(user)
	user.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete removes the user and every resume they own, returning the deleted user
func (s *UserService) Delete(ctx context.Context, subject string) (*types.User, error) {
	user, err := s.store.GetUser(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, &ErrUserNotFound{Subject: subject}
	}

	removed, err := s.store.DeleteResumesByUser(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to delete resumes: %w", err)
	}

	deleted, err := s.store.DeleteUser(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	if !deleted {
		return nil, &ErrUserNotFound{Subject: subject}
	}

	s.logger.InfoContext(ctx, "user deleted", "subject", subject, "resumes", removed)
	return user, nil
}
