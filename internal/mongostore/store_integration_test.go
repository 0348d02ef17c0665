package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore connects to a local MongoDB for integration testing.
// Skipped if MONGODB_URL is not set or the server is unreachable.
func setupTestStore(t *testing.T) *Store {
	uri := os.Getenv("MONGODB_URL")
	if uri == "" {
		t.Skip("Skipping integration test: MONGODB_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	s, err := Connect(ctx, uri, "resume_builder_test")
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to mongo: %v", err)
	}
	return s
}

func TestUserDocuments(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()
	ctx := context.Background()

	subject := "sub-" + uuid.NewString()
	u, err := s.FindOrCreateUser(ctx, subject, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, subject, u.SupabaseID)
	assert.Equal(t, types.ThemeSystem, u.Settings.Theme)
	assert.NotEmpty(t, u.ID)

	again, err := s.FindOrCreateUser(ctx, subject, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	require.NoError(t, s.IncrementGenerations(ctx, subject))
	got, err := s.GetUser(ctx, subject)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Usage.GenerationsCount)

	deleted, err := s.DeleteUser(ctx, subject)
	require.NoError(t, err)
	assert.True(t, deleted)

	missing, err := s.GetUser(ctx, subject)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestResumeDocuments(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()
	ctx := context.Background()

	owner := "sub-" + uuid.NewString()
	now := time.Now().UTC().Truncate(time.Millisecond)
	older := &types.Resume{ID: uuid.NewString(), UserID: owner, Title: "Old", Status: types.StatusDraft, CreatedAt: now, UpdatedAt: now}
	newer := &types.Resume{ID: uuid.NewString(), UserID: owner, Title: "New", Status: types.StatusDraft, CreatedAt: now, UpdatedAt: now.Add(time.Minute)}
	require.NoError(t, s.CreateResume(ctx, older))
	require.NoError(t, s.CreateResume(ctx, newer))

	list, err := s.ListResumes(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "New", list[0].Title)

	n, err := s.DeleteResumesByUser(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	r, err := s.GetResume(ctx, older.ID)
	require.NoError(t, err)
	assert.Nil(t, r)
}
