package mongostore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func duplicateKeyResponse() bson.D {
	return mtest.CreateCommandErrorResponse(mtest.CommandError{
		Code:    11000,
		Name:    "DuplicateKey",
		Message: "E11000 duplicate key error collection: users index: supabaseId_1",
	})
}

func userDocResponse(subject string) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
		{Key: "_id", Value: "user-1"},
		{Key: "supabaseId", Value: subject},
		{Key: "email", Value: "jane@example.com"},
	}})
}

func TestFindOrCreateUser_RetriesDuplicateKey(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("concurrent insert", func(mt *mtest.T) {
		s := newStore(mt.DB)
		mt.AddMockResponses(duplicateKeyResponse(), userDocResponse("sub-1"))

		u, err := s.FindOrCreateUser(context.Background(), "sub-1", "jane@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, "user-1", u.ID)
		assert.Equal(mt, "sub-1", u.SupabaseID)
	})

	mt.Run("second duplicate is returned", func(mt *mtest.T) {
		s := newStore(mt.DB)
		mt.AddMockResponses(duplicateKeyResponse(), duplicateKeyResponse())

		_, err := s.FindOrCreateUser(context.Background(), "sub-1", "jane@example.com")
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to find or create user")
	})

	mt.Run("no retry on success", func(mt *mtest.T) {
		s := newStore(mt.DB)
		mt.AddMockResponses(userDocResponse("sub-2"))

		u, err := s.FindOrCreateUser(context.Background(), "sub-2", "jane@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, "sub-2", u.SupabaseID)
	})
}
