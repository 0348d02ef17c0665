// Package mongostore provides MongoDB storage for the users and resumes collections.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection   = "users"
	resumesCollection = "resumes"
)

// Store wraps a MongoDB client bound to one database
type Store struct {
	client  *mongo.Client
	users   *mongo.Collection
	resumes *mongo.Collection
}

// Connect opens a client, verifies it with a ping and ensures indexes exist.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	s := newStore(client.Database(database))
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func newStore(db *mongo.Database) *Store {
	return &Store{
		client:  db.Client(),
		users:   db.Collection(usersCollection),
		resumes: db.Collection(resumesCollection),
	}
}

// EnsureIndexes creates the unique supabaseId index and the userId lookup index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "supabaseId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}
	_, err = s.resumes.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create resumes indexes: %w", err)
	}
	return nil
}

// Ping checks that the server is reachable
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping mongo: %w", err)
	}
	return nil
}

// Close disconnects the client
func (s *Store) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		slog.Warn("failed to disconnect mongo client", "error", err)
	}
}

// FindOrCreateUser upserts the user for a Supabase subject and refreshes usage.lastActiveAt.
func (s *Store) FindOrCreateUser(ctx context.Context, subject, email string) (*types.User, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{"usage.lastActiveAt": now},
		"$setOnInsert": bson.M{
			"_id":                    uuid.NewString(),
			"email":                  email,
			"profile":                types.Profile{},
			"settings":               types.DefaultSettings(),
			"usage.generationsCount": 0,
			"createdAt":              now,
			"updatedAt":              now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	filter := bson.M{"supabaseId": subject}
	var u types.User
	err := s.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u)
	if mongo.IsDuplicateKeyError(err) {
		// a concurrent first request inserted the user; this attempt matches it
		err = s.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find or create user: %w", err)
	}
	return &u, nil
}

// GetUser retrieves a user by Supabase subject. Returns nil, nil when absent.
func (s *Store) GetUser(ctx context.Context, subject string) (*types.User, error) {
	var u types.User
	err := s.users.FindOne(ctx, bson.M{"supabaseId": subject}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// UpdateUser replaces the stored user document.
func (s *Store) UpdateUser(ctx context.Context, u *types.User) error {
	_, err := s.users.ReplaceOne(ctx, bson.M{"supabaseId": u.SupabaseID}, u)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// DeleteUser removes a user. Reports whether a document was deleted.
func (s *Store) DeleteUser(ctx context.Context, subject string) (bool, error) {
	res, err := s.users.DeleteOne(ctx, bson.M{"supabaseId": subject})
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// IncrementGenerations bumps usage.generationsCount by one.
func (s *Store) IncrementGenerations(ctx context.Context, subject string) error {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"supabaseId": subject},
		bson.M{
			"$inc": bson.M{"usage.generationsCount": 1},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to increment generations: %w", err)
	}
	return nil
}

// CreateResume inserts a new resume document.
func (s *Store) CreateResume(ctx context.Context, r *types.Resume) error {
	if _, err := s.resumes.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("failed to create resume: %w", err)
	}
	return nil
}

// ListResumes returns summaries for a user ordered by most recently updated.
func (s *Store) ListResumes(ctx context.Context, userID string) ([]types.ResumeSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetProjection(bson.M{"title": 1, "status": 1, "updatedAt": 1})

	cursor, err := s.resumes.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer cursor.Close(ctx)

	summaries := []types.ResumeSummary{}
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("failed to decode resumes: %w", err)
	}
	return summaries, nil
}

// GetResume retrieves a resume by ID. Returns nil, nil when absent.
func (s *Store) GetResume(ctx context.Context, id string) (*types.Resume, error) {
	var r types.Resume
	err := s.resumes.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	return &r, nil
}

// UpdateResume replaces the stored resume document.
func (s *Store) UpdateResume(ctx context.Context, r *types.Resume) error {
	if _, err := s.resumes.ReplaceOne(ctx, bson.M{"_id": r.ID}, r); err != nil {
		return fmt.Errorf("failed to update resume: %w", err)
	}
	return nil
}

// DeleteResume removes a resume. Reports whether a document was deleted.
func (s *Store) DeleteResume(ctx context.Context, id string) (bool, error) {
	res, err := s.resumes.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("failed to delete resume: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// DeleteResumesByUser removes every resume owned by userID and returns the count.
func (s *Store) DeleteResumesByUser(ctx context.Context, userID string) (int64, error) {
	res, err := s.resumes.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete resumes for user: %w", err)
	}
	return res.DeletedCount, nil
}
