package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pressroom/pkg/config"
	"pressroom/pkg/model"
)

const CollectionName = "sessions"

type SessionRepository interface {
	Upsert(ctx context.Context, session *model.Session) (*model.Session, error)
	FindByUserID(ctx context.Context, userID string) (*model.Session, error)
	FindAll(ctx context.Context) ([]*model.Session, error)
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

type mongoSessionRepository struct {
	collection *mongo.Collection
	cfg        *config.Config
}

func NewMongoSessionRepository(cfg *config.Config) SessionRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSessionRepository{
		collection: db.Collection(CollectionName),
		cfg:        cfg,
	}
}

func (r *mongoSessionRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// Upsert keys on user_id so a heartbeat refreshes the existing session
// instead of creating a second one. The stored session id survives the
// refresh via $setOnInsert.
func (r *mongoSessionRepository) Upsert(ctx context.Context, session *model.Session) (*model.Session, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	filter := bson.M{"user_id": session.UserID}
	update := bson.M{
		"$set": bson.M{
			"username":     session.Username,
			"status":       session.Status,
			"last_seen_at": session.LastSeenAt,
			"current_page": session.CurrentPage,
			"metadata":     session.Metadata,
		},
		"$setOnInsert": bson.M{
			"_id":     session.ID,
			"user_id": session.UserID,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result model.Session
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to upsert session for user %s: %w", session.UserID, err)
	}
	return &result, nil
}

func (r *mongoSessionRepository) FindByUserID(ctx context.Context, userID string) (*model.Session, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreReadTimeout)
	defer cancel()

	var session model.Session
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session for user %s: %w", userID, err)
	}
	return &session, nil
}

func (r *mongoSessionRepository) FindAll(ctx context.Context) ([]*model.Session, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "last_seen_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []*model.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return sessions, nil
}

func (r *mongoSessionRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete session for user %s: %w", userID, err)
	}
	return result.DeletedCount, nil
}

func (r *mongoSessionRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"last_seen_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale sessions: %w", err)
	}
	return result.DeletedCount, nil
}
