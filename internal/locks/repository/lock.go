package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	lockerrors "pressroom/internal/locks/errors"
	"pressroom/pkg/config"
	"pressroom/pkg/model"
)

const CollectionName = "content_locks"

type LockRepository interface {
	Insert(ctx context.Context, lock *model.ContentLock) error
	FindByID(ctx context.Context, id string) (*model.ContentLock, error)
	FindByResource(ctx context.Context, resourceType, resourceID string) ([]*model.ContentLock, error)
	FindAll(ctx context.Context, filter model.LockFilter) ([]*model.ContentLock, error)
	UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) (*model.ContentLock, error)
	Delete(ctx context.Context, id string) error
	DeleteOwned(ctx context.Context, resourceType, resourceID, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type mongoLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoLockRepository(cfg *config.Config) LockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLockRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoLockRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoLockRepository) Insert(ctx context.Context, lock *model.ContentLock) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		return fmt.Errorf("failed to insert lock: %w", err)
	}
	return nil
}

func (r *mongoLockRepository) FindByID(ctx context.Context, id string) (*model.ContentLock, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreReadTimeout)
	defer cancel()

	var lock model.ContentLock
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&lock)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", lockerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find lock: %w", err)
	}
	return &lock, nil
}

func (r *mongoLockRepository) FindByResource(ctx context.Context, resourceType, resourceID string) ([]*model.ContentLock, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{
		"resource_type": resourceType,
		"resource_id":   resourceID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query locks: %w", err)
	}
	defer cursor.Close(ctx)

	var locks []*model.ContentLock
	if err = cursor.All(ctx, &locks); err != nil {
		return nil, fmt.Errorf("failed to decode locks: %w", err)
	}
	return locks, nil
}

func (r *mongoLockRepository) FindAll(ctx context.Context, filter model.LockFilter) ([]*model.ContentLock, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreReadTimeout)
	defer cancel()

	query := bson.M{}
	if filter.ResourceType != "" {
		query["resource_type"] = filter.ResourceType
	}
	if filter.ResourceID != "" {
		query["resource_id"] = filter.ResourceID
	}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}

	opts := options.Find().SetSort(bson.D{{Key: "locked_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query locks: %w", err)
	}
	defer cursor.Close(ctx)

	var locks []*model.ContentLock
	if err = cursor.All(ctx, &locks); err != nil {
		return nil, fmt.Errorf("failed to decode locks: %w", err)
	}
	return locks, nil
}

func (r *mongoLockRepository) UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) (*model.ContentLock, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	var lock model.ContentLock
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"expires_at": expiresAt}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&lock)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", lockerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update lock expiry: %w", err)
	}
	return &lock, nil
}

func (r *mongoLockRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete lock: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", lockerrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoLockRepository) DeleteOwned(ctx context.Context, resourceType, resourceID, userID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{
		"resource_type": resourceType,
		"resource_id":   resourceID,
		"user_id":       userID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete owned locks: %w", err)
	}
	return nil
}

func (r *mongoLockRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{
		"expires_at": bson.M{"$lte": now},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired locks: %w", err)
	}
	return result.DeletedCount, nil
}
