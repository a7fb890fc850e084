package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	schedulererrors "pressroom/internal/scheduler/errors"
	"pressroom/pkg/config"
	"pressroom/pkg/model"
)

const CollectionName = "scheduled_items"

type ScheduledItemRepository interface {
	Insert(ctx context.Context, item *model.ScheduledItem) error
	FindByID(ctx context.Context, id string) (*model.ScheduledItem, error)
	FindAll(ctx context.Context, filter model.ScheduledItemFilter) ([]*model.ScheduledItem, error)
	FindDue(ctx context.Context, now time.Time) ([]*model.ScheduledItem, error)
	Replace(ctx context.Context, item *model.ScheduledItem) error
	Delete(ctx context.Context, id string) error
}

type mongoScheduledItemRepository struct {
	collection *mongo.Collection
	cfg        *config.Config
}

func NewMongoScheduledItemRepository(cfg *config.Config) ScheduledItemRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoScheduledItemRepository{
		collection: db.Collection(CollectionName),
		cfg:        cfg,
	}
}

func (r *mongoScheduledItemRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoScheduledItemRepository) Insert(ctx context.Context, item *model.ScheduledItem) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("failed to insert scheduled item: %w", err)
	}
	return nil
}

func (r *mongoScheduledItemRepository) FindByID(ctx context.Context, id string) (*model.ScheduledItem, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreReadTimeout)
	defer cancel()

	var item model.ScheduledItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: %s", schedulererrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find scheduled item %s: %w", id, err)
	}
	return &item, nil
}

func (r *mongoScheduledItemRepository) FindAll(ctx context.Context, filter model.ScheduledItemFilter) ([]*model.ScheduledItem, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreReadTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.Upcoming {
		query["status"] = model.StatusScheduled
		query["scheduled_at"] = bson.M{"$gt": time.Now().UTC()}
	}

	opts := options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []*model.ScheduledItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode scheduled items: %w", err)
	}
	return items, nil
}

// FindDue returns items eligible for processing: still scheduled, or
// failed and awaiting retry, with a due time at or before now. Ascending
// due time so the longest-overdue item goes first.
func (r *mongoScheduledItemRepository) FindDue(ctx context.Context, now time.Time) ([]*model.ScheduledItem, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreReadTimeout)
	defer cancel()

	query := bson.M{
		"status":       bson.M{"$in": []string{model.StatusScheduled, model.StatusFailed}},
		"scheduled_at": bson.M{"$lte": now},
	}
	opts := options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find due items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []*model.ScheduledItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode due items: %w", err)
	}
	return items, nil
}

func (r *mongoScheduledItemRepository) Replace(ctx context.Context, item *model.ScheduledItem) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": item.ID}, item)
	if err != nil {
		return fmt.Errorf("failed to update scheduled item %s: %w", item.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", schedulererrors.ErrNotFound, item.ID)
	}
	return nil
}

func (r *mongoScheduledItemRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete scheduled item %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", schedulererrors.ErrNotFound, id)
	}
	return nil
}
