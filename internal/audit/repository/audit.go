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

const CollectionName = "audit_logs"

type AuditRepository interface {
	Insert(ctx context.Context, entry *model.AuditEntry) error
	FindAll(ctx context.Context, filter model.AuditFilter, limit, offset int) ([]*model.AuditEntry, error)
	Count(ctx context.Context, filter model.AuditFilter) (int64, error)
	TrimToCap(ctx context.Context, cap int) (int64, error)
}

type mongoAuditRepository struct {
	collection *mongo.Collection
	cfg        *config.Config
}

func NewMongoAuditRepository(cfg *config.Config) AuditRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAuditRepository{
		collection: db.Collection(CollectionName),
		cfg:        cfg,
	}
}

func (r *mongoAuditRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoAuditRepository) Insert(ctx context.Context, entry *model.AuditEntry) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

func buildQuery(filter model.AuditFilter) bson.M {
	query := bson.M{}
	if filter.User != "" {
		query["user"] = filter.User
	}
	if filter.Action != "" {
		query["action"] = filter.Action
	}
	if filter.Resource != "" {
		query["resource"] = filter.Resource
	}
	timeRange := bson.M{}
	if !filter.StartDate.IsZero() {
		timeRange["$gte"] = filter.StartDate
	}
	if !filter.EndDate.IsZero() {
		timeRange["$lte"] = filter.EndDate
	}
	if len(timeRange) > 0 {
		query["timestamp"] = timeRange
	}
	return query
}

func (r *mongoAuditRepository) FindAll(ctx context.Context, filter model.AuditFilter, limit, offset int) ([]*model.AuditEntry, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.collection.Find(ctx, buildQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*model.AuditEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode audit entries: %w", err)
	}
	return entries, nil
}

func (r *mongoAuditRepository) Count(ctx context.Context, filter model.AuditFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildQuery(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return count, nil
}

// TrimToCap drops the oldest entries beyond cap so the log stays
// bounded.
func (r *mongoAuditRepository) TrimToCap(ctx context.Context, cap int) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(int64(cap)).
		SetProjection(bson.M{"_id": 1})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to find overflow audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	var overflow []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &overflow); err != nil {
		return 0, fmt.Errorf("failed to decode overflow audit entries: %w", err)
	}
	if len(overflow) == 0 {
		return 0, nil
	}

	ids := make([]string, len(overflow))
	for i, doc := range overflow {
		ids[i] = doc.ID
	}

	result, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("failed to trim audit log: %w", err)
	}
	return result.DeletedCount, nil
}
