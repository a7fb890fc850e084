package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	notificationerrors "pressroom/internal/notifications/errors"
	"pressroom/pkg/config"
	"pressroom/pkg/model"
)

const CollectionName = "notifications"

type NotificationRepository interface {
	Insert(ctx context.Context, notification *model.Notification) error
	FindForUser(ctx context.Context, userID string) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id string) (*model.Notification, error)
	MarkAllForUser(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id string) error
	TrimForUser(ctx context.Context, userID string, cap int) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time, userID string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type mongoNotificationRepository struct {
	collection *mongo.Collection
	cfg        *config.Config
}

func NewMongoNotificationRepository(cfg *config.Config) NotificationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoNotificationRepository{
		collection: db.Collection(CollectionName),
		cfg:        cfg,
	}
}

func (r *mongoNotificationRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoNotificationRepository) Insert(ctx context.Context, notification *model.Notification) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, notification); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// FindForUser returns the user's own notifications plus broadcasts,
// newest first.
func (r *mongoNotificationRepository) FindForUser(ctx context.Context, userID string) ([]*model.Notification, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreReadTimeout)
	defer cancel()

	query := bson.M{"user_id": bson.M{"$in": []string{userID, model.BroadcastUserID}}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find notifications for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var notifications []*model.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

func (r *mongoNotificationRepository) MarkRead(ctx context.Context, id string) (*model.Notification, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"is_read": true}}

	var notification model.Notification
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&notification)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: %s", notificationerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	return &notification, nil
}

func (r *mongoNotificationRepository) MarkAllForUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	query := bson.M{
		"user_id": bson.M{"$in": []string{userID, model.BroadcastUserID}},
		"is_read": false,
	}
	result, err := r.collection.UpdateMany(ctx, query, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read for user %s: %w", userID, err)
	}
	return result.ModifiedCount, nil
}

func (r *mongoNotificationRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete notification %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", notificationerrors.ErrNotFound, id)
	}
	return nil
}

// TrimForUser drops the oldest notifications beyond cap for one inbox.
// Broadcasts are their own inbox under the sentinel user id.
func (r *mongoNotificationRepository) TrimForUser(ctx context.Context, userID string, cap int) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(cap)).
		SetProjection(bson.M{"_id": 1})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to find overflow notifications for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var overflow []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &overflow); err != nil {
		return 0, fmt.Errorf("failed to decode overflow notifications: %w", err)
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
		return 0, fmt.Errorf("failed to trim notifications for user %s: %w", userID, err)
	}
	return result.DeletedCount, nil
}

// DeleteOlderThan removes notifications created before cutoff, scoped
// to one user when userID is non-empty.
func (r *mongoNotificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time, userID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	query := bson.M{"created_at": bson.M{"$lt": cutoff}}
	if userID != "" {
		query["user_id"] = userID
	}

	result, err := r.collection.DeleteMany(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to purge old notifications: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *mongoNotificationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	query := bson.M{
		"expires_at": bson.M{"$gt": time.Time{}, "$lte": now},
	}
	result, err := r.collection.DeleteMany(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %w", err)
	}
	return result.DeletedCount, nil
}
