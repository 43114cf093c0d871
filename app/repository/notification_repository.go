package repository

import (
	"context"
	"fmt"
	"time"

	"rps-backend/app/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const notificationCollection = "notifications"

// notificationRepository menyimpan inbox notifikasi di MongoDB.
type notificationRepository struct {
	mongoDB *mongo.Database
}

// NewNotificationRepository membuat inbox notifikasi berbasis MongoDB.
func NewNotificationRepository(mongoDB *mongo.Database) NotificationRepository {
	return &notificationRepository{mongoDB: mongoDB}
}

// EnsureNotificationIndexes membuat index (userId, createdAt) untuk listing inbox.
func EnsureNotificationIndexes(ctx context.Context, mongoDB *mongo.Database) error {
	_, err := mongoDB.Collection(notificationCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}

func (r *notificationRepository) Insert(ctx context.Context, n *model.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	res, err := r.mongoDB.Collection(notificationCollection).InsertOne(ctx, n)
	if err != nil {
		return fmt.Errorf("mongo insert error: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		n.ID = oid
	}
	return nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]model.Notification, error) {
	filter := bson.M{"userId": userID}
	if unreadOnly {
		filter["read"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(100)
	cur, err := r.mongoDB.Collection(notificationCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []model.Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead hanya berlaku untuk notifikasi milik userID sendiri.
func (r *notificationRepository) MarkRead(ctx context.Context, userID uuid.UUID, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.mongoDB.Collection(notificationCollection).UpdateOne(ctx,
		bson.M{"_id": objID, "userId": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return fmt.Errorf("mongo update error: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
