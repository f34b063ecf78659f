package db

import (
	"context"
	"fmt"

	"files-bot/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const historyCollection = "history"

// History stores the operations users triggered in MongoDB
type History struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewHistory connects to MongoDB and verifies the connection
func NewHistory(ctx context.Context, uri, database string) (*History, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &History{
		client: client,
		coll:   client.Database(database).Collection(historyCollection),
	}, nil
}

// Record appends an entry
func (h *History) Record(ctx context.Context, entry models.HistoryEntry) error {
	_, err := h.coll.InsertOne(ctx, entry)
	return err
}

// Recent returns the latest entries of a user, newest first
func (h *History) Recent(ctx context.Context, userID int64, limit int64) ([]models.HistoryEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cur, err := h.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []models.HistoryEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Close disconnects from MongoDB
func (h *History) Close(ctx context.Context) error {
	return h.client.Disconnect(ctx)
}
