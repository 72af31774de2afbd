package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultServerSelectionTimeout = 5 * time.Second
	defaultConnectTimeout         = 5 * time.Second
)

// NewMongoConnection creates a new MongoDB client for the given URI and
// pings the server to ensure connectivity.
func NewMongoConnection(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(defaultServerSelectionTimeout).
		SetConnectTimeout(defaultConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client, nil
}

// EnsureStudentStatsIndexes creates the indexes the student stats
// collection is queried by. Index creation is idempotent.
func EnsureStudentStatsIndexes(ctx context.Context, coll *mongo.Collection) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "uniq_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_id_idx"),
		},
		{
			Keys:    bson.D{{Key: "phone_number", Value: 1}},
			Options: options.Index().SetName("phone_number_idx"),
		},
		{
			Keys:    bson.D{{Key: "current_lesson", Value: 1}},
			Options: options.Index().SetName("current_lesson_idx"),
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("name_idx"),
		},
		// Timestamps are stored as canonical display strings, which is
		// why these are plain ascending string indexes.
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetName("updated_at_idx"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetName("created_at_idx"),
		},
		{
			Keys:    bson.D{{Key: "lessons.paid", Value: 1}},
			Options: options.Index().SetName("lessons_paid_idx"),
		},
	}
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create student stats indexes: %w", err)
	}
	return nil
}

// EnsureRunLogIndexes creates the indexes for the run log collection.
func EnsureRunLogIndexes(ctx context.Context, coll *mongo.Collection) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().SetName("timestamp_idx"),
		},
		{
			Keys:    bson.D{{Key: "log_level", Value: 1}},
			Options: options.Index().SetName("log_level_idx"),
		},
		{
			Keys:    bson.D{{Key: "source", Value: 1}},
			Options: options.Index().SetName("source_idx"),
		},
		{
			Keys:    bson.D{{Key: "log_level", Value: 1}, {Key: "timestamp", Value: 1}},
			Options: options.Index().SetName("level_timestamp_idx"),
		},
		{
			Keys:    bson.D{{Key: "source", Value: 1}, {Key: "timestamp", Value: 1}},
			Options: options.Index().SetName("source_timestamp_idx"),
		},
	}
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create run log indexes: %w", err)
	}
	return nil
}
