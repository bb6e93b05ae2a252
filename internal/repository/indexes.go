package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repositories rely on. The
// unique indexes back the check-then-act paths in the services: under a
// concurrent race the insert itself fails with a duplicate-key error,
// which the repositories translate to the matching domain sentinel.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	byCollection := map[string][]mongo.IndexModel{
		"users": {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"posts": {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "author_id", Value: 1}}},
		},
		"comments": {
			{Keys: bson.D{{Key: "post_id", Value: 1}}},
		},
		"likes": {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "post_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"stories": {
			{Keys: bson.D{{Key: "expires_at", Value: 1}}},
			{Keys: bson.D{{Key: "author_id", Value: 1}}},
		},
		"story_views": {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "story_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
	}

	for coll, models := range byCollection {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
