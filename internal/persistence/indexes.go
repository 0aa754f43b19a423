package persistence

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureIndexes creates the indexes the cascade queries rely on. Every filter
// in the repositories leads with the company id, so each index does too.
func EnsureIndexes(ctx context.Context, store *Mongo, logger *zap.Logger) error {
	if store == nil || store.Database == nil {
		logger.Warn("no mongo database available; skipping index ensure")
		return nil
	}

	specs := map[string][]mongo.IndexModel{
		CollectionUsers: {
			{Keys: bson.D{{Key: "_cId", Value: 1}, {Key: "department._id", Value: 1}}},
			{Keys: bson.D{{Key: "email", Value: 1}}},
		},
		CollectionEntries: {
			{Keys: bson.D{{Key: "_cId", Value: 1}, {Key: "_dId", Value: 1}}},
			{Keys: bson.D{{Key: "_cId", Value: 1}, {Key: "_uId", Value: 1}}},
		},
		CollectionNotifications: {
			{Keys: bson.D{{Key: "_cId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for collection, models := range specs {
		if _, err := store.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", collection, err)
		}
		logger.Info("ensured indexes", zap.String("collection", collection), zap.Int("count", len(models)))
	}
	return nil
}
