package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the overlap queries depend on. Safe to
// call on every startup; Mongo treats existing definitions as no-ops.
func (s *MongoBookingStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		// Range index backing the half-open overlap scans per participant.
		{
			Keys: bson.D{
				{Key: "participants.id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "start", Value: 1},
			},
		},
		// Same for resources.
		{
			Keys: bson.D{
				{Key: "resources.type", Value: 1},
				{Key: "resources.name", Value: 1},
				{Key: "status", Value: 1},
				{Key: "start", Value: 1},
			},
		},
		// Completion sweep.
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "start", Value: 1},
			},
		},
	}

	if _, err := s.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
