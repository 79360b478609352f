package bookingRepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"meetsync/database"
	"meetsync/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBookingStore is the production BookingStore backed by MongoDB.
type MongoBookingStore struct {
	coll *mongo.Collection
}

// NewMongoBookingStore returns a store bound to the meetsync database.
func NewMongoBookingStore() *MongoBookingStore {
	return &MongoBookingStore{
		coll: database.MongoClient.Database("meetsync").Collection("bookings"),
	}
}

const opTimeout = 5 * time.Second

func (s *MongoBookingStore) FindOverlapping(
	ctx context.Context,
	kind models.EntityKind,
	key string,
	start, end time.Time,
	statuses []models.BookingStatus,
	excludeID string,
) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{
		"status": bson.M{"$in": statuses},
		"start":  bson.M{"$lt": end},
		"end":    bson.M{"$gt": start},
	}
	switch kind {
	case models.EntityParticipant:
		filter["participants.id"] = key
	case models.EntityResource:
		resType, resName, ok := strings.Cut(key, "/")
		if !ok {
			return nil, fmt.Errorf("malformed resource key %q", key)
		}
		filter["resources"] = bson.M{
			"$elemMatch": bson.M{"type": resType, "name": resName},
		}
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}

	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("overlap query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.Booking
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("error decoding overlap results: %w", err)
	}
	return results, nil
}

func (s *MongoBookingStore) Insert(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := s.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// Update replaces the stored document guarded by its version field and
// increments the version, so a concurrent writer surfaces as
// ErrVersionConflict instead of a silent overwrite.
func (s *MongoBookingStore) Update(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	expected := b.Version
	b.Version = expected + 1
	filter := bson.M{"id": b.ID, "version": expected}
	res, err := s.coll.ReplaceOne(ctx, filter, b)
	if err != nil {
		b.Version = expected
		return fmt.Errorf("failed to update booking %s: %w", b.ID, err)
	}
	if res.MatchedCount == 0 {
		b.Version = expected
		return ErrVersionConflict
	}
	return nil
}

func (s *MongoBookingStore) Load(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var b models.Booking
	err := s.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking %s: %w", id, err)
	}
	return &b, nil
}

func (s *MongoBookingStore) ListConfirmedStartedBefore(ctx context.Context, t time.Time) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{
		"status": models.StatusConfirmed,
		"start":  bson.M{"$lte": t},
	}
	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("completion sweep query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.Booking
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("error decoding completion sweep results: %w", err)
	}
	return results, nil
}
