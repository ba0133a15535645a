package migrations

import (
	"context"
	"fmt"

	"DoctorPortal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Indexes lists the indexes each collection should carry. None is unique:
// existing data may already hold duplicate bookings or user emails, and a
// unique build would fail on them.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		store.BookingCollection: {
			{Keys: bson.D{{Key: "date", Value: 1}}},
			{Keys: bson.D{{Key: "patient", Value: 1}}},
			{Keys: bson.D{{Key: "treatment", Value: 1}, {Key: "date", Value: 1}, {Key: "patient", Value: 1}}},
		},
		store.UserCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}},
		},
		store.DoctorCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}},
		},
	}
}

/*
* Create the indexes collection by collection
* createIndexes is idempotent so this runs on every start
 */
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	for _, coll := range []string{store.BookingCollection, store.UserCollection, store.DoctorCollection} {
		names, err := db.Collection(coll).Indexes().CreateMany(ctx, Indexes()[coll])
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
		log.Info("indexes ensured", zap.String("collection", coll), zap.Strings("indexes", names))
	}
	return nil
}
