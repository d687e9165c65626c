// FILE: database/repository/viewing/indexes.go
package viewingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the viewing_requests collection.
func (repo *MongoViewingRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		// Unique index on the integer request ID
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Compound index for the active-request disambiguation query
		{
			Keys: bson.D{
				{Key: "tenant_id", Value: 1},
				{Key: "landlord_id", Value: 1},
				{Key: "property_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("active_request_idx"),
		},
		// Compound index for the landlord conflict query
		{
			Keys: bson.D{
				{Key: "landlord_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "requested_date_time", Value: 1},
			},
			Options: options.Index().SetName("landlord_conflict_idx"),
		},
	}

	_, err := repo.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create viewing request indexes: %w", err)
	}
	return nil
}
