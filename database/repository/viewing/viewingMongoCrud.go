package viewingRepo

import (
	"context"
	"fmt"
	"time"

	"renthaven/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const viewingCounterID = "viewing_requests"

// nextSequence atomically increments and returns the integer ID counter for
// viewing requests.
func (repo *MongoViewingRepo) nextSequence(ctx context.Context) (int, error) {
	filter := bson.M{"_id": viewingCounterID}
	update := bson.M{"$inc": bson.M{"seq": 1}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int `bson:"seq"`
	}
	if err := repo.counterColl.FindOneAndUpdate(ctx, filter, update, opts).Decode(&counter); err != nil {
		return 0, fmt.Errorf("error incrementing viewing request counter: %w", err)
	}
	return counter.Seq, nil
}

// Create inserts a new viewing request document, assigning its integer ID.
func (repo *MongoViewingRepo) Create(ctx context.Context, req *models.ViewingRequest) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	id, err := repo.nextSequence(ctx)
	if err != nil {
		return err
	}
	req.ID = id

	if _, err := repo.coll.InsertOne(ctx, req); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("error creating viewing request %d: %w", req.ID, ErrConstraint)
		}
		return fmt.Errorf("error creating viewing request: %w", err)
	}
	return nil
}

// GetByID retrieves a viewing request by its integer ID.
func (repo *MongoViewingRepo) GetByID(ctx context.Context, id int) (*models.ViewingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var req models.ViewingRequest
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&req); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching viewing request %d: %w", id, err)
	}
	return &req, nil
}

// Update replaces an existing viewing request document.
func (repo *MongoViewingRepo) Update(ctx context.Context, req *models.ViewingRequest) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": req.ID}
	res, err := repo.coll.ReplaceOne(ctx, filter, req)
	if err != nil {
		return fmt.Errorf("error updating viewing request %d: %w", req.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a viewing request. Deleting an absent ID is a no-op.
func (repo *MongoViewingRepo) Delete(ctx context.Context, id int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.coll.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return fmt.Errorf("error deleting viewing request %d: %w", id, err)
	}
	return nil
}
