package propertyRepo

import (
	"context"
	"fmt"
	"time"

	"renthaven/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const propertyCounterID = "properties"

func (repo *MongoPropertyRepo) nextSequence(ctx context.Context) (int, error) {
	filter := bson.M{"_id": propertyCounterID}
	update := bson.M{"$inc": bson.M{"seq": 1}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int `bson:"seq"`
	}
	if err := repo.counterColl.FindOneAndUpdate(ctx, filter, update, opts).Decode(&counter); err != nil {
		return 0, fmt.Errorf("error incrementing property counter: %w", err)
	}
	return counter.Seq, nil
}

// Create inserts a new property document, assigning its integer ID.
func (repo *MongoPropertyRepo) Create(ctx context.Context, property *models.Property) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	id, err := repo.nextSequence(ctx)
	if err != nil {
		return err
	}
	property.ID = id
	property.CreatedAt = time.Now()
	property.UpdatedAt = property.CreatedAt

	if _, err := repo.coll.InsertOne(ctx, property); err != nil {
		return fmt.Errorf("error creating property: %w", err)
	}
	return nil
}

// GetByID retrieves a property by its integer ID.
func (repo *MongoPropertyRepo) GetByID(ctx context.Context, id int) (*models.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var property models.Property
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&property); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching property %d: %w", id, err)
	}
	return &property, nil
}

// ListByLandlord returns all properties owned by a landlord.
func (repo *MongoPropertyRepo) ListByLandlord(ctx context.Context, landlordID string) ([]models.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return repo.findAll(ctx, bson.M{"landlord_id": landlordID})
}

// ListPublished returns all published properties.
func (repo *MongoPropertyRepo) ListPublished(ctx context.Context) ([]models.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return repo.findAll(ctx, bson.M{"published": true})
}

// Update replaces an existing property document.
func (repo *MongoPropertyRepo) Update(ctx context.Context, property *models.Property) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	property.UpdatedAt = time.Now()
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"id": property.ID}, property)
	if err != nil {
		return fmt.Errorf("error updating property %d: %w", property.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a property document.
func (repo *MongoPropertyRepo) Delete(ctx context.Context, id int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := repo.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("error deleting property %d: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (repo *MongoPropertyRepo) findAll(ctx context.Context, filter bson.M) ([]models.Property, error) {
	cursor, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error querying properties: %w", err)
	}
	defer cursor.Close(ctx)

	var properties []models.Property
	for cursor.Next(ctx) {
		var property models.Property
		if err := cursor.Decode(&property); err != nil {
			return nil, fmt.Errorf("error decoding property: %w", err)
		}
		properties = append(properties, property)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return properties, nil
}
