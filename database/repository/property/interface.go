// File: database/repository/property/interface.go
package propertyRepo

import (
	"context"
	"errors"

	"renthaven/database"
	"renthaven/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("property not found")

type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) error
	GetByID(ctx context.Context, id int) (*models.Property, error)
	ListByLandlord(ctx context.Context, landlordID string) ([]models.Property, error)
	ListPublished(ctx context.Context) ([]models.Property, error)
	Update(ctx context.Context, property *models.Property) error
	Delete(ctx context.Context, id int) error
}

// MongoPropertyRepo implements PropertyRepository using MongoDB.
type MongoPropertyRepo struct {
	coll        *mongo.Collection
	counterColl *mongo.Collection
}

// NewMongoPropertyRepo constructs a new instance of MongoPropertyRepo.
func NewMongoPropertyRepo() *MongoPropertyRepo {
	db := database.MongoClient.Database("renthaven")
	return &MongoPropertyRepo{
		coll:        db.Collection("properties"),
		counterColl: db.Collection("counters"),
	}
}
