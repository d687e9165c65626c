// File: database/repository/viewing/interface.go
package viewingRepo

import (
	"context"
	"errors"
	"time"

	"renthaven/database"
	"renthaven/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// Distinguishable persistence error kinds.
var (
	ErrNotFound   = errors.New("viewing request not found")
	ErrConstraint = errors.New("viewing request constraint violation")
)

type ViewingRepository interface {
	Create(ctx context.Context, req *models.ViewingRequest) error
	GetByID(ctx context.Context, id int) (*models.ViewingRequest, error)
	Update(ctx context.Context, req *models.ViewingRequest) error
	// Delete removes a request by ID. Deleting an absent ID is a no-op.
	Delete(ctx context.Context, id int) error
	// FindActive returns the most recently created request with status
	// pending or approved for the (tenant, landlord, property) triple, or
	// (nil, nil) when there is none.
	FindActive(ctx context.Context, tenantID, landlordID string, propertyID int) (*models.ViewingRequest, error)
	// FindConflicting returns active requests for the landlord whose
	// requested time falls within [from, to].
	FindConflicting(ctx context.Context, landlordID string, from, to time.Time) ([]models.ViewingRequest, error)
	ListByTenant(ctx context.Context, tenantID string) ([]models.ViewingRequest, error)
	ListByLandlord(ctx context.Context, landlordID string) ([]models.ViewingRequest, error)
	// FindStale returns non-terminal requests whose requested time is older
	// than the given cutoff.
	FindStale(ctx context.Context, cutoff time.Time) ([]models.ViewingRequest, error)
}

// MongoViewingRepo implements ViewingRepository using MongoDB.
type MongoViewingRepo struct {
	coll        *mongo.Collection
	counterColl *mongo.Collection
}

// NewMongoViewingRepo constructs a new instance of MongoViewingRepo.
func NewMongoViewingRepo() *MongoViewingRepo {
	db := database.MongoClient.Database("renthaven")
	return &MongoViewingRepo{
		coll:        db.Collection("viewing_requests"),
		counterColl: db.Collection("counters"),
	}
}
