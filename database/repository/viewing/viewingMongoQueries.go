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

var activeStatuses = bson.A{models.ViewingStatusPending, models.ViewingStatusApproved}

// FindActive returns the most recently created active request for the
// (tenant, landlord, property) triple, or (nil, nil) when there is none.
func (repo *MongoViewingRepo) FindActive(ctx context.Context, tenantID, landlordID string, propertyID int) (*models.ViewingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"tenant_id":   tenantID,
		"landlord_id": landlordID,
		"property_id": propertyID,
		"status":      bson.M{"$in": activeStatuses},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var req models.ViewingRequest
	if err := repo.coll.FindOne(ctx, filter, opts).Decode(&req); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding active viewing request: %w", err)
	}
	return &req, nil
}

// FindConflicting returns active requests for the landlord whose requested
// time falls within [from, to].
func (repo *MongoViewingRepo) FindConflicting(ctx context.Context, landlordID string, from, to time.Time) ([]models.ViewingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"landlord_id":         landlordID,
		"status":              bson.M{"$in": activeStatuses},
		"requested_date_time": bson.M{"$gte": from, "$lte": to},
	}
	return repo.findAll(ctx, filter, nil)
}

// ListByTenant returns all viewing requests created by a tenant, newest first.
func (repo *MongoViewingRepo) ListByTenant(ctx context.Context, tenantID string) ([]models.ViewingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	sort := bson.D{{Key: "created_at", Value: -1}}
	return repo.findAll(ctx, bson.M{"tenant_id": tenantID}, sort)
}

// ListByLandlord returns all viewing requests targeting a landlord, newest first.
func (repo *MongoViewingRepo) ListByLandlord(ctx context.Context, landlordID string) ([]models.ViewingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	sort := bson.D{{Key: "created_at", Value: -1}}
	return repo.findAll(ctx, bson.M{"landlord_id": landlordID}, sort)
}

// FindStale returns pending or proposed requests whose requested time is
// older than the cutoff.
func (repo *MongoViewingRepo) FindStale(ctx context.Context, cutoff time.Time) ([]models.ViewingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"status":              bson.M{"$in": bson.A{models.ViewingStatusPending, models.ViewingStatusProposed}},
		"requested_date_time": bson.M{"$lt": cutoff},
	}
	return repo.findAll(ctx, filter, nil)
}

func (repo *MongoViewingRepo) findAll(ctx context.Context, filter bson.M, sort bson.D) ([]models.ViewingRequest, error) {
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error querying viewing requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []models.ViewingRequest
	for cursor.Next(ctx) {
		var req models.ViewingRequest
		if err := cursor.Decode(&req); err != nil {
			return nil, fmt.Errorf("error decoding viewing request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return requests, nil
}
