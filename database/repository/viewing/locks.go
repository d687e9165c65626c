// File: database/repository/viewing/locks.go
package viewingRepo

import (
	"context"
	"fmt"
	"time"

	"renthaven/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LandlordLocker serializes booking writes per landlord. The lock is held
// across the availability check and the subsequent create/reschedule so that
// two near-simultaneous requests for overlapping slots cannot both pass the
// check-then-act sequence.
type LandlordLocker interface {
	// Acquire blocks until the landlord lock is held or ctx expires, and
	// returns a release function.
	Acquire(ctx context.Context, landlordID string) (func(), error)
}

// lockDocument is an advisory lock row. The TTL index on expires_at reclaims
// locks abandoned by a crashed process.
type lockDocument struct {
	ID        string    `bson:"_id"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

const (
	lockKeyPrefix = "viewing-lock:"
	lockTTL       = 10 * time.Second
	lockRetryWait = 100 * time.Millisecond
)

// MongoLandlordLocker implements LandlordLocker on a Mongo lock collection
// with unique _id inserts.
type MongoLandlordLocker struct {
	coll *mongo.Collection
}

// NewMongoLandlordLocker constructs a locker backed by the locks collection.
func NewMongoLandlordLocker() *MongoLandlordLocker {
	db := database.MongoClient.Database("renthaven")
	return &MongoLandlordLocker{coll: db.Collection("locks")}
}

// EnsureIndexes creates the TTL index that expires abandoned locks.
func (l *MongoLandlordLocker) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("lock_ttl_idx"),
	}
	if _, err := l.coll.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("failed to create lock TTL index: %w", err)
	}
	return nil
}

// Acquire inserts the lock document, retrying while another holder exists.
// Expired locks are deleted eagerly since the Mongo TTL reaper only runs
// about once a minute.
func (l *MongoLandlordLocker) Acquire(ctx context.Context, landlordID string) (func(), error) {
	key := lockKeyPrefix + landlordID

	for {
		now := time.Now()
		doc := lockDocument{
			ID:        key,
			ExpiresAt: now.Add(lockTTL),
			CreatedAt: now,
		}
		_, err := l.coll.InsertOne(ctx, doc)
		if err == nil {
			return func() { l.release(key) }, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("error acquiring landlord lock %s: %w", key, err)
		}

		// Lock held: clear it if it has expired, then wait and retry.
		_, _ = l.coll.DeleteOne(ctx, bson.M{"_id": key, "expires_at": bson.M{"$lt": now}})

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timed out waiting for landlord lock %s: %w", key, ctx.Err())
		case <-time.After(lockRetryWait):
		}
	}
}

func (l *MongoLandlordLocker) release(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = l.coll.DeleteOne(ctx, bson.M{"_id": key})
}
