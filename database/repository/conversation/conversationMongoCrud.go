package conversationRepo

import (
	"context"
	"fmt"
	"time"

	"renthaven/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create inserts a new conversation document.
func (repo *MongoConversationRepo) Create(ctx context.Context, conv *models.Conversation) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.convColl.InsertOne(ctx, conv); err != nil {
		return fmt.Errorf("error creating conversation: %w", err)
	}
	return nil
}

// GetByID retrieves a conversation by its ID.
func (repo *MongoConversationRepo) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var conv models.Conversation
	if err := repo.convColl.FindOne(ctx, bson.M{"id": id}).Decode(&conv); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching conversation %s: %w", id, err)
	}
	return &conv, nil
}

// ListByUser returns all conversations where the user is tenant or landlord.
func (repo *MongoConversationRepo) ListByUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"$or": bson.A{
			bson.M{"tenant_id": userID},
			bson.M{"landlord_id": userID},
		},
	}
	cursor, err := repo.convColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error querying conversations: %w", err)
	}
	defer cursor.Close(ctx)

	var conversations []models.Conversation
	for cursor.Next(ctx) {
		var conv models.Conversation
		if err := cursor.Decode(&conv); err != nil {
			return nil, fmt.Errorf("error decoding conversation: %w", err)
		}
		conversations = append(conversations, conv)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return conversations, nil
}

// FindByParticipants looks up the conversation for a tenant, landlord and
// property triple.
func (repo *MongoConversationRepo) FindByParticipants(ctx context.Context, tenantID, landlordID string, propertyID int) (*models.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"tenant_id":   tenantID,
		"landlord_id": landlordID,
		"property_id": propertyID,
	}
	var conv models.Conversation
	if err := repo.convColl.FindOne(ctx, filter).Decode(&conv); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding conversation: %w", err)
	}
	return &conv, nil
}

// CreateMessage inserts a new chat message document.
func (repo *MongoConversationRepo) CreateMessage(ctx context.Context, msg *models.Message) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.msgColl.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("error creating message: %w", err)
	}
	return nil
}

// ListMessages returns the most recent messages for a conversation in
// chronological order.
func (repo *MongoConversationRepo) ListMessages(ctx context.Context, conversationID string, limit int64) ([]models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"conversation_id": conversationID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := repo.msgColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	for cursor.Next(ctx) {
		var msg models.Message
		if err := cursor.Decode(&msg); err != nil {
			return nil, fmt.Errorf("error decoding message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	// Reverse into chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
