// File: database/repository/conversation/interface.go
package conversationRepo

import (
	"context"
	"errors"

	"renthaven/database"
	"renthaven/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("conversation not found")

type ConversationRepository interface {
	Create(ctx context.Context, conv *models.Conversation) error
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]models.Conversation, error)
	// FindByParticipants returns the conversation for the (tenant, landlord,
	// property) triple, or (nil, nil) when there is none.
	FindByParticipants(ctx context.Context, tenantID, landlordID string, propertyID int) (*models.Conversation, error)

	CreateMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, conversationID string, limit int64) ([]models.Message, error)
}

// MongoConversationRepo implements ConversationRepository using MongoDB.
type MongoConversationRepo struct {
	convColl *mongo.Collection
	msgColl  *mongo.Collection
}

// NewMongoConversationRepo constructs a new instance of MongoConversationRepo.
func NewMongoConversationRepo() *MongoConversationRepo {
	db := database.MongoClient.Database("renthaven")
	return &MongoConversationRepo{
		convColl: db.Collection("conversations"),
		msgColl:  db.Collection("messages"),
	}
}
