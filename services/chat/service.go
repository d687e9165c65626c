package chat

import (
	"context"
	"fmt"
	"time"

	conversationRepo "renthaven/database/repository/conversation"
	"renthaven/models"
	"renthaven/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AssistantDispatcher hands an inbound tenant message to the scheduling
// assistant as an independent unit of work. Implementations must not block
// on the assistant's processing.
type AssistantDispatcher interface {
	Dispatch(ctx context.Context, payload models.AssistantTaskPayload) error
}

// ChatService owns conversations and messages and triggers the scheduling
// assistant for tenant messages.
type ChatService interface {
	CreateConversation(ctx context.Context, propertyID int, tenantID, landlordID string) (*models.Conversation, error)
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]models.Conversation, error)
	ListMessages(ctx context.Context, conversationID string, limit int64) ([]models.Message, error)
	SendMessage(ctx context.Context, conversationID, senderID string, senderType models.SenderType, content string) (*models.Message, error)
}

// DefaultChatService is the production implementation.
type DefaultChatService struct {
	Repo             conversationRepo.ConversationRepository
	Hub              Broadcaster
	Dispatcher       AssistantDispatcher
	AssistantEnabled bool
}

// CreateConversation returns the existing conversation for the triple or
// creates a new one.
func (s *DefaultChatService) CreateConversation(ctx context.Context, propertyID int, tenantID, landlordID string) (*models.Conversation, error) {
	existing, err := s.Repo.FindByParticipants(ctx, tenantID, landlordID, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up conversation: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	conv := &models.Conversation{
		ID:         uuid.New().String(),
		PropertyID: propertyID,
		TenantID:   tenantID,
		LandlordID: landlordID,
		CreatedAt:  time.Now(),
	}
	if err := s.Repo.Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

func (s *DefaultChatService) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *DefaultChatService) ListConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	return s.Repo.ListByUser(ctx, userID)
}

func (s *DefaultChatService) ListMessages(ctx context.Context, conversationID string, limit int64) ([]models.Message, error) {
	return s.Repo.ListMessages(ctx, conversationID, limit)
}

// SendMessage persists and broadcasts a chat message, then — for tenant
// messages — hands it to the scheduling assistant. The assistant path is
// best-effort: its failure is logged and swallowed, never surfaced to the
// sender.
func (s *DefaultChatService) SendMessage(ctx context.Context, conversationID, senderID string, senderType models.SenderType, content string) (*models.Message, error) {
	conv, err := s.Repo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderType:     senderType,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	if err := s.Repo.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to persist message: %w", err)
	}

	s.Hub.Broadcast(conversationID, msg)

	if senderType == models.SenderTenant && s.AssistantEnabled && s.Dispatcher != nil {
		payload := models.AssistantTaskPayload{
			ConversationID: conv.ID,
			MessageID:      msg.ID,
			Content:        content,
			TenantID:       conv.TenantID,
			LandlordID:     conv.LandlordID,
			PropertyID:     conv.PropertyID,
		}
		if err := s.Dispatcher.Dispatch(ctx, payload); err != nil {
			utils.GetLogger().Warn("failed to dispatch assistant task",
				zap.String("conversationID", conv.ID),
				zap.String("messageID", msg.ID),
				zap.Error(err))
		}
	}

	return msg, nil
}
