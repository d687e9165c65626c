package models

import "time"

// SenderType identifies which party authored a chat message.
type SenderType string

const (
	SenderTenant    SenderType = "tenant"
	SenderLandlord  SenderType = "landlord"
	SenderAssistant SenderType = "assistant"
)

// Conversation is a chat thread between a tenant and a landlord about one
// property.
type Conversation struct {
	ID         string    `bson:"id" json:"id"`
	PropertyID int       `bson:"property_id" json:"property_id"`
	TenantID   string    `bson:"tenant_id" json:"tenant_id"`
	LandlordID string    `bson:"landlord_id" json:"landlord_id"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// Message is a single persisted chat message within a conversation.
type Message struct {
	ID             string     `bson:"id" json:"id"`
	ConversationID string     `bson:"conversation_id" json:"conversation_id"`
	SenderID       string     `bson:"sender_id" json:"sender_id"`
	SenderType     SenderType `bson:"sender_type" json:"sender_type"`
	Content        string     `bson:"content" json:"content"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
}

// AssistantTaskPayload is the queue payload that triggers the scheduling
// assistant for one inbound tenant message.
type AssistantTaskPayload struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
	Content        string `json:"content"`
	TenantID       string `json:"tenant_id"`
	LandlordID     string `json:"landlord_id"`
	PropertyID     int    `json:"property_id"`
}
