package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"renthaven/models"
	"renthaven/services/chat"
	"renthaven/utils"
)

// ChatSvc and ChatHub are wired in main before the router starts serving.
var (
	ChatSvc chat.ChatService
	ChatHub *chat.Hub
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Token auth happens in middleware; origin checks stay with the proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// CreateConversation opens (or reuses) the thread between the calling
// tenant and a property's landlord.
func CreateConversation(c *gin.Context) {
	var input struct {
		PropertyID int    `json:"propertyId" binding:"required"`
		LandlordID string `json:"landlordId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	conv, err := ChatSvc.CreateConversation(c.Request.Context(), input.PropertyID, c.GetString("userID"), input.LandlordID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create conversation", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, conv)
}

// ListConversations returns the caller's threads, newest first.
func ListConversations(c *gin.Context) {
	convs, err := ChatSvc.ListConversations(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list conversations", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": convs})
}

// ListConversationMessages returns a thread's history in chronological order.
func ListConversationMessages(c *gin.Context) {
	conv, ok := authorizedConversation(c)
	if !ok {
		return
	}

	limit := int64(50)
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	msgs, err := ChatSvc.ListMessages(c.Request.Context(), conv.ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// SendMessage posts a message into a thread. Tenant messages may also
// wake the scheduling assistant; that happens off the request path.
func SendMessage(c *gin.Context) {
	conv, ok := authorizedConversation(c)
	if !ok {
		return
	}

	var input struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	caller := c.GetString("userID")
	senderType := models.SenderTenant
	if caller == conv.LandlordID {
		senderType = models.SenderLandlord
	}

	msg, err := ChatSvc.SendMessage(c.Request.Context(), conv.ID, caller, senderType, input.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// SubscribeConversation upgrades to a websocket and streams the
// thread's new messages until the client disconnects.
func SubscribeConversation(c *gin.Context) {
	conv, ok := authorizedConversation(c)
	if !ok {
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.GetLogger().Warn("websocket upgrade failed",
			zap.String("conversationID", conv.ID), zap.Error(err))
		return
	}

	ChatHub.Subscribe(conn, conv.ID)
}

// authorizedConversation loads the :id conversation and verifies the
// caller is one of its participants. Writes the error response itself.
func authorizedConversation(c *gin.Context) (*models.Conversation, bool) {
	conv, err := ChatSvc.GetConversation(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return nil, false
	}

	caller := c.GetString("userID")
	if conv.TenantID != caller && conv.LandlordID != caller {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return nil, false
	}
	return conv, true
}
