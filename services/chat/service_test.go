package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	conversationRepo "renthaven/database/repository/conversation"
	"renthaven/models"
)

type fakeConversationRepo struct {
	conversations map[string]models.Conversation
	messages      []models.Message
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[string]models.Conversation)}
}

func (r *fakeConversationRepo) Create(ctx context.Context, conv *models.Conversation) error {
	r.conversations[conv.ID] = *conv
	return nil
}

func (r *fakeConversationRepo) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	conv, ok := r.conversations[id]
	if !ok {
		return nil, conversationRepo.ErrNotFound
	}
	return &conv, nil
}

func (r *fakeConversationRepo) ListByUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	var out []models.Conversation
	for _, conv := range r.conversations {
		if conv.TenantID == userID || conv.LandlordID == userID {
			out = append(out, conv)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) FindByParticipants(ctx context.Context, tenantID, landlordID string, propertyID int) (*models.Conversation, error) {
	for _, conv := range r.conversations {
		if conv.TenantID == tenantID && conv.LandlordID == landlordID && conv.PropertyID == propertyID {
			found := conv
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeConversationRepo) CreateMessage(ctx context.Context, msg *models.Message) error {
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *fakeConversationRepo) ListMessages(ctx context.Context, conversationID string, limit int64) ([]models.Message, error) {
	var out []models.Message
	for _, msg := range r.messages {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	return out, nil
}

type recordingHub struct {
	broadcasts int
}

func (h *recordingHub) Broadcast(conversationID string, payload any) {
	h.broadcasts++
}

type recordingDispatcher struct {
	payloads []models.AssistantTaskPayload
	err      error
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, payload models.AssistantTaskPayload) error {
	d.payloads = append(d.payloads, payload)
	return d.err
}

func newChatFixture(t *testing.T) (*DefaultChatService, *fakeConversationRepo, *recordingHub, *recordingDispatcher) {
	t.Helper()
	repo := newFakeConversationRepo()
	hub := &recordingHub{}
	dispatcher := &recordingDispatcher{}
	svc := &DefaultChatService{
		Repo:             repo,
		Hub:              hub,
		Dispatcher:       dispatcher,
		AssistantEnabled: true,
	}
	return svc, repo, hub, dispatcher
}

func TestCreateConversationReusesExisting(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := newChatFixture(t)

	first, err := svc.CreateConversation(context.Background(), 1, "tenant-1", "landlord-1")
	require.NoError(t, err)

	second, err := svc.CreateConversation(context.Background(), 1, "tenant-1", "landlord-1")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	other, err := svc.CreateConversation(context.Background(), 2, "tenant-1", "landlord-1")
	require.NoError(t, err)
	require.NotEqual(t, first.ID, other.ID)
}

func TestSendTenantMessageDispatchesAssistant(t *testing.T) {
	t.Parallel()
	svc, _, hub, dispatcher := newChatFixture(t)

	conv, err := svc.CreateConversation(context.Background(), 7, "tenant-1", "landlord-1")
	require.NoError(t, err)

	msg, err := svc.SendMessage(context.Background(), conv.ID, "tenant-1", models.SenderTenant, "can I view Tuesday at 11?")
	require.NoError(t, err)
	require.Equal(t, 1, hub.broadcasts)
	require.Len(t, dispatcher.payloads, 1)

	payload := dispatcher.payloads[0]
	require.Equal(t, conv.ID, payload.ConversationID)
	require.Equal(t, msg.ID, payload.MessageID)
	require.Equal(t, "can I view Tuesday at 11?", payload.Content)
	require.Equal(t, "tenant-1", payload.TenantID)
	require.Equal(t, "landlord-1", payload.LandlordID)
	require.Equal(t, 7, payload.PropertyID)
}

func TestSendMessageSkipsAssistantForNonTenantSenders(t *testing.T) {
	t.Parallel()
	svc, _, hub, dispatcher := newChatFixture(t)

	conv, err := svc.CreateConversation(context.Background(), 1, "tenant-1", "landlord-1")
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), conv.ID, "landlord-1", models.SenderLandlord, "sure, Tuesday works")
	require.NoError(t, err)
	_, err = svc.SendMessage(context.Background(), conv.ID, "landlord-1", models.SenderAssistant, "your viewing is confirmed")
	require.NoError(t, err)

	require.Equal(t, 2, hub.broadcasts, "every message still reaches the room")
	require.Empty(t, dispatcher.payloads, "assistant replies must not re-trigger the assistant")
}

func TestSendMessageRespectsAssistantToggle(t *testing.T) {
	t.Parallel()
	svc, _, _, dispatcher := newChatFixture(t)
	svc.AssistantEnabled = false

	conv, err := svc.CreateConversation(context.Background(), 1, "tenant-1", "landlord-1")
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), conv.ID, "tenant-1", models.SenderTenant, "can I view Tuesday?")
	require.NoError(t, err)
	require.Empty(t, dispatcher.payloads)
}

func TestSendMessageSwallowsDispatchFailure(t *testing.T) {
	t.Parallel()
	svc, repo, _, dispatcher := newChatFixture(t)
	dispatcher.err = errors.New("queue unavailable")

	conv, err := svc.CreateConversation(context.Background(), 1, "tenant-1", "landlord-1")
	require.NoError(t, err)

	msg, err := svc.SendMessage(context.Background(), conv.ID, "tenant-1", models.SenderTenant, "can I view Tuesday?")
	require.NoError(t, err, "a dead queue must not fail the send")
	require.NotNil(t, msg)
	require.Len(t, repo.messages, 1)
}

func TestSendMessageUnknownConversation(t *testing.T) {
	t.Parallel()
	svc, _, hub, _ := newChatFixture(t)

	_, err := svc.SendMessage(context.Background(), "missing", "tenant-1", models.SenderTenant, "hello?")
	require.ErrorIs(t, err, conversationRepo.ErrNotFound)
	require.Zero(t, hub.broadcasts)
}
