package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"renthaven/config"
	propertyRepo "renthaven/database/repository/property"
	"renthaven/models"
	"renthaven/services/chat"
	ai "renthaven/services/intelligence"
	"renthaven/services/scheduling"
	"renthaven/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeAssistantRespond = "assistant:respond"

// RedisOpt builds the asynq Redis options from the app config.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// AsynqDispatcher enqueues assistant tasks on the work queue.
type AsynqDispatcher struct {
	client *asynq.Client
}

func NewAsynqDispatcher(opt asynq.RedisClientOpt) *AsynqDispatcher {
	return &AsynqDispatcher{client: asynq.NewClient(opt)}
}

// Dispatch enqueues one assistant task with bounded retries. Tasks that
// exhaust their retries land in the asynq dead-letter archive.
func (d *AsynqDispatcher) Dispatch(ctx context.Context, payload models.AssistantTaskPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal assistant payload: %w", err)
	}
	task := asynq.NewTask(TypeAssistantRespond, data)
	_, err = d.client.EnqueueContext(ctx, task,
		asynq.MaxRetry(3),
		asynq.Timeout(60*time.Second))
	if err != nil {
		return fmt.Errorf("failed to enqueue assistant task: %w", err)
	}
	return nil
}

// AssistantWorker processes assistant tasks: orchestrate, compose, reply.
type AssistantWorker struct {
	Orchestrator scheduling.SchedulingOrchestrator
	Composer     ai.ResponseComposer
	Chat         chat.ChatService
	Properties   propertyRepo.PropertyRepository
}

// InitAssistantWorker runs the async worker in background.
func InitAssistantWorker(w *AssistantWorker) {
	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAssistantRespond, w.HandleAssistantTask)

	// Start async worker with retry logic
	go func() {
		log.Println("[AssistantWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[AssistantWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[AssistantWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// HandleAssistantTask runs one assistant invocation end to end. Errors
// returned here trigger asynq's bounded retry, so once a scheduling flow has
// run the task resolves to nil: the orchestrator's flows are not idempotent
// and a retry would collide with the state the first run wrote.
func (w *AssistantWorker) HandleAssistantTask(ctx context.Context, task *asynq.Task) error {
	logger := utils.GetLogger()

	var p models.AssistantTaskPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		logger.Error("invalid assistant task payload", zap.Error(err))
		// Malformed payloads cannot succeed on retry.
		return nil
	}

	outcome := w.Orchestrator.Handle(ctx, p.Content, p.TenantID, p.LandlordID, p.PropertyID, p.ConversationID)

	info := ai.ReplyContext{
		TenantName:   p.TenantID,
		LandlordName: p.LandlordID,
	}
	if property, err := w.Properties.GetByID(ctx, p.PropertyID); err == nil {
		info.PropertyTitle = property.Title
	}

	var reply string
	var err error
	if outcome.IsSchedulingResponse {
		reply, err = w.Composer.ComposeSchedulingReply(ctx, outcome, info)
	} else {
		reply, err = w.Composer.ComposeChatReply(ctx, p.Content, info)
	}
	if err != nil {
		if outcome.IsSchedulingResponse {
			// The orchestrator may already have written a booking. A retry
			// would re-run it against its own record, so the failure is
			// surfaced to operators instead of the retry loop.
			logger.Error("dropping scheduling reply after compose failure",
				zap.String("conversationID", p.ConversationID),
				zap.String("action", string(outcome.Action)), zap.Error(err))
			return nil
		}
		// No scheduling state was touched; staying silent is safe.
		logger.Warn("skipping assistant reply",
			zap.String("conversationID", p.ConversationID), zap.Error(err))
		return nil
	}
	if reply == "" {
		return nil
	}

	if _, err := w.Chat.SendMessage(ctx, p.ConversationID, p.LandlordID, models.SenderAssistant, reply); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		logger.Error("failed to send assistant reply",
			zap.String("conversationID", p.ConversationID),
			zap.String("action", string(outcome.Action)), zap.Error(err))
		if outcome.IsSchedulingResponse {
			return nil
		}
		return err
	}

	logger.Info("assistant replied",
		zap.String("conversationID", p.ConversationID),
		zap.String("action", string(outcome.Action)))
	return nil
}
