package scheduling

import (
	"context"
	"time"

	viewingRepo "renthaven/database/repository/viewing"
	"renthaven/models"
	"renthaven/utils"

	"go.uber.org/zap"
)

// IntentExtractor classifies a tenant message into a structured scheduling
// intent. Implementations must return HasValidDateTime=false rather than
// guessing when the message is ambiguous.
type IntentExtractor interface {
	Classify(ctx context.Context, message string, now time.Time) (models.SchedulingIntent, error)
}

// SchedulingOrchestrator routes a classified tenant message to the create,
// reschedule or cancel flow and returns a structured outcome for the
// response composer.
type SchedulingOrchestrator interface {
	Handle(ctx context.Context, message, tenantID, landlordID string, propertyID int, conversationID string) models.SchedulingOutcome
}

// DefaultSchedulingOrchestrator is the production implementation.
type DefaultSchedulingOrchestrator struct {
	Extractor    IntentExtractor
	Availability AvailabilityChecker
	Requests     ViewingRequestService
	Locker       viewingRepo.LandlordLocker

	// IntentTimeout bounds the extractor call; LockTimeout bounds waiting
	// for the per-landlord lock.
	IntentTimeout time.Duration
	LockTimeout   time.Duration
}

const (
	defaultIntentTimeout = 10 * time.Second
	defaultLockTimeout   = 5 * time.Second
)

func notScheduling() models.SchedulingOutcome {
	return models.SchedulingOutcome{IsSchedulingResponse: false}
}

// Handle classifies the message and runs the matching flow. It never returns
// an error: every failure resolves to a structured outcome.
func (o *DefaultSchedulingOrchestrator) Handle(ctx context.Context, message, tenantID, landlordID string, propertyID int, conversationID string) models.SchedulingOutcome {
	logger := utils.GetLogger()

	intentTimeout := o.IntentTimeout
	if intentTimeout <= 0 {
		intentTimeout = defaultIntentTimeout
	}
	classifyCtx, cancel := context.WithTimeout(ctx, intentTimeout)
	defer cancel()

	intent, err := o.Extractor.Classify(classifyCtx, message, time.Now())
	if err != nil {
		// Fail open: a broken classifier must not block ordinary chat.
		logger.Warn("intent classification failed, treating as non-scheduling",
			zap.String("conversationID", conversationID), zap.Error(err))
		return notScheduling()
	}
	if !intent.IsSchedulingRequest {
		return notScheduling()
	}

	switch intent.Intent {
	case models.IntentScheduleViewing:
		if !intent.HasValidDateTime || intent.RequestedDateTime == nil {
			return clarifyOutcome(intent)
		}
		return o.handleSchedule(ctx, intent, tenantID, landlordID, propertyID)

	case models.IntentReschedule:
		if !intent.HasValidDateTime || intent.RequestedDateTime == nil {
			return clarifyOutcome(intent)
		}
		return o.handleReschedule(ctx, intent, tenantID, landlordID, propertyID)

	case models.IntentCancel:
		return o.handleCancel(ctx, tenantID, landlordID, propertyID)

	default: // ask_availability, none
		return notScheduling()
	}
}

func clarifyOutcome(intent models.SchedulingIntent) models.SchedulingOutcome {
	return models.SchedulingOutcome{
		IsSchedulingResponse: true,
		Action:               models.ActionClarifyDateTime,
		Intent:               intent,
	}
}

// withLandlordLock runs fn while holding the per-landlord advisory lock so
// the availability check and the subsequent write form one critical section.
func (o *DefaultSchedulingOrchestrator) withLandlordLock(ctx context.Context, landlordID string, fn func() models.SchedulingOutcome) (models.SchedulingOutcome, bool) {
	lockTimeout := o.LockTimeout
	if lockTimeout <= 0 {
		lockTimeout = defaultLockTimeout
	}
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	release, err := o.Locker.Acquire(lockCtx, landlordID)
	if err != nil {
		utils.GetLogger().Warn("failed to acquire landlord lock",
			zap.String("landlordID", landlordID), zap.Error(err))
		return models.SchedulingOutcome{}, false
	}
	defer release()

	return fn(), true
}

func (o *DefaultSchedulingOrchestrator) handleSchedule(ctx context.Context, intent models.SchedulingIntent, tenantID, landlordID string, propertyID int) models.SchedulingOutcome {
	requested := *intent.RequestedDateTime

	outcome, ok := o.withLandlordLock(ctx, landlordID, func() models.SchedulingOutcome {
		// Inside the lock the cache is bypassed so a stale cached verdict
		// cannot skip the conflict re-validation.
		check := o.Availability.CheckAvailabilityFresh(ctx, landlordID, requested)
		if !check.Available {
			return models.SchedulingOutcome{
				IsSchedulingResponse: true,
				Action:               models.ActionSuggestAlternatives,
				Reason:               check.Reason,
				Alternatives:         check.Alternatives,
				Intent:               intent,
			}
		}

		req, err := o.Requests.Create(ctx, propertyID, tenantID, landlordID, requested)
		if err != nil {
			// Deliberate UX trade-off carried over from the original design:
			// the tenant is told the slot is confirmed even though nothing
			// was stored. Logged at Error so operators can alert on the
			// said-vs-stored mismatch.
			utils.GetLogger().Error("viewing confirmed verbally without a persisted record",
				zap.String("tenantID", tenantID),
				zap.String("landlordID", landlordID),
				zap.Int("propertyID", propertyID),
				zap.Time("requested", requested),
				zap.Error(err))
			return models.SchedulingOutcome{
				IsSchedulingResponse: true,
				Action:               models.ActionViewingConfirmedVerbal,
				ConfirmedDateTime:    &requested,
				Intent:               intent,
				Persisted:            false,
			}
		}

		return models.SchedulingOutcome{
			IsSchedulingResponse: true,
			Action:               models.ActionViewingCreated,
			ViewingRequestID:     req.ID,
			ConfirmedDateTime:    &req.RequestedDateTime,
			Intent:               intent,
			Persisted:            true,
		}
	})
	if !ok {
		return models.SchedulingOutcome{
			IsSchedulingResponse: true,
			Action:               models.ActionSuggestAlternatives,
			Reason:               retryReason,
			Intent:               intent,
		}
	}
	return outcome
}

func (o *DefaultSchedulingOrchestrator) handleReschedule(ctx context.Context, intent models.SchedulingIntent, tenantID, landlordID string, propertyID int) models.SchedulingOutcome {
	newTime := *intent.RequestedDateTime

	active, err := o.Requests.FindActive(ctx, tenantID, landlordID, propertyID)
	if err != nil {
		return rescheduleFailed(models.FailureDatabaseError, intent, nil)
	}
	if active == nil {
		return rescheduleFailed(models.FailureNoExistingRequest, intent, nil)
	}
	oldTime := active.RequestedDateTime

	outcome, ok := o.withLandlordLock(ctx, landlordID, func() models.SchedulingOutcome {
		check := o.Availability.CheckAvailabilityFresh(ctx, landlordID, newTime)
		if !check.Available {
			out := rescheduleFailed(models.FailureTimeNotAvailable, intent, check.Alternatives)
			out.Reason = check.Reason
			return out
		}

		req, err := o.Requests.Reschedule(ctx, active.ID, newTime)
		if err != nil {
			return rescheduleFailed(models.FailureDatabaseError, intent, nil)
		}
		return models.SchedulingOutcome{
			IsSchedulingResponse: true,
			Action:               models.ActionViewingRescheduled,
			ViewingRequestID:     req.ID,
			PreviousDateTime:     &oldTime,
			ConfirmedDateTime:    &req.RequestedDateTime,
			Intent:               intent,
			Persisted:            true,
		}
	})
	if !ok {
		return rescheduleFailed(models.FailureDatabaseError, intent, nil)
	}
	return outcome
}

func rescheduleFailed(reason string, intent models.SchedulingIntent, alternatives []time.Time) models.SchedulingOutcome {
	return models.SchedulingOutcome{
		IsSchedulingResponse: true,
		Action:               models.ActionRescheduleFailed,
		FailureReason:        reason,
		Alternatives:         alternatives,
		Intent:               intent,
	}
}

func (o *DefaultSchedulingOrchestrator) handleCancel(ctx context.Context, tenantID, landlordID string, propertyID int) models.SchedulingOutcome {
	active, err := o.Requests.FindActive(ctx, tenantID, landlordID, propertyID)
	if err != nil {
		return cancelFailed(models.FailureDatabaseError)
	}
	if active == nil {
		return cancelFailed(models.FailureNoExistingRequest)
	}

	if err := o.Requests.Cancel(ctx, active.ID); err != nil {
		return cancelFailed(models.FailureDatabaseError)
	}

	return models.SchedulingOutcome{
		IsSchedulingResponse: true,
		Action:               models.ActionViewingCancelled,
		ViewingRequestID:     active.ID,
		PreviousDateTime:     &active.RequestedDateTime,
		Persisted:            true,
	}
}

func cancelFailed(reason string) models.SchedulingOutcome {
	return models.SchedulingOutcome{
		IsSchedulingResponse: true,
		Action:               models.ActionCancelFailed,
		FailureReason:        reason,
	}
}
