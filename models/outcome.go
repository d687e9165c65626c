package models

import "time"

// SchedulingAction tags the shape of a SchedulingOutcome.
type SchedulingAction string

const (
	ActionViewingCreated         SchedulingAction = "viewing_created"
	ActionViewingConfirmedVerbal SchedulingAction = "viewing_confirmed_verbal"
	ActionSuggestAlternatives    SchedulingAction = "suggest_alternatives"
	ActionClarifyDateTime        SchedulingAction = "clarify_datetime"
	ActionViewingRescheduled     SchedulingAction = "viewing_rescheduled"
	ActionRescheduleFailed       SchedulingAction = "reschedule_failed"
	ActionViewingCancelled       SchedulingAction = "viewing_cancelled"
	ActionCancelFailed           SchedulingAction = "cancel_failed"
)

// Failure reasons carried by reschedule_failed / cancel_failed outcomes.
const (
	FailureNoExistingRequest = "no_existing_request"
	FailureTimeNotAvailable  = "time_not_available"
	FailureDatabaseError     = "database_error"
)

// SchedulingOutcome is the structured result of an orchestrated scheduling
// flow. It is an opaque payload for the response composer; the orchestrator
// never produces user-facing text itself.
type SchedulingOutcome struct {
	IsSchedulingResponse bool             `json:"is_scheduling_response"`
	Action               SchedulingAction `json:"action,omitempty"`
	ViewingRequestID     int              `json:"viewing_request_id,omitempty"`
	ConfirmedDateTime    *time.Time       `json:"confirmed_date_time,omitempty"`
	PreviousDateTime     *time.Time       `json:"previous_date_time,omitempty"`
	Reason               string           `json:"reason,omitempty"`
	FailureReason        string           `json:"failure_reason,omitempty"`
	Alternatives         []time.Time      `json:"alternatives,omitempty"`
	Intent               SchedulingIntent `json:"intent,omitzero"`
	// Persisted reports whether a record actually exists for the confirmed
	// time. False only on the viewing_confirmed_verbal path.
	Persisted bool `json:"persisted"`
}
