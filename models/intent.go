package models

import "time"

// SchedulingIntentKind is the classified purpose of an inbound chat message.
type SchedulingIntentKind string

const (
	IntentScheduleViewing SchedulingIntentKind = "schedule_viewing"
	IntentReschedule      SchedulingIntentKind = "reschedule"
	IntentCancel          SchedulingIntentKind = "cancel"
	IntentAskAvailability SchedulingIntentKind = "ask_availability"
	IntentNone            SchedulingIntentKind = "none"
)

// SchedulingIntent is the structured classification of a tenant message,
// produced fresh per message by the intent extractor. RequestedDateTime, when
// present, is an absolute instant already adjusted to the landlord's
// operating timezone.
type SchedulingIntent struct {
	IsSchedulingRequest bool                 `json:"is_scheduling_request"`
	Intent              SchedulingIntentKind `json:"intent"`
	HasValidDateTime    bool                 `json:"has_valid_datetime"`
	RequestedDateTime   *time.Time           `json:"requested_datetime,omitempty"`
	Confidence          float64              `json:"confidence"`
	NeedsClarification  bool                 `json:"needs_clarification"`
}
