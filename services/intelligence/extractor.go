// File: services/intelligence/extractor.go
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"renthaven/models"
)

// contentGenerator is the slice of GeminiClient the extractor needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// GeminiIntentExtractor classifies tenant messages into scheduling intents
// using Gemini. Malformed model output is surfaced as an error so callers
// can fail open to the ordinary chat flow.
type GeminiIntentExtractor struct {
	client contentGenerator
}

func NewGeminiIntentExtractor(client *GeminiClient) *GeminiIntentExtractor {
	return &GeminiIntentExtractor{client: client}
}

const intentPromptTemplate = `You are an intent classifier for a rental marketplace chat.
A tenant sent the following message to a landlord:

"%s"

The current date and time is %s (%s).

Decide whether the message asks to book, move or cancel a property viewing.
Respond with ONLY a JSON object, no prose, in this exact shape:
{
  "is_scheduling_request": bool,
  "intent": "schedule_viewing" | "reschedule" | "cancel" | "ask_availability" | "none",
  "has_valid_datetime": bool,
  "requested_datetime": "RFC3339 timestamp or empty string",
  "confidence": number between 0 and 1,
  "needs_clarification": bool
}

Rules:
- requested_datetime must be an absolute instant in the landlord's timezone (%s).
- If the message mentions a time but it is ambiguous, set has_valid_datetime to
  false and needs_clarification to true. Never guess.
- "cancel" does not need a datetime.`

// Classify sends the message to the model and parses the structured intent.
func (e *GeminiIntentExtractor) Classify(ctx context.Context, message string, now time.Time) (models.SchedulingIntent, error) {
	prompt := fmt.Sprintf(intentPromptTemplate,
		message,
		now.Format(time.RFC3339),
		now.Weekday(),
		now.Location())

	raw, err := e.client.GenerateContent(ctx, prompt)
	if err != nil {
		return models.SchedulingIntent{}, fmt.Errorf("intent classification failed: %w", err)
	}
	return parseIntentResponse(raw)
}

// intentWire mirrors the JSON shape the prompt requests.
type intentWire struct {
	IsSchedulingRequest bool    `json:"is_scheduling_request"`
	Intent              string  `json:"intent"`
	HasValidDatetime    bool    `json:"has_valid_datetime"`
	RequestedDatetime   string  `json:"requested_datetime"`
	Confidence          float64 `json:"confidence"`
	NeedsClarification  bool    `json:"needs_clarification"`
}

func parseIntentResponse(raw string) (models.SchedulingIntent, error) {
	cleaned := stripCodeFence(raw)

	var wire intentWire
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return models.SchedulingIntent{}, fmt.Errorf("malformed intent response: %w", err)
	}

	intent := models.SchedulingIntent{
		IsSchedulingRequest: wire.IsSchedulingRequest,
		Intent:              models.SchedulingIntentKind(wire.Intent),
		HasValidDateTime:    wire.HasValidDatetime,
		Confidence:          wire.Confidence,
		NeedsClarification:  wire.NeedsClarification,
	}

	switch intent.Intent {
	case models.IntentScheduleViewing, models.IntentReschedule, models.IntentCancel,
		models.IntentAskAvailability, models.IntentNone:
	default:
		intent.Intent = models.IntentNone
		intent.IsSchedulingRequest = false
	}

	if wire.HasValidDatetime && wire.RequestedDatetime != "" {
		ts, err := time.Parse(time.RFC3339, wire.RequestedDatetime)
		if err != nil {
			return models.SchedulingIntent{}, fmt.Errorf("invalid requested_datetime %q: %w", wire.RequestedDatetime, err)
		}
		intent.RequestedDateTime = &ts
	} else {
		intent.HasValidDateTime = false
	}

	return intent, nil
}

// stripCodeFence removes a markdown code fence the model sometimes wraps
// around the JSON.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
