// File: services/intelligence/composer.go
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"renthaven/models"
	"renthaven/utils"

	"go.uber.org/zap"
)

// ReplyContext carries the human-readable context the composer weaves into
// replies.
type ReplyContext struct {
	TenantName    string
	LandlordName  string
	PropertyTitle string
}

// ResponseComposer turns a scheduling outcome (or an ordinary message) into
// the natural-language chat reply sent on the landlord's behalf.
type ResponseComposer interface {
	ComposeSchedulingReply(ctx context.Context, outcome models.SchedulingOutcome, info ReplyContext) (string, error)
	ComposeChatReply(ctx context.Context, message string, info ReplyContext) (string, error)
}

// GeminiResponseComposer writes replies with Gemini, falling back to plain
// template text when the model call fails so a reply is always produced.
type GeminiResponseComposer struct {
	client contentGenerator
}

func NewGeminiResponseComposer(client *GeminiClient) *GeminiResponseComposer {
	return &GeminiResponseComposer{client: client}
}

func (c *GeminiResponseComposer) ComposeSchedulingReply(ctx context.Context, outcome models.SchedulingOutcome, info ReplyContext) (string, error) {
	prompt := fmt.Sprintf(`You are a scheduling assistant replying on behalf of
landlord %s to tenant %s about the property %q.

The scheduling engine produced this structured outcome:
%s

Write a short, friendly chat reply (2-3 sentences, no markdown) that tells the
tenant exactly what happened and what to do next. Mention concrete dates and
times in a readable form.`,
		info.LandlordName, info.TenantName, info.PropertyTitle, describeOutcome(outcome))

	reply, err := c.client.GenerateContent(ctx, prompt)
	if err != nil {
		utils.GetLogger().Warn("reply composition failed, using fallback",
			zap.String("action", string(outcome.Action)), zap.Error(err))
		return fallbackReply(outcome), nil
	}
	return strings.TrimSpace(reply), nil
}

func (c *GeminiResponseComposer) ComposeChatReply(ctx context.Context, message string, info ReplyContext) (string, error) {
	prompt := fmt.Sprintf(`You are a helpful assistant replying on behalf of
landlord %s to tenant %s about the property %q.

The tenant wrote: %q

Write a short, friendly chat reply (1-2 sentences, no markdown). If the tenant
asked about viewing times, invite them to suggest a concrete date and time.`,
		info.LandlordName, info.TenantName, info.PropertyTitle, message)

	reply, err := c.client.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("chat reply composition failed: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

func describeOutcome(outcome models.SchedulingOutcome) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "action: %s\n", outcome.Action)
	if outcome.ConfirmedDateTime != nil {
		fmt.Fprintf(&sb, "confirmed time: %s\n", outcome.ConfirmedDateTime.Format(time.RFC1123))
	}
	if outcome.PreviousDateTime != nil {
		fmt.Fprintf(&sb, "previous time: %s\n", outcome.PreviousDateTime.Format(time.RFC1123))
	}
	if outcome.Reason != "" {
		fmt.Fprintf(&sb, "reason: %s\n", outcome.Reason)
	}
	if outcome.FailureReason != "" {
		fmt.Fprintf(&sb, "failure: %s\n", outcome.FailureReason)
	}
	for _, alt := range outcome.Alternatives {
		fmt.Fprintf(&sb, "alternative: %s\n", alt.Format(time.RFC1123))
	}
	if !outcome.Persisted && outcome.Action == models.ActionViewingConfirmedVerbal {
		sb.WriteString("note: the booking record could not be saved; ask the tenant to confirm closer to the date\n")
	}
	return sb.String()
}

// fallbackReply returns a plain reply per action when the model is
// unavailable.
func fallbackReply(outcome models.SchedulingOutcome) string {
	when := ""
	if outcome.ConfirmedDateTime != nil {
		when = outcome.ConfirmedDateTime.Format("Monday, Jan 2 at 15:04")
	}
	switch outcome.Action {
	case models.ActionViewingCreated, models.ActionViewingConfirmedVerbal:
		return fmt.Sprintf("Your viewing is confirmed for %s. See you then!", when)
	case models.ActionViewingRescheduled:
		return fmt.Sprintf("Your viewing has been moved to %s.", when)
	case models.ActionViewingCancelled:
		return "Your viewing has been cancelled."
	case models.ActionSuggestAlternatives:
		if len(outcome.Alternatives) > 0 {
			alts := make([]string, len(outcome.Alternatives))
			for i, alt := range outcome.Alternatives {
				alts[i] = alt.Format("Monday, Jan 2 at 15:04")
			}
			return fmt.Sprintf("That time doesn't work: %s. How about %s?",
				outcome.Reason, strings.Join(alts, " or "))
		}
		return fmt.Sprintf("That time doesn't work: %s. Could you suggest another time?", outcome.Reason)
	case models.ActionClarifyDateTime:
		return "Happy to set up a viewing! What date and time would work for you?"
	case models.ActionRescheduleFailed, models.ActionCancelFailed:
		if outcome.FailureReason == models.FailureNoExistingRequest {
			return "I couldn't find an existing viewing to change. Would you like to book one?"
		}
		return "Sorry, something went wrong on our side. Please try again in a moment."
	default:
		return "Thanks for your message! How can I help with your viewing?"
	}
}
