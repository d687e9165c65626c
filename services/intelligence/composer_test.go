package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"renthaven/models"
)

func TestComposeSchedulingReplyFallsBack(t *testing.T) {
	composer := &GeminiResponseComposer{client: &stubGenerator{err: errors.New("model unavailable")}}

	confirmed := time.Date(2025, 6, 3, 11, 0, 0, 0, time.UTC)
	reply, err := composer.ComposeSchedulingReply(context.Background(), models.SchedulingOutcome{
		IsSchedulingResponse: true,
		Action:               models.ActionViewingCreated,
		ConfirmedDateTime:    &confirmed,
		Persisted:            true,
	}, ReplyContext{TenantName: "Ada", LandlordName: "Bo", PropertyTitle: "Flat 4b"})

	require.NoError(t, err, "a scheduling outcome must always yield a reply")
	require.Contains(t, reply, "Tuesday, Jun 3 at 11:00")
}

func TestComposeSchedulingReplyUsesModelOutput(t *testing.T) {
	composer := &GeminiResponseComposer{client: &stubGenerator{response: "  See you Tuesday at 11!  "}}

	reply, err := composer.ComposeSchedulingReply(context.Background(), models.SchedulingOutcome{
		IsSchedulingResponse: true,
		Action:               models.ActionViewingCreated,
	}, ReplyContext{})

	require.NoError(t, err)
	require.Equal(t, "See you Tuesday at 11!", reply)
}

func TestComposeChatReplyPropagatesError(t *testing.T) {
	composer := &GeminiResponseComposer{client: &stubGenerator{err: errors.New("model unavailable")}}

	_, err := composer.ComposeChatReply(context.Background(), "is it furnished?", ReplyContext{})
	require.Error(t, err, "ordinary chat replies have no fallback text")
}

func TestFallbackReplyPerAction(t *testing.T) {
	alt := time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name    string
		outcome models.SchedulingOutcome
		want    string
	}{
		{
			name: "cancelled",
			outcome: models.SchedulingOutcome{
				Action: models.ActionViewingCancelled,
			},
			want: "Your viewing has been cancelled.",
		},
		{
			name: "clarify",
			outcome: models.SchedulingOutcome{
				Action: models.ActionClarifyDateTime,
			},
			want: "Happy to set up a viewing! What date and time would work for you?",
		},
		{
			name: "suggest with alternatives",
			outcome: models.SchedulingOutcome{
				Action:       models.ActionSuggestAlternatives,
				Reason:       "Sundays are not available for viewings",
				Alternatives: []time.Time{alt},
			},
			want: "That time doesn't work: Sundays are not available for viewings. How about Wednesday, Jun 4 at 10:00?",
		},
		{
			name: "reschedule with nothing to move",
			outcome: models.SchedulingOutcome{
				Action:        models.ActionRescheduleFailed,
				FailureReason: models.FailureNoExistingRequest,
			},
			want: "I couldn't find an existing viewing to change. Would you like to book one?",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, fallbackReply(tc.outcome))
		})
	}
}
