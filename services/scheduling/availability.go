package scheduling

import (
	"context"
	"fmt"
	"time"

	"renthaven/models"
	"renthaven/utils"

	"go.uber.org/zap"
)

// retryReason is the conservative answer when a rule could not be evaluated.
// It is returned uncached so the next attempt re-runs the rules.
const retryReason = "unable to verify availability, please try again"

// AvailabilityChecker evaluates whether a landlord is bookable at a given
// instant.
type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, landlordID string, requested time.Time) models.AvailabilityResult
	// CheckAvailabilityFresh evaluates the rules directly against the store,
	// bypassing the cache in both directions. Callers holding the landlord
	// lock use it so the conflict predicate is re-validated even when an
	// earlier invalidation was lost.
	CheckAvailabilityFresh(ctx context.Context, landlordID string, requested time.Time) models.AvailabilityResult
}

// ConflictFinder looks up existing active bookings near an instant. It is
// implemented by the viewing repository.
type ConflictFinder interface {
	FindConflicting(ctx context.Context, landlordID string, from, to time.Time) ([]models.ViewingRequest, error)
}

// DefaultAvailabilityChecker applies, in order: cache lookup, weekday rule,
// hour-of-day window, booking conflict buffer, and minimum lead time.
type DefaultAvailabilityChecker struct {
	Bookings ConflictFinder
	Cache    AvailabilityCache
	Schedule models.WeeklySchedule

	// LeadTime is the minimum notice between now and a viewing; Buffer is
	// the half-width of the conflict window around an existing booking.
	LeadTime time.Duration
	Buffer   time.Duration

	// Clock is injectable for tests; defaults to time.Now.
	Clock func() time.Time
}

func (c *DefaultAvailabilityChecker) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

// CheckAvailability returns the availability verdict for the requested
// instant. It never returns an error: failures while evaluating the rules
// degrade to a conservative not-available result that is never cached.
func (c *DefaultAvailabilityChecker) CheckAvailability(ctx context.Context, landlordID string, requested time.Time) models.AvailabilityResult {
	if cached, ok := c.Cache.Get(ctx, landlordID, requested); ok {
		return *cached
	}

	result, err := c.evaluate(ctx, landlordID, requested)
	if err != nil {
		return c.degraded(landlordID, requested, err)
	}

	c.Cache.Set(ctx, landlordID, requested, result)
	return result
}

// CheckAvailabilityFresh runs the rules without consulting or populating the
// cache.
func (c *DefaultAvailabilityChecker) CheckAvailabilityFresh(ctx context.Context, landlordID string, requested time.Time) models.AvailabilityResult {
	result, err := c.evaluate(ctx, landlordID, requested)
	if err != nil {
		return c.degraded(landlordID, requested, err)
	}
	return result
}

func (c *DefaultAvailabilityChecker) degraded(landlordID string, requested time.Time, err error) models.AvailabilityResult {
	utils.GetLogger().Warn("availability check degraded",
		zap.String("landlordID", landlordID),
		zap.Time("requested", requested),
		zap.Error(err))
	return models.AvailabilityResult{Available: false, Reason: retryReason}
}

func (c *DefaultAvailabilityChecker) evaluate(ctx context.Context, landlordID string, requested time.Time) (models.AvailabilityResult, error) {
	window := c.Schedule.WindowFor(requested)

	if !window.Available {
		return models.AvailabilityResult{
			Available:    false,
			Reason:       fmt.Sprintf("%ss are not available for viewings", requested.Weekday()),
			Alternatives: c.SuggestAlternative(requested),
		}, nil
	}

	if hour := requested.Hour(); hour < window.Start || hour >= window.End {
		return models.AvailabilityResult{
			Available: false,
			Reason: fmt.Sprintf("viewings on %ss run from %02d:00 to %02d:00",
				requested.Weekday(), window.Start, window.End),
			Alternatives: c.suggestTimeAlternative(requested, window),
		}, nil
	}

	conflicts, err := c.Bookings.FindConflicting(ctx, landlordID, requested.Add(-c.Buffer), requested.Add(c.Buffer))
	if err != nil {
		return models.AvailabilityResult{}, fmt.Errorf("conflict lookup failed: %w", err)
	}
	if len(conflicts) > 0 {
		return models.AvailabilityResult{
			Available:    false,
			Reason:       "another viewing is already scheduled around that time",
			Alternatives: c.SuggestAlternative(requested),
		}, nil
	}

	if requested.Sub(c.now()) < c.LeadTime {
		return models.AvailabilityResult{
			Available: false,
			Reason: fmt.Sprintf("viewings need at least %d hours notice",
				int(c.LeadTime.Hours())),
			Alternatives: []time.Time{requested.AddDate(0, 0, 1)},
		}, nil
	}

	return models.AvailabilityResult{Available: true}, nil
}

// SuggestAlternative scans the next 3 calendar days after the given instant
// and proposes up to two slots: 10:00 on each available weekday, plus 15:00
// when that day's window extends to 15:00 or later. Nearest first.
func (c *DefaultAvailabilityChecker) SuggestAlternative(around time.Time) []time.Time {
	var alternatives []time.Time
	for offset := 1; offset <= 3 && len(alternatives) < 2; offset++ {
		day := around.AddDate(0, 0, offset)
		window := c.Schedule.WindowFor(day)
		if !window.Available {
			continue
		}
		alternatives = append(alternatives, atHour(day, 10))
		if len(alternatives) < 2 && window.End >= 15 {
			alternatives = append(alternatives, atHour(day, 15))
		}
	}
	return alternatives
}

// suggestTimeAlternative proposes a same-day slot clamped into the window:
// two hours after opening, but no earlier than 10:00 and no later than one
// hour before closing.
func (c *DefaultAvailabilityChecker) suggestTimeAlternative(requested time.Time, window models.AvailabilityWindow) []time.Time {
	hour := window.Start + 2
	if hour < 10 {
		hour = 10
	}
	if hour > window.End-1 {
		hour = window.End - 1
	}
	return []time.Time{atHour(requested, hour)}
}

func atHour(day time.Time, hour int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
}
