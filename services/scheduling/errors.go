package scheduling

import (
	"errors"
	"fmt"

	"renthaven/models"
)

var (
	// ErrPropertyNotFound is returned by Create when the property reference
	// is invalid.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrNoActiveRequest is returned when reschedule/cancel target a
	// conversation with no active booking. This is an expected business
	// outcome, not a system fault.
	ErrNoActiveRequest = errors.New("no active viewing request")
)

// InvalidTransitionError reports a state change that violates the viewing
// request transition table. It indicates a programming or integration error
// and is logged at a higher severity than business failures.
type InvalidTransitionError struct {
	From models.ViewingRequestStatus
	To   models.ViewingRequestStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid viewing request transition: %s -> %s", e.From, e.To)
}
