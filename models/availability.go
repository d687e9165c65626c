package models

import "time"

// AvailabilityWindow is the configured bookable window for one weekday.
// Start and End are hours from midnight; viewings may begin at any time
// in [Start, End).
type AvailabilityWindow struct {
	Start     int  `json:"start"`
	End       int  `json:"end"`
	Available bool `json:"available"`
}

// WeeklySchedule maps each weekday to its availability window. The schedule
// is global and read-only at runtime; per-landlord schedules are a future
// extension point.
type WeeklySchedule [7]AvailabilityWindow

// WindowFor returns the window configured for the weekday of t.
func (ws WeeklySchedule) WindowFor(t time.Time) AvailabilityWindow {
	return ws[int(t.Weekday())]
}

// AvailabilityResult is the outcome of a single availability check.
type AvailabilityResult struct {
	Available    bool        `json:"available"`
	Reason       string      `json:"reason,omitempty"`
	Alternatives []time.Time `json:"alternatives,omitempty"`
}
