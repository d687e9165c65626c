package scheduling

import (
	"time"

	"renthaven/models"
)

// DefaultWeeklySchedule returns the global viewing schedule: weekdays
// 09:00-18:00, Saturdays 10:00-15:00, Sundays closed.
func DefaultWeeklySchedule() models.WeeklySchedule {
	var ws models.WeeklySchedule
	for day := time.Monday; day <= time.Friday; day++ {
		ws[int(day)] = models.AvailabilityWindow{Start: 9, End: 18, Available: true}
	}
	ws[int(time.Saturday)] = models.AvailabilityWindow{Start: 10, End: 15, Available: true}
	ws[int(time.Sunday)] = models.AvailabilityWindow{Available: false}
	return ws
}
