package services

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/kwheeler/garage/internal/models"
)

// DueDateCalendar renders every scheduled due date as an all-day VCALENDAR
// event. Distance-based tasks have no date to pin an event to and only appear
// once they are upcoming or overdue against the current odometer, anchored on
// today.
func DueDateCalendar(tasks []models.MaintenanceTask, currentDistance float64, now time.Time) string {
	calendar := ics.NewCalendar()
	calendar.SetMethod(ics.MethodPublish)
	calendar.SetProductId("-//garage//maintenance//EN")
	calendar.SetXWRCalName("Vehicle maintenance")

	for _, task := range tasks {
		switch {
		case task.NextDueAt != nil:
			event := calendar.AddEvent(task.ID + "@garage")
			event.SetDtStampTime(now)
			event.SetAllDayStartAt(*task.NextDueAt)
			event.SetAllDayEndAt(task.NextDueAt.AddDate(0, 0, 1))
			event.SetSummary(task.Title)
			if task.Description != "" {
				event.SetDescription(task.Description)
			}
		case task.NextDueAtDistance != nil:
			status := Classify(nil, task.NextDueAtDistance, currentDistance, now)
			if status == models.StatusPending {
				continue
			}
			event := calendar.AddEvent(task.ID + "@garage")
			event.SetDtStampTime(now)
			event.SetAllDayStartAt(now)
			event.SetAllDayEndAt(now.AddDate(0, 0, 1))
			event.SetSummary(task.Title)
			event.SetDescription(fmt.Sprintf("Due at %.0f km (odometer %.0f km)", *task.NextDueAtDistance, currentDistance))
		}
	}

	return calendar.Serialize()
}
