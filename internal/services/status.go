package services

import (
	"time"

	"github.com/kwheeler/garage/internal/models"
)

const (
	upcomingDateWindow     = 7 * 24 * time.Hour
	upcomingDistanceWindow = 500.0
)

// Classify derives the due-state of a task from its next-due signals.
// Date-based checks run before distance-based checks when both signals are
// present; a task with no signal at all is pending.
func Classify(nextDueAt *time.Time, nextDueAtDistance *float64, currentDistance float64, now time.Time) models.Status {
	if nextDueAt != nil {
		if nextDueAt.Before(now) {
			return models.StatusOverdue
		}
		if nextDueAt.Sub(now) <= upcomingDateWindow {
			return models.StatusUpcoming
		}
	}

	if nextDueAtDistance != nil {
		if currentDistance >= *nextDueAtDistance {
			return models.StatusOverdue
		}
		if *nextDueAtDistance-currentDistance <= upcomingDistanceWindow {
			return models.StatusUpcoming
		}
	}

	return models.StatusPending
}

// TaskStatus classifies a task against the global odometer value.
func TaskStatus(task models.MaintenanceTask, currentDistance float64, now time.Time) models.Status {
	return Classify(task.NextDueAt, task.NextDueAtDistance, currentDistance, now)
}
