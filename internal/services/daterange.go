package services

import (
	"fmt"
	"time"

	"github.com/kwheeler/garage/internal/models"
)

// InRange reports whether a completion date falls inside the range. Bounds
// are inclusive at day granularity; the range's start and end are widened to
// the start and end of their calendar days before comparing, so both the
// string-date and the time-value entry paths agree for the same logical day.
func InRange(date time.Time, dateRange models.DateRange) bool {
	if dateRange.AllTime {
		return true
	}
	start := startOfDay(dateRange.Start)
	end := endOfDay(dateRange.End)
	return !date.Before(start) && !date.After(end)
}

// ParseDateRange builds a day-granular range from "YYYY-MM-DD" strings,
// normalized to local T00:00:00 and T23:59:59.999.
func ParseDateRange(start, end string) (models.DateRange, error) {
	startDate, err := time.ParseInLocation("2006-01-02", start, time.Local)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("parsing range start: %w", err)
	}
	endDate, err := time.ParseInLocation("2006-01-02", end, time.Local)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("parsing range end: %w", err)
	}
	return models.DateRange{Start: startOfDay(startDate), End: endOfDay(endDate)}, nil
}

// TasksInDateRange returns only tasks with at least one completion in range.
// Each returned task is a shallow copy whose history is narrowed to the
// in-range records; the original tasks are never mutated.
func TasksInDateRange(tasks []models.MaintenanceTask, dateRange models.DateRange) []models.MaintenanceTask {
	var matched []models.MaintenanceTask
	for _, task := range tasks {
		var inRange []models.CompletionRecord
		for _, record := range task.CompletionHistory {
			if InRange(record.CompletionDate, dateRange) {
				inRange = append(inRange, record)
			}
		}
		if len(inRange) == 0 {
			continue
		}
		narrowed := task
		narrowed.CompletionHistory = inRange
		matched = append(matched, narrowed)
	}
	return matched
}

func startOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

func endOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 23, 59, 59, 999_000_000, date.Location())
}
