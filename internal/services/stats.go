package services

import (
	"math"
	"sort"
	"time"

	"github.com/kwheeler/garage/internal/models"
)

// DisplayKind is the three-way bucket used by cost breakdowns: user-created
// tasks report under the user bucket regardless of their underlying time or
// distance schedule.
type DisplayKind string

const (
	DisplayTimeBased     DisplayKind = "time-based"
	DisplayDistanceBased DisplayKind = "distance-based"
	DisplayUserCreated   DisplayKind = "user"
)

// PeriodCost is one calendar bucket of completion spend.
type PeriodCost struct {
	Period  string
	Cost    float64
	Count   int
	PerKind map[models.TaskKind]float64
}

// DailyCount is the number of completions logged on one calendar day.
type DailyCount struct {
	Date  string
	Count int
}

func TotalCost(records []models.CompletionRecord) float64 {
	var total float64
	for _, record := range records {
		total += record.Cost
	}
	return total
}

// AverageCostPerCompletion is rounded to two decimals and zero for an empty
// history.
func AverageCostPerCompletion(records []models.CompletionRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	return round2(TotalCost(records) / float64(len(records)))
}

// CostsByKind sums each task's historical cost into its display-kind bucket.
// All three buckets are always present, even at zero.
func CostsByKind(tasks []models.MaintenanceTask) map[DisplayKind]float64 {
	costs := map[DisplayKind]float64{
		DisplayTimeBased:     0,
		DisplayDistanceBased: 0,
		DisplayUserCreated:   0,
	}
	for _, task := range tasks {
		costs[displayKind(task)] += TotalCost(task.CompletionHistory)
	}
	return costs
}

// CostsByTag splits each task's total historical cost equally across its
// tags. Values are rounded to two decimals after every accumulation step, not
// once at the end, so repeated thirds drift the way the original figures do.
func CostsByTag(tasks []models.MaintenanceTask) map[string]float64 {
	costs := make(map[string]float64)
	for _, task := range tasks {
		if len(task.Tags) == 0 {
			continue
		}
		total := TotalCost(task.CompletionHistory)
		if total == 0 {
			continue
		}
		share := total / float64(len(task.Tags))
		for _, tag := range task.Tags {
			costs[tag] = round2(costs[tag] + share)
		}
	}
	return costs
}

func DailyCostBuckets(records []models.CompletionRecord) []PeriodCost {
	return costBuckets(records, "2006-01-02")
}

func MonthlyCostBuckets(records []models.CompletionRecord) []PeriodCost {
	return costBuckets(records, "2006-01")
}

func YearlyCostBuckets(records []models.CompletionRecord) []PeriodCost {
	return costBuckets(records, "2006")
}

// CostTrends buckets monthly spend over the trailing six months from now.
func CostTrends(records []models.CompletionRecord, now time.Time) []PeriodCost {
	cutoff := now.AddDate(0, -6, 0)
	var recent []models.CompletionRecord
	for _, record := range records {
		if !record.CompletionDate.Before(cutoff) && !record.CompletionDate.After(now) {
			recent = append(recent, record)
		}
	}
	return MonthlyCostBuckets(recent)
}

// TaskFrequency counts completions per task under its display title. Titles
// longer than ten characters are truncated to their first seven characters
// plus an ellipsis.
func TaskFrequency(tasks []models.MaintenanceTask) map[string]int {
	frequency := make(map[string]int)
	for _, task := range tasks {
		if len(task.CompletionHistory) == 0 {
			continue
		}
		frequency[displayTitle(task.Title)] += len(task.CompletionHistory)
	}
	return frequency
}

// DailyMaintenanceCounts counts completions per calendar day within the
// range, ascending by date string.
func DailyMaintenanceCounts(tasks []models.MaintenanceTask, dateRange models.DateRange) []DailyCount {
	perDay := make(map[string]int)
	for _, task := range tasks {
		for _, record := range task.CompletionHistory {
			if !InRange(record.CompletionDate, dateRange) {
				continue
			}
			perDay[record.CompletionDate.Format("2006-01-02")]++
		}
	}

	days := make([]string, 0, len(perDay))
	for day := range perDay {
		days = append(days, day)
	}
	sort.Strings(days)

	counts := make([]DailyCount, 0, len(days))
	for _, day := range days {
		counts = append(counts, DailyCount{Date: day, Count: perDay[day]})
	}
	return counts
}

// AllRecords flattens every task's history into one slice, preserving task
// order then append order.
func AllRecords(tasks []models.MaintenanceTask) []models.CompletionRecord {
	var records []models.CompletionRecord
	for _, task := range tasks {
		records = append(records, task.CompletionHistory...)
	}
	return records
}

func costBuckets(records []models.CompletionRecord, layout string) []PeriodCost {
	byPeriod := make(map[string]*PeriodCost)
	for _, record := range records {
		period := record.CompletionDate.Format(layout)
		bucket, ok := byPeriod[period]
		if !ok {
			bucket = &PeriodCost{
				Period:  period,
				PerKind: map[models.TaskKind]float64{},
			}
			byPeriod[period] = bucket
		}
		bucket.Cost += record.Cost
		bucket.Count++
		bucket.PerKind[record.Kind] += record.Cost
	}

	periods := make([]string, 0, len(byPeriod))
	for period := range byPeriod {
		periods = append(periods, period)
	}
	sort.Strings(periods)

	buckets := make([]PeriodCost, 0, len(periods))
	for _, period := range periods {
		buckets = append(buckets, *byPeriod[period])
	}
	return buckets
}

func displayKind(task models.MaintenanceTask) DisplayKind {
	if task.CreatedByUser {
		return DisplayUserCreated
	}
	if task.Kind == models.KindDistanceBased {
		return DisplayDistanceBased
	}
	return DisplayTimeBased
}

func displayTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= 10 {
		return title
	}
	return string(runes[:7]) + "…"
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
