package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwheeler/garage/internal/models"
)

func recordOn(day string, cost float64, kind models.TaskKind) models.CompletionRecord {
	date, err := time.ParseInLocation("2006-01-02", day, time.Local)
	if err != nil {
		panic(err)
	}
	return models.CompletionRecord{CompletionDate: date, Cost: cost, Kind: kind}
}

func TestTotalCost(t *testing.T) {
	records := []models.CompletionRecord{
		recordOn("2024-03-01", 10, models.KindTimeBased),
		recordOn("2024-03-02", 15.5, models.KindTimeBased),
		recordOn("2024-03-03", 0, models.KindTimeBased),
	}
	assert.Equal(t, 25.5, TotalCost(records))
	assert.Equal(t, 0.0, TotalCost(nil))
}

func TestAverageCostPerCompletion(t *testing.T) {
	assert.Equal(t, 0.0, AverageCostPerCompletion(nil), "empty history must not divide by zero")

	records := []models.CompletionRecord{
		recordOn("2024-03-01", 10, models.KindTimeBased),
		recordOn("2024-03-02", 15, models.KindTimeBased),
		recordOn("2024-03-03", 5, models.KindTimeBased),
	}
	assert.Equal(t, 10.0, AverageCostPerCompletion(records))

	uneven := []models.CompletionRecord{
		recordOn("2024-03-01", 10, models.KindTimeBased),
		recordOn("2024-03-02", 10, models.KindTimeBased),
		recordOn("2024-03-03", 5, models.KindTimeBased),
	}
	assert.Equal(t, 8.33, AverageCostPerCompletion(uneven), "rounded to two decimals")
}

func TestCostsByKind(t *testing.T) {
	tasks := []models.MaintenanceTask{
		{
			Kind:              models.KindTimeBased,
			CompletionHistory: []models.CompletionRecord{recordOn("2024-01-01", 40, models.KindTimeBased)},
		},
		{
			Kind:              models.KindDistanceBased,
			CompletionHistory: []models.CompletionRecord{recordOn("2024-01-02", 60, models.KindDistanceBased)},
		},
		{
			Kind:          models.KindTimeBased,
			CreatedByUser: true,
			CompletionHistory: []models.CompletionRecord{
				recordOn("2024-01-03", 25, models.KindTimeBased),
			},
		},
	}

	costs := CostsByKind(tasks)
	assert.Equal(t, 40.0, costs[DisplayTimeBased])
	assert.Equal(t, 60.0, costs[DisplayDistanceBased])
	assert.Equal(t, 25.0, costs[DisplayUserCreated], "user-created tasks bucket under user regardless of schedule axis")

	empty := CostsByKind(nil)
	require.Len(t, empty, 3, "all buckets present even at zero")
	assert.Equal(t, 0.0, empty[DisplayTimeBased])
	assert.Equal(t, 0.0, empty[DisplayDistanceBased])
	assert.Equal(t, 0.0, empty[DisplayUserCreated])
}

func TestCostsByTag_EqualSplit(t *testing.T) {
	tasks := []models.MaintenanceTask{
		{
			Tags: []string{"Engine", "Oils"},
			CompletionHistory: []models.CompletionRecord{
				recordOn("2024-01-01", 60, models.KindTimeBased),
				recordOn("2024-02-01", 40, models.KindTimeBased),
			},
		},
	}

	costs := CostsByTag(tasks)
	assert.Equal(t, 50.0, costs["Engine"])
	assert.Equal(t, 50.0, costs["Oils"])
}

func TestCostsByTag_IncrementalRounding(t *testing.T) {
	// Two tasks each worth 10 across three tags: each share is 3.333...,
	// rounded to 3.33 at every accumulation step, so the final value is 6.66
	// rather than the 6.67 a single final rounding would give.
	tags := []string{"Engine", "Oils", "Filters"}
	tasks := []models.MaintenanceTask{
		{Tags: tags, CompletionHistory: []models.CompletionRecord{recordOn("2024-01-01", 10, models.KindTimeBased)}},
		{Tags: tags, CompletionHistory: []models.CompletionRecord{recordOn("2024-01-02", 10, models.KindTimeBased)}},
	}

	costs := CostsByTag(tasks)
	assert.Equal(t, 6.66, costs["Engine"])
}

func TestDailyCostBuckets(t *testing.T) {
	records := []models.CompletionRecord{
		recordOn("2024-03-01", 10, models.KindTimeBased),
		recordOn("2024-03-02", 5, models.KindDistanceBased),
		recordOn("2024-03-01", 15, models.KindTimeBased),
	}

	buckets := DailyCostBuckets(records)
	require.Len(t, buckets, 2)

	assert.Equal(t, "2024-03-01", buckets[0].Period)
	assert.Equal(t, 25.0, buckets[0].Cost)
	assert.Equal(t, 2, buckets[0].Count)

	assert.Equal(t, "2024-03-02", buckets[1].Period)
	assert.Equal(t, 5.0, buckets[1].Cost)
	assert.Equal(t, 1, buckets[1].Count)
	assert.Equal(t, 5.0, buckets[1].PerKind[models.KindDistanceBased])
}

func TestMonthlyAndYearlyCostBuckets(t *testing.T) {
	records := []models.CompletionRecord{
		recordOn("2023-12-30", 100, models.KindTimeBased),
		recordOn("2024-01-05", 20, models.KindTimeBased),
		recordOn("2024-01-20", 30, models.KindTimeBased),
	}

	monthly := MonthlyCostBuckets(records)
	require.Len(t, monthly, 2)
	assert.Equal(t, "2023-12", monthly[0].Period)
	assert.Equal(t, "2024-01", monthly[1].Period)
	assert.Equal(t, 50.0, monthly[1].Cost)

	yearly := YearlyCostBuckets(records)
	require.Len(t, yearly, 2)
	assert.Equal(t, "2023", yearly[0].Period)
	assert.Equal(t, 100.0, yearly[0].Cost)
}

func TestCostTrends_TrailingSixMonths(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	records := []models.CompletionRecord{
		recordOn("2023-11-01", 99, models.KindTimeBased),
		recordOn("2024-01-10", 10, models.KindTimeBased),
		recordOn("2024-05-10", 20, models.KindTimeBased),
	}

	trends := CostTrends(records, now)
	require.Len(t, trends, 2, "records older than six months are dropped before bucketing")
	assert.Equal(t, "2024-01", trends[0].Period)
	assert.Equal(t, "2024-05", trends[1].Period)
}

func TestTaskFrequency_TitleTruncation(t *testing.T) {
	tasks := []models.MaintenanceTask{
		{
			Title: "Oil change",
			CompletionHistory: []models.CompletionRecord{
				recordOn("2024-01-01", 0, models.KindTimeBased),
				recordOn("2024-02-01", 0, models.KindTimeBased),
			},
		},
		{
			Title: "Transmission fluid change",
			CompletionHistory: []models.CompletionRecord{
				recordOn("2024-03-01", 0, models.KindDistanceBased),
			},
		},
		{Title: "Never done"},
	}

	frequency := TaskFrequency(tasks)
	require.Len(t, frequency, 2, "tasks without history are omitted")
	assert.Equal(t, 2, frequency["Oil change"], "titles of ten characters or fewer stay intact")
	assert.Equal(t, 1, frequency["Transmi…"], "longer titles keep the first seven characters plus ellipsis")
}

func TestDailyMaintenanceCounts(t *testing.T) {
	tasks := []models.MaintenanceTask{
		{CompletionHistory: []models.CompletionRecord{
			recordOn("2024-03-01", 0, models.KindTimeBased),
			recordOn("2024-03-05", 0, models.KindTimeBased),
		}},
		{CompletionHistory: []models.CompletionRecord{
			recordOn("2024-03-01", 0, models.KindDistanceBased),
			recordOn("2024-04-09", 0, models.KindDistanceBased),
		}},
	}

	dateRange, err := ParseDateRange("2024-03-01", "2024-03-31")
	require.NoError(t, err)

	counts := DailyMaintenanceCounts(tasks, dateRange)
	require.Len(t, counts, 2)
	assert.Equal(t, DailyCount{Date: "2024-03-01", Count: 2}, counts[0])
	assert.Equal(t, DailyCount{Date: "2024-03-05", Count: 1}, counts[1])
}
