package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kwheeler/garage/internal/errs"
	"github.com/kwheeler/garage/internal/models"
	"github.com/kwheeler/garage/internal/repository"
	"github.com/kwheeler/garage/internal/testutil"
)

func newTestService(t *testing.T) (*TaskService, repository.TaskRepository) {
	t.Helper()
	taskRepository := repository.NewTaskRepository(testutil.NewTestStore(t))
	service := NewTaskService(taskRepository)
	service.now = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return service, taskRepository
}

func floatPtr(value float64) *float64 {
	return &value
}

func TestRecordCompletion_TimeBased(t *testing.T) {
	ctx := context.Background()
	service, taskRepository := newTestService(t)

	task := models.MaintenanceTask{
		ID:       "oil",
		Title:    "Engine oil change",
		Kind:     models.KindTimeBased,
		Interval: "monthly",
	}
	if err := taskRepository.Upsert(ctx, task); err != nil {
		t.Fatalf("seeding task: %v", err)
	}

	completedAt := time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)
	record, err := service.RecordCompletion(ctx, "oil", CompletionInput{
		Date:  completedAt,
		Cost:  45.50,
		Notes: "5W-30",
	})
	if err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}

	if record.ID == "" {
		t.Error("record must carry a generated id")
	}
	if record.TaskID != "oil" || record.Title != "Engine oil change" || record.Kind != models.KindTimeBased {
		t.Errorf("record not denormalized from task: %+v", record)
	}

	wantNext := completedAt.AddDate(0, 1, 0)
	if record.NextDueAt == nil || !record.NextDueAt.Equal(wantNext) {
		t.Errorf("record next due = %v, want %v", record.NextDueAt, wantNext)
	}

	stored, err := taskRepository.Get(ctx, "oil")
	if err != nil {
		t.Fatalf("reloading task: %v", err)
	}
	if stored.LastCompletedAt == nil || !stored.LastCompletedAt.Equal(completedAt) {
		t.Errorf("last completed = %v, want %v", stored.LastCompletedAt, completedAt)
	}
	if stored.NextDueAt == nil || !stored.NextDueAt.Equal(wantNext) {
		t.Errorf("task next due = %v, want %v", stored.NextDueAt, wantNext)
	}
	if len(stored.CompletionHistory) != 1 || stored.CompletionHistory[0].ID != record.ID {
		t.Errorf("history not appended: %+v", stored.CompletionHistory)
	}
}

func TestRecordCompletion_DistanceBased(t *testing.T) {
	ctx := context.Background()
	service, taskRepository := newTestService(t)

	task := models.MaintenanceTask{
		ID:               "rotation",
		Title:            "Tire rotation",
		Kind:             models.KindDistanceBased,
		DistanceInterval: 10000,
	}
	if err := taskRepository.Upsert(ctx, task); err != nil {
		t.Fatalf("seeding task: %v", err)
	}

	record, err := service.RecordCompletion(ctx, "rotation", CompletionInput{
		Date:            time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		OdometerReading: floatPtr(42000),
	})
	if err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}

	if record.NextDueAtDistance == nil || *record.NextDueAtDistance != 52000 {
		t.Errorf("record next due distance = %v, want 52000", record.NextDueAtDistance)
	}

	stored, err := taskRepository.Get(ctx, "rotation")
	if err != nil {
		t.Fatalf("reloading task: %v", err)
	}
	if stored.LastCompletedAtDistance == nil || *stored.LastCompletedAtDistance != 42000 {
		t.Errorf("last completed distance = %v, want 42000", stored.LastCompletedAtDistance)
	}
	if stored.NextDueAtDistance == nil || *stored.NextDueAtDistance != 52000 {
		t.Errorf("task next due distance = %v, want 52000", stored.NextDueAtDistance)
	}

	current, err := taskRepository.CurrentDistance(ctx)
	if err != nil {
		t.Fatalf("reading odometer: %v", err)
	}
	if current != 42000 {
		t.Errorf("odometer = %v, want 42000 after completion with a reading", current)
	}
}

func TestRecordCompletion_RejectsOdometerBelowCurrent(t *testing.T) {
	ctx := context.Background()
	service, taskRepository := newTestService(t)

	if err := taskRepository.SetCurrentDistance(ctx, 50000); err != nil {
		t.Fatalf("setting odometer: %v", err)
	}
	task := models.MaintenanceTask{ID: "rotation", Title: "Tire rotation", Kind: models.KindDistanceBased, DistanceInterval: 10000}
	if err := taskRepository.Upsert(ctx, task); err != nil {
		t.Fatalf("seeding task: %v", err)
	}

	_, err := service.RecordCompletion(ctx, "rotation", CompletionInput{
		Date:            time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		OdometerReading: floatPtr(49000),
	})
	if !errs.IsValidation(err) {
		t.Errorf("got %v, want validation error for a reading below the current odometer", err)
	}
}

func TestRecordCompletion_DistanceBasedRequiresReading(t *testing.T) {
	ctx := context.Background()
	service, taskRepository := newTestService(t)

	task := models.MaintenanceTask{ID: "rotation", Title: "Tire rotation", Kind: models.KindDistanceBased, DistanceInterval: 10000}
	if err := taskRepository.Upsert(ctx, task); err != nil {
		t.Fatalf("seeding task: %v", err)
	}

	_, err := service.RecordCompletion(ctx, "rotation", CompletionInput{
		Date: time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
	})
	if !errs.IsValidation(err) {
		t.Errorf("got %v, want validation error for a missing odometer reading", err)
	}
}

func TestRecordCompletion_UnknownTask(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	_, err := service.RecordCompletion(ctx, "missing", CompletionInput{
		Date: time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
	})
	if !errs.IsNotFound(err) {
		t.Errorf("got %v, want not-found error", err)
	}
}

func TestRecordCompletion_UnparseableIntervalClearsNextDue(t *testing.T) {
	ctx := context.Background()
	service, taskRepository := newTestService(t)

	nextDue := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	task := models.MaintenanceTask{
		ID:        "inspection",
		Title:     "State inspection",
		Kind:      models.KindTimeBased,
		Interval:  "when the sticker expires",
		NextDueAt: &nextDue,
	}
	if err := taskRepository.Upsert(ctx, task); err != nil {
		t.Fatalf("seeding task: %v", err)
	}

	record, err := service.RecordCompletion(ctx, "inspection", CompletionInput{
		Date: time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	if record.NextDueAt != nil {
		t.Errorf("record next due = %v, want nil for a free-form interval", record.NextDueAt)
	}

	stored, err := taskRepository.Get(ctx, "inspection")
	if err != nil {
		t.Fatalf("reloading task: %v", err)
	}
	if stored.NextDueAt != nil {
		t.Errorf("task next due = %v, want cleared", stored.NextDueAt)
	}
	if stored.Interval != "when the sticker expires" {
		t.Errorf("interval = %q, must stay verbatim", stored.Interval)
	}
}

func TestCreateTask(t *testing.T) {
	ctx := context.Background()
	service, taskRepository := newTestService(t)

	task, err := service.CreateTask(ctx, TaskInput{
		Title:    "Wax",
		Kind:     models.KindTimeBased,
		Interval: "45 days",
		Tags:     []string{"Body", "Detailing"},
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if !task.CreatedByUser {
		t.Error("created task must be flagged user-created")
	}
	if !task.IsRecurring {
		t.Error("tasks default to recurring")
	}

	stored, err := taskRepository.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("reloading task: %v", err)
	}
	if stored.Interval != "45 days" {
		t.Errorf("interval = %q, want %q", stored.Interval, "45 days")
	}

	intervals, err := taskRepository.CustomIntervals(ctx)
	if err != nil {
		t.Fatalf("loading custom intervals: %v", err)
	}
	if len(intervals) != 1 || intervals[0] != "45 days" {
		t.Errorf("custom intervals = %v, want the non-fixed interval remembered", intervals)
	}

	tags, err := taskRepository.CustomTags(ctx)
	if err != nil {
		t.Fatalf("loading custom tags: %v", err)
	}
	if len(tags) != 1 || tags[0] != "Detailing" {
		t.Errorf("custom tags = %v, want only the non-predefined tag remembered", tags)
	}
}

func TestRecordCompletion_OverlappingCompletionsAllPersist(t *testing.T) {
	ctx := context.Background()
	service, taskRepository := newTestService(t)

	task := models.MaintenanceTask{ID: "oil", Title: "Oil change", Kind: models.KindTimeBased, Interval: "monthly"}
	if err := taskRepository.Upsert(ctx, task); err != nil {
		t.Fatalf("seeding task: %v", err)
	}

	const writers = 8
	var wg sync.WaitGroup
	completionErrors := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(day int) {
			defer wg.Done()
			_, err := service.RecordCompletion(ctx, "oil", CompletionInput{
				Date: time.Date(2024, 5, 1+day, 0, 0, 0, 0, time.UTC),
			})
			completionErrors <- err
		}(i)
	}
	wg.Wait()
	close(completionErrors)
	for err := range completionErrors {
		if err != nil {
			t.Fatalf("RecordCompletion: %v", err)
		}
	}

	stored, err := taskRepository.Get(ctx, "oil")
	if err != nil {
		t.Fatalf("reloading task: %v", err)
	}
	if len(stored.CompletionHistory) != writers {
		t.Errorf("persisted %d completion records, want %d", len(stored.CompletionHistory), writers)
	}
}

func TestCreateTask_Validation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	tests := []struct {
		name  string
		input TaskInput
	}{
		{"missing title", TaskInput{Kind: models.KindTimeBased, Interval: "monthly"}},
		{"unknown kind", TaskInput{Title: "x", Kind: "user-based"}},
		{"time-based without interval", TaskInput{Title: "x", Kind: models.KindTimeBased}},
		{"zero day count", TaskInput{Title: "x", Kind: models.KindTimeBased, Interval: "0 days"}},
		{"zero day count with leading zeros", TaskInput{Title: "x", Kind: models.KindTimeBased, Interval: "00 days"}},
		{"zero day count mixed case", TaskInput{Title: "x", Kind: models.KindTimeBased, Interval: "0 Days"}},
		{"distance-based without distance", TaskInput{Title: "x", Kind: models.KindDistanceBased}},
		{"distance-based with time interval", TaskInput{Title: "x", Kind: models.KindDistanceBased, DistanceInterval: 5000, Interval: "monthly"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := service.CreateTask(ctx, test.input); !errs.IsValidation(err) {
				t.Errorf("got %v, want validation error", err)
			}
		})
	}
}

func TestUpdateTask_UnknownTask(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	err := service.UpdateTask(ctx, models.MaintenanceTask{ID: "missing", Title: "x"})
	if !errs.IsNotFound(err) {
		t.Errorf("got %v, want not-found error", err)
	}
}

func TestSeedDefaults(t *testing.T) {
	ctx := context.Background()
	service, taskRepository := newTestService(t)

	added, err := service.SeedDefaults(ctx)
	if err != nil {
		t.Fatalf("SeedDefaults: %v", err)
	}
	if added != len(defaultTasks()) {
		t.Errorf("added %d tasks, want %d", added, len(defaultTasks()))
	}

	// Seeding again must not clobber or duplicate.
	added, err = service.SeedDefaults(ctx)
	if err != nil {
		t.Fatalf("SeedDefaults again: %v", err)
	}
	if added != 0 {
		t.Errorf("re-seed added %d tasks, want 0", added)
	}

	tasks, err := taskRepository.List(ctx)
	if err != nil {
		t.Fatalf("listing tasks: %v", err)
	}
	if len(tasks) != len(defaultTasks()) {
		t.Errorf("got %d tasks, want %d", len(tasks), len(defaultTasks()))
	}
}
