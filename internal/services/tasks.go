package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/kwheeler/garage/internal/errs"
	"github.com/kwheeler/garage/internal/models"
	"github.com/kwheeler/garage/internal/repository"
)

// CompletionInput is the user-supplied part of a completion event.
type CompletionInput struct {
	Date            time.Time `validate:"required"`
	Cost            float64   `validate:"gte=0"`
	OdometerReading *float64  `validate:"omitempty,gte=0"`
	Notes           string
}

// TaskInput describes a task to create.
type TaskInput struct {
	Title            string          `validate:"required"`
	Description      string
	Kind             models.TaskKind `validate:"required,oneof=time-based distance-based"`
	Interval         string
	DistanceInterval float64 `validate:"gte=0"`
	Tags             []string
	Subtasks         []string
	NotRecurring     bool
}

type TaskService struct {
	repository repository.TaskRepository
	validate   *validator.Validate
	now        func() time.Time
}

func NewTaskService(taskRepository repository.TaskRepository) *TaskService {
	return &TaskService{
		repository: taskRepository,
		validate:   validator.New(),
		now:        time.Now,
	}
}

// RecordCompletion appends an immutable completion record to the task's
// history, recomputes the task's next-due point, and advances the global
// odometer when a reading was supplied. The whole read-modify-write runs
// inside the repository's Update so that overlapping completions, edits and
// deletes cannot discard each other. Storage failures on this write path
// always propagate; a silently lost completion is unacceptable.
func (service *TaskService) RecordCompletion(ctx context.Context, taskID string, input CompletionInput) (models.CompletionRecord, error) {
	if err := service.validate.Struct(input); err != nil {
		return models.CompletionRecord{}, errs.Validation("completion", err.Error())
	}

	if input.OdometerReading != nil {
		// The comparison target is the global current odometer, never a
		// per-task distance.
		current, err := service.repository.CurrentDistance(ctx)
		if err != nil {
			return models.CompletionRecord{}, err
		}
		if *input.OdometerReading < current {
			return models.CompletionRecord{}, errs.Validation("odometer",
				fmt.Sprintf("reading %.0f is below the current odometer value %.0f", *input.OdometerReading, current))
		}
	}

	var record models.CompletionRecord
	err := service.repository.Update(ctx, taskID, func(task *models.MaintenanceTask) error {
		if task.Kind == models.KindDistanceBased && input.OdometerReading == nil {
			return errs.Validation("odometer", "an odometer reading is required for a distance-based task")
		}

		record = models.CompletionRecord{
			ID:                   uuid.New().String(),
			TaskID:               task.ID,
			Title:                task.Title,
			Kind:                 task.Kind,
			CompletionDate:       input.Date,
			Cost:                 input.Cost,
			OdometerAtCompletion: input.OdometerReading,
			Notes:                input.Notes,
		}

		switch task.Kind {
		case models.KindTimeBased:
			completedAt := input.Date
			task.LastCompletedAt = &completedAt
			if spec, err := ParseInterval(task.Interval); err == nil {
				nextDue := NextDueDate(completedAt, spec)
				task.NextDueAt = &nextDue
				record.NextDueAt = &nextDue
			} else {
				// Free-form intervals are persisted verbatim and cannot drive a
				// next-due computation; the task stays schedule-less.
				slog.Warn("interval not schedulable, clearing next due date", "task", task.ID, "interval", task.Interval)
				task.NextDueAt = nil
			}
		case models.KindDistanceBased:
			task.LastCompletedAtDistance = input.OdometerReading
			nextDue := *input.OdometerReading + task.DistanceInterval
			task.NextDueAtDistance = &nextDue
			record.NextDueAtDistance = &nextDue
		}

		task.CompletionHistory = append(task.CompletionHistory, record)
		task.UpdatedAt = service.now()
		return nil
	})
	if err != nil {
		return models.CompletionRecord{}, err
	}

	if input.OdometerReading != nil {
		if err := service.repository.SetCurrentDistanceRaw(ctx, *input.OdometerReading); err != nil {
			return models.CompletionRecord{}, err
		}
	}

	return record, nil
}

// CreateTask builds and persists a user-created task. The custom-interval and
// custom-tag catalogs are updated best-effort: a failure there is logged and
// never blocks the task itself.
func (service *TaskService) CreateTask(ctx context.Context, input TaskInput) (models.MaintenanceTask, error) {
	if err := service.validate.Struct(input); err != nil {
		return models.MaintenanceTask{}, errs.Validation("task", err.Error())
	}

	switch input.Kind {
	case models.KindTimeBased:
		if input.Interval == "" {
			return models.MaintenanceTask{}, errs.Validation("interval", "a time-based task requires an interval")
		}
		normalized := strings.ToLower(strings.TrimSpace(input.Interval))
		if match := daysPattern.FindStringSubmatch(normalized); match != nil {
			if days, err := strconv.Atoi(match[1]); err != nil || days <= 0 {
				return models.MaintenanceTask{}, errs.Validation("interval", "day count must be positive")
			}
		}
	case models.KindDistanceBased:
		if input.DistanceInterval <= 0 {
			return models.MaintenanceTask{}, errs.Validation("kilometers", "a distance-based task requires a positive distance interval")
		}
		if input.Interval != "" {
			return models.MaintenanceTask{}, errs.Validation("interval", "a distance-based task cannot carry a time interval")
		}
	}

	now := service.now()
	task := models.MaintenanceTask{
		ID:               fmt.Sprintf("user-%d", now.UnixMilli()),
		Title:            input.Title,
		Description:      input.Description,
		Kind:             input.Kind,
		CreatedByUser:    true,
		Interval:         input.Interval,
		DistanceInterval: input.DistanceInterval,
		Tags:             input.Tags,
		Subtasks:         input.Subtasks,
		IsRecurring:      !input.NotRecurring,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := service.repository.Upsert(ctx, task); err != nil {
		return models.MaintenanceTask{}, err
	}

	service.rememberCustoms(ctx, task)
	return task, nil
}

// UpdateTask replaces an existing task through the repository's atomic
// Update. Storage failures propagate: silently losing an edit is
// unacceptable.
func (service *TaskService) UpdateTask(ctx context.Context, task models.MaintenanceTask) error {
	task.UpdatedAt = service.now()
	if err := service.repository.Update(ctx, task.ID, func(stored *models.MaintenanceTask) error {
		*stored = task
		return nil
	}); err != nil {
		return err
	}
	service.rememberCustoms(ctx, task)
	return nil
}

func (service *TaskService) DeleteTask(ctx context.Context, id string) error {
	return service.repository.Delete(ctx, id)
}

func (service *TaskService) rememberCustoms(ctx context.Context, task models.MaintenanceTask) {
	if task.Kind == models.KindTimeBased && task.Interval != "" && !isFixedInterval(task.Interval) {
		if err := service.repository.SaveCustomInterval(ctx, task.Interval); err != nil {
			slog.Warn("saving custom interval", "interval", task.Interval, "error", err)
		}
	}
	for _, tag := range task.Tags {
		if isPredefinedTag(tag) {
			continue
		}
		if err := service.repository.SaveCustomTag(ctx, tag); err != nil {
			slog.Warn("saving custom tag", "tag", tag, "error", err)
		}
	}
}

func isPredefinedTag(tag string) bool {
	for _, predefined := range PredefinedTags() {
		if tag == predefined {
			return true
		}
	}
	return false
}

func isFixedInterval(interval string) bool {
	for _, name := range FixedIntervalNames() {
		if interval == name {
			return true
		}
	}
	return false
}
