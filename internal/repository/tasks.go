package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/kwheeler/garage/internal/errs"
	"github.com/kwheeler/garage/internal/models"
	"github.com/kwheeler/garage/internal/storage"
)

// Store keys. The whole task collection lives under one key and every
// mutation is a full-document replace; completionHistoryKey is a legacy
// per-task history map kept for files written by older versions and is never
// the primary read path.
const (
	taskListKey        = "maintenance_tasks"
	currentDistanceKey = "current_km"
	customTagsKey      = "custom_tags"
	customIntervalsKey = "custom_intervals"
	legacyHistoryKey   = "completion_history"
)

type TaskRepository interface {
	List(ctx context.Context) ([]models.MaintenanceTask, error)
	Get(ctx context.Context, id string) (models.MaintenanceTask, error)
	Upsert(ctx context.Context, tasks ...models.MaintenanceTask) error
	Update(ctx context.Context, id string, mutate func(task *models.MaintenanceTask) error) error
	Delete(ctx context.Context, id string) error

	CurrentDistance(ctx context.Context) (float64, error)
	SetCurrentDistanceRaw(ctx context.Context, kilometers float64) error
	SetCurrentDistance(ctx context.Context, kilometers float64) error

	CustomTags(ctx context.Context) ([]string, error)
	SaveCustomTag(ctx context.Context, tag string) error
	CustomIntervals(ctx context.Context) ([]string, error)
	SaveCustomInterval(ctx context.Context, interval string) error

	ClearAll(ctx context.Context) error
}

// StoreTaskRepository is the single source of truth for tasks and the global
// odometer value. A mutex serializes every read-modify-write cycle so that
// overlapping mutations cannot silently discard each other's writes.
type StoreTaskRepository struct {
	store storage.Store
	mutex sync.Mutex
}

func NewTaskRepository(store storage.Store) *StoreTaskRepository {
	return &StoreTaskRepository{store: store}
}

// List returns the task collection. Read failures are recovered locally with
// an empty collection so read-only views can still render; they are logged,
// never silently dropped.
func (repository *StoreTaskRepository) List(ctx context.Context) ([]models.MaintenanceTask, error) {
	tasks, err := repository.loadTasks(ctx)
	if err != nil {
		slog.Warn("loading task list, substituting empty collection", "error", err)
		return []models.MaintenanceTask{}, nil
	}
	return tasks, nil
}

func (repository *StoreTaskRepository) Get(ctx context.Context, id string) (models.MaintenanceTask, error) {
	tasks, err := repository.loadTasks(ctx)
	if err != nil {
		return models.MaintenanceTask{}, err
	}
	for _, task := range tasks {
		if task.ID == id {
			return task, nil
		}
	}
	return models.MaintenanceTask{}, errs.NotFound("task", id)
}

// Upsert replaces tasks with matching ids and appends the rest, preserving
// collection order. Unlike List, the read half of the cycle propagates
// storage failures: writing a collection reconstructed from a failed read
// would wipe every task.
func (repository *StoreTaskRepository) Upsert(ctx context.Context, incoming ...models.MaintenanceTask) error {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	tasks, err := repository.loadTasks(ctx)
	if err != nil {
		return err
	}

	for _, task := range incoming {
		replaced := false
		for i := range tasks {
			if tasks[i].ID == task.ID {
				tasks[i] = task
				replaced = true
				break
			}
		}
		if !replaced {
			tasks = append(tasks, task)
		}
	}

	return repository.saveTasks(ctx, tasks)
}

// Update loads the task, applies mutate to it in place and writes the
// collection back, all while holding the mutex. Callers that derive a task's
// new state from its current state must go through here: a Get followed by an
// Upsert spans two critical sections and can lose a concurrent mutation. A
// mutate error aborts without writing.
func (repository *StoreTaskRepository) Update(ctx context.Context, id string, mutate func(task *models.MaintenanceTask) error) error {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	tasks, err := repository.loadTasks(ctx)
	if err != nil {
		return err
	}

	for i := range tasks {
		if tasks[i].ID == id {
			if err := mutate(&tasks[i]); err != nil {
				return err
			}
			return repository.saveTasks(ctx, tasks)
		}
	}
	return errs.NotFound("task", id)
}

// Delete removes the task and its completion history as a unit. The legacy
// history map is cleaned up best-effort; a failure there is logged only.
func (repository *StoreTaskRepository) Delete(ctx context.Context, id string) error {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	tasks, err := repository.loadTasks(ctx)
	if err != nil {
		return err
	}

	index := -1
	for i := range tasks {
		if tasks[i].ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return errs.NotFound("task", id)
	}

	tasks = append(tasks[:index], tasks[index+1:]...)
	if err := repository.saveTasks(ctx, tasks); err != nil {
		return err
	}

	if err := repository.removeLegacyHistory(ctx, id); err != nil {
		slog.Warn("cleaning legacy history after delete", "task", id, "error", err)
	}
	return nil
}

func (repository *StoreTaskRepository) CurrentDistance(ctx context.Context) (float64, error) {
	raw, err := repository.store.Get(ctx, currentDistanceKey)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		slog.Warn("loading current distance, substituting zero", "error", err)
		return 0, nil
	}
	kilometers, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("parsing stored current distance, substituting zero", "value", raw, "error", err)
		return 0, nil
	}
	return kilometers, nil
}

// SetCurrentDistanceRaw writes the odometer value without validation. It is
// the primitive used by the completion engine, which has already compared the
// reading against the stored value.
func (repository *StoreTaskRepository) SetCurrentDistanceRaw(ctx context.Context, kilometers float64) error {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	return repository.setCurrentDistanceLocked(ctx, kilometers)
}

// SetCurrentDistance is the validating wrapper used on every path that
// accepts user input: the odometer is monotonic, a decrease is rejected, not
// clamped.
func (repository *StoreTaskRepository) SetCurrentDistance(ctx context.Context, kilometers float64) error {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	current, err := repository.CurrentDistance(ctx)
	if err != nil {
		return err
	}
	if kilometers < current {
		return errs.Validation("odometer", "reading cannot be lower than the current odometer value")
	}
	return repository.setCurrentDistanceLocked(ctx, kilometers)
}

func (repository *StoreTaskRepository) setCurrentDistanceLocked(ctx context.Context, kilometers float64) error {
	value := strconv.FormatFloat(kilometers, 'f', -1, 64)
	if err := repository.store.Set(ctx, currentDistanceKey, value); err != nil {
		return errs.Storage("set", currentDistanceKey, err)
	}
	return nil
}

func (repository *StoreTaskRepository) CustomTags(ctx context.Context) ([]string, error) {
	return repository.loadStringList(ctx, customTagsKey)
}

// SaveCustomTag is idempotent: saving a tag that already exists leaves the
// list unchanged.
func (repository *StoreTaskRepository) SaveCustomTag(ctx context.Context, tag string) error {
	return repository.appendUnique(ctx, customTagsKey, tag)
}

func (repository *StoreTaskRepository) CustomIntervals(ctx context.Context) ([]string, error) {
	return repository.loadStringList(ctx, customIntervalsKey)
}

func (repository *StoreTaskRepository) SaveCustomInterval(ctx context.Context, interval string) error {
	return repository.appendUnique(ctx, customIntervalsKey, interval)
}

func (repository *StoreTaskRepository) ClearAll(ctx context.Context) error {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	if err := repository.store.ClearAll(ctx); err != nil {
		return errs.Storage("clear", "", err)
	}
	return nil
}

func (repository *StoreTaskRepository) loadTasks(ctx context.Context) ([]models.MaintenanceTask, error) {
	raw, err := repository.store.Get(ctx, taskListKey)
	if errors.Is(err, storage.ErrNotFound) {
		return []models.MaintenanceTask{}, nil
	}
	if err != nil {
		return nil, errs.Storage("get", taskListKey, err)
	}

	var tasks []models.MaintenanceTask
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, errs.Storage("decode", taskListKey, err)
	}

	repository.attachLegacyHistory(ctx, tasks)
	return tasks, nil
}

func (repository *StoreTaskRepository) saveTasks(ctx context.Context, tasks []models.MaintenanceTask) error {
	encoded, err := json.Marshal(tasks)
	if err != nil {
		return errs.Storage("encode", taskListKey, err)
	}
	if err := repository.store.Set(ctx, taskListKey, string(encoded)); err != nil {
		return errs.Storage("set", taskListKey, err)
	}
	return nil
}

// attachLegacyHistory backfills completion history from the per-task history
// map older versions wrote. A task that already carries history in the
// primary document wins.
func (repository *StoreTaskRepository) attachLegacyHistory(ctx context.Context, tasks []models.MaintenanceTask) {
	raw, err := repository.store.Get(ctx, legacyHistoryKey)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		slog.Warn("loading legacy history map", "error", err)
		return
	}

	var legacy map[string][]models.CompletionRecord
	if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
		slog.Warn("decoding legacy history map", "error", err)
		return
	}

	for i := range tasks {
		if len(tasks[i].CompletionHistory) > 0 {
			continue
		}
		if records, ok := legacy[tasks[i].ID]; ok && len(records) > 0 {
			tasks[i].CompletionHistory = records
		}
	}
}

func (repository *StoreTaskRepository) removeLegacyHistory(ctx context.Context, taskID string) error {
	raw, err := repository.store.Get(ctx, legacyHistoryKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return errs.Storage("get", legacyHistoryKey, err)
	}

	var legacy map[string][]models.CompletionRecord
	if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
		return errs.Storage("decode", legacyHistoryKey, err)
	}
	if _, ok := legacy[taskID]; !ok {
		return nil
	}
	delete(legacy, taskID)

	encoded, err := json.Marshal(legacy)
	if err != nil {
		return errs.Storage("encode", legacyHistoryKey, err)
	}
	if err := repository.store.Set(ctx, legacyHistoryKey, string(encoded)); err != nil {
		return errs.Storage("set", legacyHistoryKey, err)
	}
	return nil
}

func (repository *StoreTaskRepository) loadStringList(ctx context.Context, key string) ([]string, error) {
	raw, err := repository.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		slog.Warn("loading list, substituting empty", "key", key, "error", err)
		return []string{}, nil
	}

	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		slog.Warn("decoding list, substituting empty", "key", key, "error", err)
		return []string{}, nil
	}
	return values, nil
}

func (repository *StoreTaskRepository) appendUnique(ctx context.Context, key string, value string) error {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	raw, err := repository.store.Get(ctx, key)
	var values []string
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return errs.Storage("get", key, err)
	default:
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			return errs.Storage("decode", key, err)
		}
	}

	for _, existing := range values {
		if existing == value {
			return nil
		}
	}
	values = append(values, value)

	encoded, err := json.Marshal(values)
	if err != nil {
		return errs.Storage("encode", key, err)
	}
	if err := repository.store.Set(ctx, key, string(encoded)); err != nil {
		return errs.Storage("set", key, err)
	}
	return nil
}
