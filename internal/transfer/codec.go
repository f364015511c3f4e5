package transfer

import (
	"context"

	"github.com/kwheeler/garage/internal/models"
	"github.com/kwheeler/garage/internal/repository"
)

// Result reports the outcome of a merge: tasks added versus tasks skipped
// because their id already existed.
type Result struct {
	Imported int
	Skipped  int
}

// Codec reads and merges through the task repository.
type Codec struct {
	repository repository.TaskRepository
}

func NewCodec(taskRepository repository.TaskRepository) *Codec {
	return &Codec{repository: taskRepository}
}

func (codec *Codec) ExportAll(ctx context.Context) (string, error) {
	tasks, err := codec.repository.List(ctx)
	if err != nil {
		return "", err
	}
	return Encode(tasks), nil
}

// ImportMerge parses the content and merges new tasks into the repository.
// A task whose id already exists is silently skipped and counted; any parse
// or validation failure aborts the whole import with no partial merge.
func (codec *Codec) ImportMerge(ctx context.Context, content string) (Result, error) {
	parsed, err := Decode(content)
	if err != nil {
		return Result{}, err
	}

	existing, err := codec.repository.List(ctx)
	if err != nil {
		return Result{}, err
	}
	present := make(map[string]bool, len(existing))
	for _, task := range existing {
		present[task.ID] = true
	}

	var result Result
	var toAdd []models.MaintenanceTask
	for _, task := range parsed {
		if present[task.ID] {
			result.Skipped++
			continue
		}
		toAdd = append(toAdd, task)
		result.Imported++
	}

	if len(toAdd) > 0 {
		if err := codec.repository.Upsert(ctx, toAdd...); err != nil {
			return Result{}, err
		}
	}
	return result, nil
}
