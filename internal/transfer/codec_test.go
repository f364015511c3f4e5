package transfer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwheeler/garage/internal/errs"
	"github.com/kwheeler/garage/internal/models"
	"github.com/kwheeler/garage/internal/repository"
	"github.com/kwheeler/garage/internal/testutil"
)

func newTestCodec(t *testing.T) (*Codec, repository.TaskRepository) {
	t.Helper()
	taskRepository := repository.NewTaskRepository(testutil.NewTestStore(t))
	return NewCodec(taskRepository), taskRepository
}

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	codec, source := newTestCodec(t)

	original := sampleTask()
	require.NoError(t, source.Upsert(ctx, original))

	exported, err := codec.ExportAll(ctx)
	require.NoError(t, err)

	target, targetRepository := newTestCodec(t)
	result, err := target.ImportMerge(ctx, exported)
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 1, Skipped: 0}, result)

	got, err := targetRepository.Get(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, original.Title, got.Title)
	assert.Equal(t, original.Kind, got.Kind)
	require.Len(t, got.CompletionHistory, 1)
	assert.Equal(t, original.CompletionHistory[0].ID, got.CompletionHistory[0].ID)
}

func TestImportMerge_SkipsExistingIDs(t *testing.T) {
	ctx := context.Background()
	codec, taskRepository := newTestCodec(t)

	existing := models.MaintenanceTask{ID: "oil", Title: "My oil change", Kind: models.KindTimeBased, Interval: "monthly"}
	require.NoError(t, taskRepository.Upsert(ctx, existing))

	content := Header + "\n" +
		`"oil","Imported oil change","","time-based","monthly","","","","","","","","false","true","[]"` + "\n" +
		`"new","Brand new","","time-based","weekly","","","","","","","","false","true","[]"` + "\n"

	result, err := codec.ImportMerge(ctx, content)
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 1, Skipped: 1}, result)

	kept, err := taskRepository.Get(ctx, "oil")
	require.NoError(t, err)
	assert.Equal(t, "My oil change", kept.Title, "existing tasks are never overwritten by an import")

	added, err := taskRepository.Get(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, "Brand new", added.Title)
}

func TestImportMerge_AbortsWithoutPartialMerge(t *testing.T) {
	ctx := context.Background()
	codec, taskRepository := newTestCodec(t)

	content := Header + "\n" +
		`"good","Good task","","time-based","monthly","","","","","","","","false","true","[]"` + "\n" +
		`"bad","Bad task","","user-based","","","","","","","","","false","true","[]"` + "\n"

	_, err := codec.ImportMerge(ctx, content)
	require.True(t, errs.IsFormat(err), "got %v", err)

	tasks, err := taskRepository.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks, "a failed import must not merge any rows")
}
