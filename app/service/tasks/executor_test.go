package tasks

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskchat/app/storage"
)

func newTestExecutor(t *testing.T) *Service {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Shutdown() })

	store := &Store{db: db}
	require.NoError(t, store.migrate())

	return NewWithStore(store)
}

func createdTask(t *testing.T, result *Result) *Task {
	t.Helper()

	require.True(t, result.Success, "error: %s", result.Error)

	task, ok := result.Data.(*Task)
	require.True(t, ok)

	return task
}

func TestExecute_AddTask(t *testing.T) {
	exec := newTestExecutor(t)

	result := exec.Execute(context.Background(), ToolAddTask, map[string]any{
		"title":       "buy milk",
		"description": "2 liters",
	})

	task := createdTask(t, result)
	assert.Equal(t, "buy milk", task.Title)
	assert.Equal(t, "2 liters", task.Description)
	assert.Equal(t, StatusPending, task.Status)
	assert.Positive(t, task.ID)
}

func TestExecute_AddTaskRequiresTitle(t *testing.T) {
	exec := newTestExecutor(t)

	for _, args := range []map[string]any{
		{},
		{"title": ""},
		{"title": "   "},
	} {
		result := exec.Execute(context.Background(), ToolAddTask, args)

		require.False(t, result.Success)
		assert.Equal(t, CodeValidation, result.Code)
	}
}

func TestExecute_AddTaskTitleTooLong(t *testing.T) {
	exec := newTestExecutor(t)

	result := exec.Execute(context.Background(), ToolAddTask, map[string]any{
		"title": strings.Repeat("x", 256),
	})

	require.False(t, result.Success)
	assert.Equal(t, CodeValidation, result.Code)
}

func TestExecute_AddTaskDescriptionTooLong(t *testing.T) {
	exec := newTestExecutor(t)

	result := exec.Execute(context.Background(), ToolAddTask, map[string]any{
		"title":       "ok",
		"description": strings.Repeat("x", 1001),
	})

	require.False(t, result.Success)
	assert.Equal(t, CodeValidation, result.Code)
}

func TestExecute_ListTasks(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	first := createdTask(t, exec.Execute(ctx, ToolAddTask, map[string]any{"title": "buy milk"}))
	createdTask(t, exec.Execute(ctx, ToolAddTask, map[string]any{"title": "walk dog"}))

	require.True(t, exec.Execute(ctx, ToolCompleteTask, map[string]any{"task_id": first.ID}).Success)

	all := exec.Execute(ctx, ToolListTasks, map[string]any{})
	require.True(t, all.Success)
	list, ok := all.Data.([]Task)
	require.True(t, ok)
	require.Len(t, list, 2)
	assert.Equal(t, "buy milk", list[0].Title)
	assert.Equal(t, "walk dog", list[1].Title)

	pending := exec.Execute(ctx, ToolListTasks, map[string]any{"status": StatusPending})
	require.True(t, pending.Success)
	list, ok = pending.Data.([]Task)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "walk dog", list[0].Title)
}

func TestExecute_ListTasksBadStatus(t *testing.T) {
	exec := newTestExecutor(t)

	result := exec.Execute(context.Background(), ToolListTasks, map[string]any{"status": "archived"})

	require.False(t, result.Success)
	assert.Equal(t, CodeValidation, result.Code)
}

func TestExecute_CompleteTaskIdempotent(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	task := createdTask(t, exec.Execute(ctx, ToolAddTask, map[string]any{"title": "buy milk"}))

	first := exec.Execute(ctx, ToolCompleteTask, map[string]any{"task_id": task.ID})
	completed := createdTask(t, first)
	assert.Equal(t, StatusCompleted, completed.Status)

	// Completing again succeeds with no change.
	second := exec.Execute(ctx, ToolCompleteTask, map[string]any{"task_id": task.ID})
	completed = createdTask(t, second)
	assert.Equal(t, StatusCompleted, completed.Status)
}

func TestExecute_CompleteMissingTask(t *testing.T) {
	exec := newTestExecutor(t)

	result := exec.Execute(context.Background(), ToolCompleteTask, map[string]any{"task_id": float64(99)})

	require.False(t, result.Success)
	assert.Equal(t, CodeNotFound, result.Code)
}

func TestExecute_UpdateTask(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	task := createdTask(t, exec.Execute(ctx, ToolAddTask, map[string]any{"title": "buy milk"}))

	result := exec.Execute(ctx, ToolUpdateTask, map[string]any{
		"task_id": task.ID,
		"title":   "buy oat milk",
	})

	updated := createdTask(t, result)
	assert.Equal(t, "buy oat milk", updated.Title)
	assert.Equal(t, StatusPending, updated.Status)
}

func TestExecute_UpdateTaskNothingToUpdate(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	task := createdTask(t, exec.Execute(ctx, ToolAddTask, map[string]any{"title": "buy milk"}))

	result := exec.Execute(ctx, ToolUpdateTask, map[string]any{"task_id": task.ID})

	require.False(t, result.Success)
	assert.Equal(t, CodeValidation, result.Code)
}

func TestExecute_DeleteTaskReturnsDeleted(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	task := createdTask(t, exec.Execute(ctx, ToolAddTask, map[string]any{"title": "buy milk"}))

	result := exec.Execute(ctx, ToolDeleteTask, map[string]any{"task_id": task.ID})
	deleted := createdTask(t, result)
	assert.Equal(t, "buy milk", deleted.Title)

	// Operating on the deleted id now reports not found.
	again := exec.Execute(ctx, ToolCompleteTask, map[string]any{"task_id": task.ID})
	require.False(t, again.Success)
	assert.Equal(t, CodeNotFound, again.Code)
}

func TestExecute_InvalidTaskID(t *testing.T) {
	exec := newTestExecutor(t)

	for _, args := range []map[string]any{
		{},
		{"task_id": 0},
		{"task_id": -1},
		{"task_id": "abc"},
	} {
		result := exec.Execute(context.Background(), ToolDeleteTask, args)

		require.False(t, result.Success)
		assert.Equal(t, CodeValidation, result.Code)
	}
}

func TestExecute_UnknownTool(t *testing.T) {
	exec := newTestExecutor(t)

	result := exec.Execute(context.Background(), "frobnicate", nil)

	require.False(t, result.Success)
	assert.Equal(t, CodeUnknownTool, result.Code)
}

func TestSpecs_CoverEveryTool(t *testing.T) {
	exec := newTestExecutor(t)

	names := make([]string, 0)
	for _, spec := range exec.Specs() {
		names = append(names, spec.Name)
		assert.NotEmpty(t, spec.Description)
		assert.NotNil(t, spec.InputSchema)
	}

	assert.ElementsMatch(t, []string{
		ToolAddTask, ToolListTasks, ToolUpdateTask, ToolCompleteTask, ToolDeleteTask,
	}, names)
}
