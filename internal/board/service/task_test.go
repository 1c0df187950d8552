package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
	"github.com/apper-canvas/holodevboard/internal/events"
)

func TestTaskCreateDefaults(t *testing.T) {
	f := newFixture(t)
	task := f.task(t, f.backlog, "  Write docs ")

	assert.Equal(t, "Write docs", task.Title)
	assert.Equal(t, f.board.ID, task.BoardID)
	assert.Equal(t, models.DefaultPriority, task.Priority)
	assert.Equal(t, models.DefaultAssignee, task.Assignee)
	assert.Equal(t, []int64{}, task.LabelIDs)
	assert.Equal(t, []string{"Task created successfully"}, f.notes.Messages())
}

func TestTaskCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	yesterday := f.now.AddDate(0, 0, -1)
	_, err := f.svc.Tasks.Create(ctx, &CreateTaskRequest{ColumnID: f.backlog.ID, Title: "late", DueDate: &yesterday})
	assert.True(t, apperrors.IsValidation(err))

	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	task, err := f.svc.Tasks.Create(ctx, &CreateTaskRequest{ColumnID: f.backlog.ID, Title: "on time", DueDate: &today})
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)

	_, err = f.svc.Tasks.Create(ctx, &CreateTaskRequest{ColumnID: f.backlog.ID, Title: "x", Priority: "urgent"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.svc.Tasks.Create(ctx, &CreateTaskRequest{ColumnID: f.backlog.ID, Title: "x", LabelIDs: []int64{77}})
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.svc.Tasks.Create(ctx, &CreateTaskRequest{ColumnID: 404, Title: "x"})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTaskMoveBetweenColumns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.task(t, f.backlog, "move me")

	target := f.doing.ID
	moved, err := f.svc.Tasks.Update(ctx, task.ID, &UpdateTaskRequest{ColumnID: &target})
	require.NoError(t, err)
	assert.Equal(t, f.doing.ID, moved.ColumnID)
	assert.Equal(t, task.ID, moved.ID)
	assert.Contains(t, f.bus.published(), events.TaskMoved)

	inBacklog, err := f.svc.Tasks.GetByColumn(ctx, f.backlog.ID)
	require.NoError(t, err)
	assert.Empty(t, inBacklog)
}

func TestTaskMoveToOtherBoardRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.task(t, f.backlog, "stay home")

	other, err := f.svc.Boards.Create(ctx, &CreateBoardRequest{Name: "Other"})
	require.NoError(t, err)
	foreign, err := f.svc.Columns.Create(ctx, &CreateColumnRequest{BoardID: other.ID, Title: "Elsewhere"})
	require.NoError(t, err)

	_, err = f.svc.Tasks.Update(ctx, task.ID, &UpdateTaskRequest{ColumnID: &foreign.ID})
	assert.True(t, apperrors.IsValidation(err))

	got, err := f.svc.Tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, f.backlog.ID, got.ColumnID)
}

func TestTaskUpdateFailureNotifies(t *testing.T) {
	f := newFixture(t)
	task := f.task(t, f.backlog, "fragile")
	f.notes.Reset()
	f.repo.failOn("UpdateTask")

	title := "renamed"
	got, err := f.svc.Tasks.Update(context.Background(), task.ID, &UpdateTaskRequest{Title: &title})
	assert.Nil(t, got)
	assert.True(t, apperrors.IsPersistenceFailure(err))
	assert.Equal(t, []string{"Failed to update task"}, f.notes.Messages())
}

func TestTaskGetByLabels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.task(t, f.backlog, "a", f.bug.ID)
	f.task(t, f.backlog, "b", f.feature.ID)
	f.task(t, f.backlog, "c")

	tasks, err := f.svc.Tasks.GetByLabels(ctx, []string{"BUG"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "a", tasks[0].Title)

	tasks, err = f.svc.Tasks.GetByLabels(ctx, []string{"bug", "feature"})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	tasks, err = f.svc.Tasks.GetByLabels(ctx, []string{"unknown"})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskIDsNeverReused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.task(t, f.backlog, "1")
	f.task(t, f.backlog, "2")
	last := f.task(t, f.backlog, "3")

	_, err := f.svc.Tasks.Delete(ctx, last.ID)
	require.NoError(t, err)

	next := f.task(t, f.backlog, "4")
	assert.Greater(t, next.ID, last.ID)
}

func TestTaskGetAllFailureReturnsEmpty(t *testing.T) {
	f := newFixture(t)
	f.repo.failOn("ListTasks")

	tasks, err := f.svc.Tasks.GetAll(context.Background(), f.board.ID)
	require.Error(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
	assert.Equal(t, []string{"Failed to load tasks"}, f.notes.Messages())
}
