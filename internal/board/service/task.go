package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
	"github.com/apper-canvas/holodevboard/internal/events"
	"github.com/apper-canvas/holodevboard/internal/notify"
)

// TaskService manages tasks. A task belongs to exactly one column and its
// board is always the board of that column.
type TaskService struct {
	base
}

// GetAll returns the tasks of a board in id order, or of every board when
// boardID is 0.
func (s *TaskService) GetAll(ctx context.Context, boardID int64) ([]*models.Task, error) {
	tasks, err := s.repo.ListTasks(ctx, boardID)
	if err != nil {
		return []*models.Task{}, s.readFailed(ctx, "load tasks", err)
	}
	return tasks, nil
}

// GetByID returns one task.
func (s *TaskService) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, s.readFailed(ctx, "load task", err)
	}
	return task, nil
}

// GetByColumn returns the tasks owned by a column.
func (s *TaskService) GetByColumn(ctx context.Context, columnID int64) ([]*models.Task, error) {
	tasks, err := s.repo.ListTasksByColumn(ctx, columnID)
	if err != nil {
		return []*models.Task{}, s.readFailed(ctx, "load tasks", err)
	}
	return tasks, nil
}

// GetByLabels returns tasks carrying at least one label whose name matches
// one of names, ignoring case.
func (s *TaskService) GetByLabels(ctx context.Context, names []string) ([]*models.Task, error) {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			wanted[n] = true
		}
	}
	if len(wanted) == 0 {
		return []*models.Task{}, nil
	}

	labels, err := s.repo.ListLabels(ctx)
	if err != nil {
		return []*models.Task{}, s.readFailed(ctx, "load labels", err)
	}
	ids := make(map[int64]bool)
	for _, l := range labels {
		if wanted[strings.ToLower(l.Name)] {
			ids[l.ID] = true
		}
	}
	if len(ids) == 0 {
		return []*models.Task{}, nil
	}

	tasks, err := s.repo.ListTasks(ctx, 0)
	if err != nil {
		return []*models.Task{}, s.readFailed(ctx, "load tasks", err)
	}
	return slices.DeleteFunc(tasks, func(t *models.Task) bool {
		return !slices.ContainsFunc(t.LabelIDs, func(id int64) bool { return ids[id] })
	}), nil
}

// Create validates req, applies defaults and stores the task in its column.
func (s *TaskService) Create(ctx context.Context, req *CreateTaskRequest) (*models.Task, error) {
	title, verr := required("title", req.Title)
	if verr != nil {
		return nil, s.invalid(ctx, verr)
	}
	priority := req.Priority
	if priority == "" {
		priority = models.DefaultPriority
	}
	if verr := validatePriority(priority); verr != nil {
		return nil, s.invalid(ctx, verr)
	}
	if req.DueDate != nil {
		if verr := validateDueDate(*req.DueDate, s.now()); verr != nil {
			return nil, s.invalid(ctx, verr)
		}
	}
	assignee := strings.TrimSpace(req.Assignee)
	if assignee == "" {
		assignee = models.DefaultAssignee
	}

	col, err := s.repo.GetColumn(ctx, req.ColumnID)
	if err != nil {
		return nil, s.writeFailed(ctx, "create task", err)
	}
	ctx = notify.WithBoard(ctx, col.BoardID)

	labelIDs, err := s.checkLabels(ctx, req.LabelIDs)
	if err != nil {
		return nil, s.writeFailed(ctx, "create task", err)
	}

	task := &models.Task{
		BoardID:     col.BoardID,
		ColumnID:    col.ID,
		Title:       title,
		Description: req.Description,
		Priority:    priority,
		Assignee:    assignee,
		LabelIDs:    labelIDs,
		DueDate:     utcDate(req.DueDate),
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, s.writeFailed(ctx, "create task", err)
	}

	s.publish(ctx, events.TaskCreated, taskEventData(task))
	s.logger.Info("task created",
		zap.Int64("task_id", task.ID),
		zap.Int64("column_id", task.ColumnID),
		zap.String("title", task.Title))
	s.succeeded(ctx, "created")
	return task, nil
}

// Update merges the set fields of req. Changing ColumnID moves the task; the
// target column must be on the task's board.
func (s *TaskService) Update(ctx context.Context, id int64, req *UpdateTaskRequest) (*models.Task, error) {
	var title string
	if req.Title != nil {
		trimmed, verr := required("title", *req.Title)
		if verr != nil {
			return nil, s.invalid(ctx, verr)
		}
		title = trimmed
	}
	if req.Priority != nil {
		if verr := validatePriority(*req.Priority); verr != nil {
			return nil, s.invalid(ctx, verr)
		}
	}
	if req.DueDate != nil {
		if verr := validateDueDate(*req.DueDate, s.now()); verr != nil {
			return nil, s.invalid(ctx, verr)
		}
	}

	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, s.writeFailed(ctx, "update task", err)
	}
	ctx = notify.WithBoard(ctx, task.BoardID)
	fromColumn := task.ColumnID

	if req.ColumnID != nil && *req.ColumnID != task.ColumnID {
		col, err := s.repo.GetColumn(ctx, *req.ColumnID)
		if err != nil {
			return nil, s.writeFailed(ctx, "update task", err)
		}
		if col.BoardID != task.BoardID {
			return nil, s.invalid(ctx, apperrors.ValidationError("column_id",
				fmt.Sprintf("column %d belongs to another board", col.ID)))
		}
		task.ColumnID = col.ID
		task.BoardID = col.BoardID
	}
	if req.LabelIDs != nil {
		labelIDs, err := s.checkLabels(ctx, *req.LabelIDs)
		if err != nil {
			return nil, s.writeFailed(ctx, "update task", err)
		}
		task.LabelIDs = labelIDs
	}
	if req.Title != nil {
		task.Title = title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Assignee != nil {
		task.Assignee = strings.TrimSpace(*req.Assignee)
		if task.Assignee == "" {
			task.Assignee = models.DefaultAssignee
		}
	}
	switch {
	case req.ClearDueDate:
		task.DueDate = nil
	case req.DueDate != nil:
		task.DueDate = utcDate(req.DueDate)
	}
	task.ID = id
	task.UpdatedAt = s.now()

	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return nil, s.writeFailed(ctx, "update task", err)
	}

	data := taskEventData(task)
	if task.ColumnID != fromColumn {
		data["from_column_id"] = fromColumn
		s.publish(ctx, events.TaskMoved, data)
	} else {
		s.publish(ctx, events.TaskUpdated, data)
	}
	s.logger.Info("task updated", zap.Int64("task_id", id))
	s.succeeded(ctx, "updated")
	return task, nil
}

// Delete removes a task and returns it.
func (s *TaskService) Delete(ctx context.Context, id int64) (*models.Task, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, s.writeFailed(ctx, "delete task", err)
	}
	ctx = notify.WithBoard(ctx, task.BoardID)
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return nil, s.writeFailed(ctx, "delete task", err)
	}

	s.publish(ctx, events.TaskDeleted, taskEventData(task))
	s.logger.Info("task deleted", zap.Int64("task_id", id))
	s.succeeded(ctx, "deleted")
	return task, nil
}

// checkLabels dedupes ids and verifies that each label exists.
func (s *TaskService) checkLabels(ctx context.Context, ids []int64) ([]int64, error) {
	ids = dedupeLabels(ids)
	if len(ids) == 0 {
		return ids, nil
	}
	labels, err := s.repo.ListLabels(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[int64]bool, len(labels))
	for _, l := range labels {
		known[l.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return nil, apperrors.ValidationError("labels", fmt.Sprintf("label %d does not exist", id))
		}
	}
	return ids, nil
}

func utcDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	u := d.UTC()
	return &u
}

func taskEventData(t *models.Task) map[string]interface{} {
	return map[string]interface{}{
		"board_id":  t.BoardID,
		"task_id":   t.ID,
		"column_id": t.ColumnID,
		"title":     t.Title,
		"priority":  string(t.Priority),
		"labels":    t.LabelIDs,
	}
}
