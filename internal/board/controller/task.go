package controller

import (
	"context"

	"github.com/apper-canvas/holodevboard/internal/board/dto"
	"github.com/apper-canvas/holodevboard/internal/board/filter"
	"github.com/apper-canvas/holodevboard/internal/board/models"
	"github.com/apper-canvas/holodevboard/internal/board/service"
)

type TaskController struct {
	services *service.Services
}

func NewTaskController(svc *service.Services) *TaskController {
	return &TaskController{services: svc}
}

// labels resolves label names for task cards. A failed label read degrades
// to cards without labels.
func (c *TaskController) labels(ctx context.Context) []*models.Label {
	labels, err := c.services.Labels.GetAll(ctx)
	if err != nil {
		return nil
	}
	return labels
}

// ListTasks returns the tasks of a board that match the query.
func (c *TaskController) ListTasks(ctx context.Context, req dto.ListTasksRequest) (dto.ListTasksResponse, error) {
	if _, err := c.services.Boards.GetByID(ctx, req.BoardID); err != nil {
		return dto.ListTasksResponse{}, err
	}
	tasks, err := c.services.Tasks.GetAll(ctx, req.BoardID)
	if err != nil {
		return dto.ListTasksResponse{}, err
	}
	labels := c.labels(ctx)
	return dto.FromTasks(filter.Apply(tasks, labels, req.Query), labels), nil
}

func (c *TaskController) ListByColumn(ctx context.Context, req dto.GetRequest) (dto.ListTasksResponse, error) {
	if _, err := c.services.Columns.GetByID(ctx, req.ID); err != nil {
		return dto.ListTasksResponse{}, err
	}
	tasks, err := c.services.Tasks.GetByColumn(ctx, req.ID)
	if err != nil {
		return dto.ListTasksResponse{}, err
	}
	return dto.FromTasks(tasks, c.labels(ctx)), nil
}

func (c *TaskController) ListByLabels(ctx context.Context, names []string) (dto.ListTasksResponse, error) {
	tasks, err := c.services.Tasks.GetByLabels(ctx, names)
	if err != nil {
		return dto.ListTasksResponse{}, err
	}
	return dto.FromTasks(tasks, c.labels(ctx)), nil
}

func (c *TaskController) GetTask(ctx context.Context, req dto.GetRequest) (dto.TaskDTO, error) {
	task, err := c.services.Tasks.GetByID(ctx, req.ID)
	if err != nil {
		return dto.TaskDTO{}, err
	}
	return dto.FromTask(task, c.labels(ctx)), nil
}

func (c *TaskController) CreateTask(ctx context.Context, req dto.CreateTaskRequest) (dto.TaskDTO, error) {
	create := &service.CreateTaskRequest{
		ColumnID:    req.ColumnID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    models.Priority(req.Priority),
		Assignee:    req.Assignee,
		LabelIDs:    req.LabelIDs,
	}
	if req.DueDate != "" {
		due, err := dto.ParseDueDate(req.DueDate)
		if err != nil {
			return dto.TaskDTO{}, err
		}
		create.DueDate = due
	}
	task, err := c.services.Tasks.Create(ctx, create)
	if err != nil {
		return dto.TaskDTO{}, err
	}
	return dto.FromTask(task, c.labels(ctx)), nil
}

func (c *TaskController) UpdateTask(ctx context.Context, req dto.UpdateTaskRequest) (dto.TaskDTO, error) {
	update := &service.UpdateTaskRequest{
		ColumnID:    req.ColumnID,
		Title:       req.Title,
		Description: req.Description,
		Assignee:    req.Assignee,
		LabelIDs:    req.LabelIDs,
	}
	if req.Priority != nil {
		p := models.Priority(*req.Priority)
		update.Priority = &p
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			update.ClearDueDate = true
		} else {
			due, err := dto.ParseDueDate(*req.DueDate)
			if err != nil {
				return dto.TaskDTO{}, err
			}
			update.DueDate = due
		}
	}
	task, err := c.services.Tasks.Update(ctx, req.ID, update)
	if err != nil {
		return dto.TaskDTO{}, err
	}
	return dto.FromTask(task, c.labels(ctx)), nil
}

func (c *TaskController) DeleteTask(ctx context.Context, req dto.GetRequest) (dto.TaskDTO, error) {
	task, err := c.services.Tasks.Delete(ctx, req.ID)
	if err != nil {
		return dto.TaskDTO{}, err
	}
	return dto.FromTask(task, c.labels(ctx)), nil
}
