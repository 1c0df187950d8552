package controller

import (
	"context"

	"github.com/apper-canvas/holodevboard/internal/board/dto"
	"github.com/apper-canvas/holodevboard/internal/board/filter"
	"github.com/apper-canvas/holodevboard/internal/board/models"
	"github.com/apper-canvas/holodevboard/internal/board/service"
	"github.com/apper-canvas/holodevboard/internal/board/session"
	"github.com/apper-canvas/holodevboard/internal/board/state"
	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
)

// StateController serves the shared board sessions and drag gestures.
type StateController struct {
	services *service.Services
	sessions *session.Manager
}

func NewStateController(svc *service.Services, sessions *session.Manager) *StateController {
	return &StateController{services: svc, sessions: sessions}
}

// BoardState returns the session snapshot with the visible tasks for the
// query.
func (c *StateController) BoardState(ctx context.Context, req dto.BoardStateRequest) (dto.BoardStateDTO, error) {
	s, err := c.sessions.Get(ctx, req.BoardID)
	if err != nil {
		return dto.BoardStateDTO{}, err
	}
	return c.render(ctx, s.Board.Snapshot(), req.Query), nil
}

// Reload refreshes the session from the data source.
func (c *StateController) Reload(ctx context.Context, req dto.BoardStateRequest) (dto.BoardStateDTO, error) {
	s, err := c.sessions.Get(ctx, req.BoardID)
	if err != nil {
		return dto.BoardStateDTO{}, err
	}
	if err := s.Board.Reload(ctx); err != nil {
		return dto.BoardStateDTO{}, err
	}
	return c.render(ctx, s.Board.Snapshot(), req.Query), nil
}

func (c *StateController) MoveTask(ctx context.Context, req dto.MoveTaskRequest) (dto.TaskDTO, error) {
	s, err := c.sessions.Get(ctx, req.BoardID)
	if err != nil {
		return dto.TaskDTO{}, err
	}
	task, err := s.Controller().MoveTask(ctx, req.TaskID, req.TargetColumnID)
	if err != nil {
		return dto.TaskDTO{}, err
	}
	if task == nil {
		return dto.TaskDTO{}, apperrors.NotFound("task", req.TaskID)
	}
	return dto.FromTask(task, c.labels(ctx)), nil
}

func (c *StateController) ReorderColumn(ctx context.Context, req dto.ReorderColumnRequest) (dto.ListColumnsResponse, error) {
	s, err := c.sessions.Get(ctx, req.BoardID)
	if err != nil {
		return dto.ListColumnsResponse{}, err
	}
	cols, err := s.Controller().ReorderColumns(ctx, req.ColumnID, req.TargetColumnID)
	if err != nil {
		return dto.ListColumnsResponse{}, err
	}
	return dto.FromColumns(cols), nil
}

// Filter applies a query to the session's tasks.
func (c *StateController) Filter(ctx context.Context, req dto.BoardStateRequest) (dto.ListTasksResponse, error) {
	s, err := c.sessions.Get(ctx, req.BoardID)
	if err != nil {
		return dto.ListTasksResponse{}, err
	}
	labels := c.labels(ctx)
	return dto.FromTasks(filter.Apply(s.Board.Tasks(), labels, req.Query), labels), nil
}

func (c *StateController) labels(ctx context.Context) []*models.Label {
	labels, err := c.services.Labels.GetAll(ctx)
	if err != nil {
		return nil
	}
	return labels
}

func (c *StateController) render(ctx context.Context, snap state.Snapshot, q filter.Query) dto.BoardStateDTO {
	labels := c.labels(ctx)
	out := dto.BoardStateDTO{
		BoardID:      snap.BoardID,
		Status:       string(snap.Status),
		Columns:      dto.FromColumns(snap.Columns).Columns,
		Tasks:        dto.FromTasks(snap.Tasks, labels).Tasks,
		VisibleTasks: []int64{},
		Query:        q,
		TaskCounts:   make(map[int64]int, len(snap.Columns)),
		Labels:       dto.FromLabels(labels).Labels,
	}
	if snap.Err != nil {
		out.Error = snap.Err.Error()
	}
	for _, col := range snap.Columns {
		out.TaskCounts[col.ID] = 0
	}
	for _, t := range snap.Tasks {
		out.TaskCounts[t.ColumnID]++
	}
	for _, t := range filter.Apply(snap.Tasks, labels, q) {
		out.VisibleTasks = append(out.VisibleTasks, t.ID)
	}
	return out
}
