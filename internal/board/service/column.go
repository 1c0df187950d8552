package service

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	"github.com/apper-canvas/holodevboard/internal/events"
	"github.com/apper-canvas/holodevboard/internal/notify"
)

// ColumnService manages columns. Within a board the column positions are
// always exactly 1..N.
type ColumnService struct {
	base
}

// GetAll returns the columns of a board ordered by position. A zero boardID
// lists the columns of every board.
func (s *ColumnService) GetAll(ctx context.Context, boardID int64) ([]*models.Column, error) {
	cols, err := s.repo.ListColumns(ctx, boardID)
	if err != nil {
		return []*models.Column{}, s.readFailed(ctx, "load columns", err)
	}
	models.SortColumns(cols)
	return cols, nil
}

// GetByBoard is GetAll for one board.
func (s *ColumnService) GetByBoard(ctx context.Context, boardID int64) ([]*models.Column, error) {
	return s.GetAll(ctx, boardID)
}

// GetByID returns one column.
func (s *ColumnService) GetByID(ctx context.Context, id int64) (*models.Column, error) {
	col, err := s.repo.GetColumn(ctx, id)
	if err != nil {
		return nil, s.readFailed(ctx, "load column", err)
	}
	return col, nil
}

// Create inserts a column at req.Position (clamped to 1..N+1, default N+1)
// and shifts the columns after it.
func (s *ColumnService) Create(ctx context.Context, req *CreateColumnRequest) (*models.Column, error) {
	ctx = notify.WithBoard(ctx, req.BoardID)
	title, verr := required("title", req.Title)
	if verr != nil {
		return nil, s.invalid(ctx, verr)
	}
	if _, err := s.repo.GetBoard(ctx, req.BoardID); err != nil {
		return nil, s.writeFailed(ctx, "create column", err)
	}
	siblings, err := s.repo.ListColumns(ctx, req.BoardID)
	if err != nil {
		return nil, s.writeFailed(ctx, "create column", err)
	}
	models.SortColumns(siblings)

	position := len(siblings) + 1
	if req.Position != nil {
		position = min(max(*req.Position, 1), len(siblings)+1)
	}

	// Shift from the end so positions stay unique while moving.
	for i := len(siblings) - 1; i >= position-1; i-- {
		c := siblings[i]
		c.Position = i + 2
		if err := s.repo.UpdateColumn(ctx, c); err != nil {
			return nil, s.writeFailed(ctx, "create column", err)
		}
	}

	col := &models.Column{BoardID: req.BoardID, Title: title, Position: position}
	if err := s.repo.CreateColumn(ctx, col); err != nil {
		return nil, s.writeFailed(ctx, "create column", err)
	}

	s.publish(ctx, events.ColumnCreated, columnEventData(col))
	s.logger.Info("column created",
		zap.Int64("column_id", col.ID),
		zap.Int64("board_id", col.BoardID),
		zap.Int("position", col.Position))
	s.succeeded(ctx, "created")
	return col, nil
}

// Update merges the set fields of req. A new position moves the column and
// renumbers the board.
func (s *ColumnService) Update(ctx context.Context, id int64, req *UpdateColumnRequest) (*models.Column, error) {
	var title string
	if req.Title != nil {
		trimmed, verr := required("title", *req.Title)
		if verr != nil {
			return nil, s.invalid(ctx, verr)
		}
		title = trimmed
	}

	col, err := s.repo.GetColumn(ctx, id)
	if err != nil {
		return nil, s.writeFailed(ctx, "update column", err)
	}
	ctx = notify.WithBoard(ctx, col.BoardID)

	if req.Title != nil && title != col.Title {
		col.Title = title
		col.ID = id
		if err := s.repo.UpdateColumn(ctx, col); err != nil {
			return nil, s.writeFailed(ctx, "update column", err)
		}
	}

	if req.Position != nil && *req.Position != col.Position {
		siblings, err := s.repo.ListColumns(ctx, col.BoardID)
		if err != nil {
			return nil, s.writeFailed(ctx, "update column", err)
		}
		reordered, _ := models.ReorderColumns(siblings, id, *req.Position-1)
		if err := s.persistPositions(ctx, siblings, reordered); err != nil {
			return nil, s.writeFailed(ctx, "update column", err)
		}
		for _, c := range reordered {
			if c.ID == id {
				col.Position = c.Position
			}
		}
		s.publish(ctx, events.ColumnsReordered, reorderEventData(col.BoardID, reordered))
	}

	s.publish(ctx, events.ColumnUpdated, columnEventData(col))
	s.logger.Info("column updated", zap.Int64("column_id", id))
	s.succeeded(ctx, "updated")
	return col, nil
}

// persistPositions writes the columns of next whose position differs from
// before.
func (s *ColumnService) persistPositions(ctx context.Context, before, next []*models.Column) error {
	old := make(map[int64]int, len(before))
	for _, c := range before {
		old[c.ID] = c.Position
	}
	for _, c := range next {
		if old[c.ID] == c.Position {
			continue
		}
		if err := s.repo.UpdateColumn(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a column and its tasks, renumbers the remaining columns of
// the board, and returns the removed column.
func (s *ColumnService) Delete(ctx context.Context, id int64) (*models.Column, error) {
	col, err := s.repo.GetColumn(ctx, id)
	if err != nil {
		return nil, s.writeFailed(ctx, "delete column", err)
	}
	ctx = notify.WithBoard(ctx, col.BoardID)

	tasks, err := s.repo.ListTasksByColumn(ctx, id)
	if err != nil {
		return nil, s.writeFailed(ctx, "delete column", err)
	}
	for _, t := range tasks {
		if err := s.repo.DeleteTask(ctx, t.ID); err != nil {
			return nil, s.writeFailed(ctx, "delete column", err)
		}
	}
	if err := s.repo.DeleteColumn(ctx, id); err != nil {
		return nil, s.writeFailed(ctx, "delete column", err)
	}

	remaining, err := s.repo.ListColumns(ctx, col.BoardID)
	if err != nil {
		return nil, s.writeFailed(ctx, "delete column", err)
	}
	models.SortColumns(remaining)
	for i, c := range remaining {
		if c.Position == i+1 {
			continue
		}
		c.Position = i + 1
		if err := s.repo.UpdateColumn(ctx, c); err != nil {
			return nil, s.writeFailed(ctx, "delete column", err)
		}
	}

	s.publish(ctx, events.ColumnDeleted, columnEventData(col))
	s.logger.Info("column deleted",
		zap.Int64("column_id", id),
		zap.Int("tasks", len(tasks)))
	s.succeeded(ctx, "deleted")
	return col, nil
}

// UpdatePositions applies each position update on its own. Successful
// updates are kept when others fail; every failure is logged and notified and
// the combined error is returned alongside the updated columns.
func (s *ColumnService) UpdatePositions(ctx context.Context, updates []models.PositionUpdate) ([]*models.Column, error) {
	updated := make([]*models.Column, 0, len(updates))
	var errs error
	var boardID int64

	for _, u := range updates {
		col, err := s.repo.GetColumn(ctx, u.ID)
		if err == nil {
			boardID = col.BoardID
			col.Position = u.Position
			err = s.repo.UpdateColumn(ctx, col)
		}
		if err != nil {
			err = classify(fmt.Sprintf("update position of column %d", u.ID), err)
			s.logger.WithContext(ctx).Error("column position update failed",
				zap.Int64("column_id", u.ID),
				zap.Int("position", u.Position),
				zap.Error(err))
			s.notifyError(ctx, fmt.Sprintf("Failed to update position of column %d", u.ID))
			errs = multierr.Append(errs, err)
			continue
		}
		updated = append(updated, col)
	}

	if len(updated) > 0 {
		ctx = notify.WithBoard(ctx, boardID)
		s.publish(ctx, events.ColumnsReordered, reorderEventData(boardID, updated))
	}
	if errs == nil && !notify.IsQuiet(ctx) {
		notify.Success(ctx, s.notifier, "Column positions updated successfully")
	}
	return updated, errs
}

func columnEventData(c *models.Column) map[string]interface{} {
	return map[string]interface{}{
		"board_id":  c.BoardID,
		"column_id": c.ID,
		"title":     c.Title,
		"position":  c.Position,
	}
}

func reorderEventData(boardID int64, cols []*models.Column) map[string]interface{} {
	positions := make([]map[string]interface{}, 0, len(cols))
	for _, c := range cols {
		positions = append(positions, map[string]interface{}{"id": c.ID, "position": c.Position})
	}
	return map[string]interface{}{
		"board_id":  boardID,
		"positions": positions,
	}
}
