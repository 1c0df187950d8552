package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	"github.com/apper-canvas/holodevboard/internal/events"
	"github.com/apper-canvas/holodevboard/internal/notify"
)

// BoardService manages boards.
type BoardService struct {
	base
}

// GetAll returns every board in id order.
func (s *BoardService) GetAll(ctx context.Context) ([]*models.Board, error) {
	boards, err := s.repo.ListBoards(ctx)
	if err != nil {
		return []*models.Board{}, s.readFailed(ctx, "load boards", err)
	}
	return boards, nil
}

// GetByID returns one board.
func (s *BoardService) GetByID(ctx context.Context, id int64) (*models.Board, error) {
	board, err := s.repo.GetBoard(ctx, id)
	if err != nil {
		return nil, s.readFailed(ctx, "load board", err)
	}
	return board, nil
}

// Create validates req, applies defaults and stores a new board.
func (s *BoardService) Create(ctx context.Context, req *CreateBoardRequest) (*models.Board, error) {
	name, verr := required("name", req.Name)
	if verr != nil {
		return nil, s.invalid(ctx, verr)
	}
	color := req.Color
	if color == "" {
		color = models.DefaultBoardColor
	}
	if verr := validateBoardColor(color); verr != nil {
		return nil, s.invalid(ctx, verr)
	}

	board := &models.Board{Name: name, Description: req.Description, Color: color}
	if err := s.repo.CreateBoard(ctx, board); err != nil {
		return nil, s.writeFailed(ctx, "create board", err)
	}

	ctx = notify.WithBoard(ctx, board.ID)
	s.publish(ctx, events.BoardCreated, boardEventData(board))
	s.logger.Info("board created", zap.Int64("board_id", board.ID), zap.String("name", board.Name))
	s.succeeded(ctx, "created")
	return board, nil
}

// Update merges the set fields of req into the board.
func (s *BoardService) Update(ctx context.Context, id int64, req *UpdateBoardRequest) (*models.Board, error) {
	ctx = notify.WithBoard(ctx, id)
	var name string
	if req.Name != nil {
		trimmed, verr := required("name", *req.Name)
		if verr != nil {
			return nil, s.invalid(ctx, verr)
		}
		name = trimmed
	}
	if req.Color != nil {
		if verr := validateBoardColor(*req.Color); verr != nil {
			return nil, s.invalid(ctx, verr)
		}
	}

	board, err := s.repo.GetBoard(ctx, id)
	if err != nil {
		return nil, s.writeFailed(ctx, "update board", err)
	}
	if req.Name != nil {
		board.Name = name
	}
	if req.Description != nil {
		board.Description = *req.Description
	}
	if req.Color != nil {
		board.Color = *req.Color
	}
	board.ID = id
	board.UpdatedAt = s.now()

	if err := s.repo.UpdateBoard(ctx, board); err != nil {
		return nil, s.writeFailed(ctx, "update board", err)
	}

	s.publish(ctx, events.BoardUpdated, boardEventData(board))
	s.logger.Info("board updated", zap.Int64("board_id", id))
	s.succeeded(ctx, "updated")
	return board, nil
}

// Delete removes a board together with its tasks and columns and returns the
// removed board.
func (s *BoardService) Delete(ctx context.Context, id int64) (*models.Board, error) {
	ctx = notify.WithBoard(ctx, id)
	board, err := s.repo.GetBoard(ctx, id)
	if err != nil {
		return nil, s.writeFailed(ctx, "delete board", err)
	}

	tasks, err := s.repo.ListTasks(ctx, id)
	if err != nil {
		return nil, s.writeFailed(ctx, "delete board", err)
	}
	for _, t := range tasks {
		if err := s.repo.DeleteTask(ctx, t.ID); err != nil {
			return nil, s.writeFailed(ctx, "delete board", err)
		}
	}
	cols, err := s.repo.ListColumns(ctx, id)
	if err != nil {
		return nil, s.writeFailed(ctx, "delete board", err)
	}
	for _, c := range cols {
		if err := s.repo.DeleteColumn(ctx, c.ID); err != nil {
			return nil, s.writeFailed(ctx, "delete board", err)
		}
	}
	if err := s.repo.DeleteBoard(ctx, id); err != nil {
		return nil, s.writeFailed(ctx, "delete board", err)
	}

	s.publish(ctx, events.BoardDeleted, boardEventData(board))
	s.logger.Info("board deleted",
		zap.Int64("board_id", id),
		zap.Int("tasks", len(tasks)),
		zap.Int("columns", len(cols)))
	s.succeeded(ctx, "deleted")
	return board, nil
}

func boardEventData(b *models.Board) map[string]interface{} {
	return map[string]interface{}{
		"board_id":    b.ID,
		"name":        b.Name,
		"description": b.Description,
		"color":       b.Color,
	}
}
