package controller

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/apper-canvas/holodevboard/internal/board/dto"
	"github.com/apper-canvas/holodevboard/internal/board/service"
	"github.com/apper-canvas/holodevboard/internal/board/session"
	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
)

type BoardController struct {
	services *service.Services
	sessions *session.Manager
}

func NewBoardController(svc *service.Services, sessions *session.Manager) *BoardController {
	return &BoardController{services: svc, sessions: sessions}
}

func (c *BoardController) ListBoards(ctx context.Context) (dto.ListBoardsResponse, error) {
	boards, err := c.services.Boards.GetAll(ctx)
	if err != nil {
		return dto.ListBoardsResponse{}, err
	}
	return dto.FromBoards(boards), nil
}

func (c *BoardController) GetBoard(ctx context.Context, req dto.GetRequest) (dto.BoardDTO, error) {
	board, err := c.services.Boards.GetByID(ctx, req.ID)
	if err != nil {
		return dto.BoardDTO{}, err
	}
	return dto.FromBoard(board), nil
}

func (c *BoardController) CreateBoard(ctx context.Context, req dto.CreateBoardRequest) (dto.BoardDTO, error) {
	board, err := c.services.Boards.Create(ctx, &service.CreateBoardRequest{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		return dto.BoardDTO{}, err
	}
	return dto.FromBoard(board), nil
}

func (c *BoardController) UpdateBoard(ctx context.Context, req dto.UpdateBoardRequest) (dto.BoardDTO, error) {
	board, err := c.services.Boards.Update(ctx, req.ID, &service.UpdateBoardRequest{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		return dto.BoardDTO{}, err
	}
	return dto.FromBoard(board), nil
}

func (c *BoardController) DeleteBoard(ctx context.Context, req dto.GetRequest) (dto.BoardDTO, error) {
	board, err := c.services.Boards.Delete(ctx, req.ID)
	if err != nil {
		return dto.BoardDTO{}, err
	}
	if c.sessions != nil {
		c.sessions.Evict(req.ID)
	}
	return dto.FromBoard(board), nil
}

func (c *BoardController) ListColumns(ctx context.Context, req dto.GetRequest) (dto.ListColumnsResponse, error) {
	if _, err := c.services.Boards.GetByID(ctx, req.ID); err != nil {
		return dto.ListColumnsResponse{}, err
	}
	cols, err := c.services.Columns.GetByBoard(ctx, req.ID)
	if err != nil {
		return dto.ListColumnsResponse{}, err
	}
	return dto.FromColumns(cols), nil
}

func (c *BoardController) GetColumn(ctx context.Context, req dto.GetRequest) (dto.ColumnDTO, error) {
	col, err := c.services.Columns.GetByID(ctx, req.ID)
	if err != nil {
		return dto.ColumnDTO{}, err
	}
	return dto.FromColumn(col), nil
}

func (c *BoardController) CreateColumn(ctx context.Context, req dto.CreateColumnRequest) (dto.ColumnDTO, error) {
	col, err := c.services.Columns.Create(ctx, &service.CreateColumnRequest{
		BoardID:  req.BoardID,
		Title:    req.Title,
		Position: req.Position,
	})
	if err != nil {
		return dto.ColumnDTO{}, err
	}
	return dto.FromColumn(col), nil
}

func (c *BoardController) UpdateColumn(ctx context.Context, req dto.UpdateColumnRequest) (dto.ColumnDTO, error) {
	col, err := c.services.Columns.Update(ctx, req.ID, &service.UpdateColumnRequest{
		Title:    req.Title,
		Position: req.Position,
	})
	if err != nil {
		return dto.ColumnDTO{}, err
	}
	return dto.FromColumn(col), nil
}

func (c *BoardController) DeleteColumn(ctx context.Context, req dto.GetRequest) (dto.ColumnDTO, error) {
	col, err := c.services.Columns.Delete(ctx, req.ID)
	if err != nil {
		return dto.ColumnDTO{}, err
	}
	return dto.FromColumn(col), nil
}

// UpdatePositions applies a batch. Every column must belong to the board and
// the batch must leave the board's positions at exactly 1..N; otherwise
// nothing is applied. Partial failures are reported in the response; the
// error is returned only when nothing was applied.
func (c *BoardController) UpdatePositions(ctx context.Context, req dto.UpdatePositionsRequest) (dto.UpdatePositionsResponse, error) {
	if err := c.checkPositions(ctx, req); err != nil {
		return dto.UpdatePositionsResponse{}, err
	}
	cols, err := c.services.Columns.UpdatePositions(ctx, req.Positions)
	resp := dto.UpdatePositionsResponse{Columns: dto.FromColumns(cols).Columns}
	if err == nil {
		return resp, nil
	}
	if len(cols) == 0 {
		return resp, err
	}
	for _, e := range multierr.Errors(err) {
		resp.Errors = append(resp.Errors, e.Error())
	}
	return resp, nil
}

func (c *BoardController) checkPositions(ctx context.Context, req dto.UpdatePositionsRequest) error {
	if _, err := c.services.Boards.GetByID(ctx, req.BoardID); err != nil {
		return err
	}
	cols, err := c.services.Columns.GetAll(ctx, req.BoardID)
	if err != nil {
		return err
	}
	final := make(map[int64]int, len(cols))
	for _, col := range cols {
		final[col.ID] = col.Position
	}
	seen := make(map[int64]bool, len(req.Positions))
	for _, u := range req.Positions {
		if _, ok := final[u.ID]; !ok {
			return apperrors.ValidationError("positions",
				fmt.Sprintf("column %d does not belong to board %d", u.ID, req.BoardID))
		}
		if seen[u.ID] {
			return apperrors.ValidationError("positions", fmt.Sprintf("column %d is listed twice", u.ID))
		}
		seen[u.ID] = true
		final[u.ID] = u.Position
	}
	taken := make([]bool, len(final)+1)
	for id, pos := range final {
		if pos < 1 || pos > len(final) || taken[pos] {
			return apperrors.ValidationError("positions",
				fmt.Sprintf("column %d would have position %d; positions must be exactly 1..%d", id, pos, len(final)))
		}
		taken[pos] = true
	}
	return nil
}
