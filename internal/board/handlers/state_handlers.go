package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/board/controller"
	"github.com/apper-canvas/holodevboard/internal/board/dto"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
	ws "github.com/apper-canvas/holodevboard/pkg/websocket"
)

// StateHandlers expose the shared board sessions: snapshots, drag moves
// and filtering.
type StateHandlers struct {
	controller *controller.StateController
	logger     *logger.Logger
}

func NewStateHandlers(ctrl *controller.StateController, log *logger.Logger) *StateHandlers {
	return &StateHandlers{
		controller: ctrl,
		logger:     log.WithFields(zap.String("component", "board-state-handlers")),
	}
}

func (h *StateHandlers) registerHTTP(api *gin.RouterGroup) {
	api.GET("/boards/:id/state", h.httpBoardState)
	api.POST("/boards/:id/state/reload", h.httpReload)
	api.POST("/boards/:id/moves/task", h.httpMoveTask)
	api.POST("/boards/:id/moves/column", h.httpReorderColumn)
}

func (h *StateHandlers) registerWS(r *ws.Router) {
	r.Handle(ws.ActionBoardState, h.wsBoardState)
	r.Handle(ws.ActionTaskMove, h.wsMoveTask)
	r.Handle(ws.ActionColumnReorder, h.wsReorderColumn)
	r.Handle(ws.ActionTaskFilter, h.wsFilter)
}

func (h *StateHandlers) httpBoardState(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.controller.BoardState(c.Request.Context(), dto.BoardStateRequest{
		BoardID: boardID,
		Query:   queryFromRequest(c),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StateHandlers) httpReload(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.controller.Reload(c.Request.Context(), dto.BoardStateRequest{
		BoardID: boardID,
		Query:   queryFromRequest(c),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StateHandlers) httpMoveTask(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body dto.MoveTaskRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	body.BoardID = boardID
	resp, err := h.controller.MoveTask(c.Request.Context(), body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StateHandlers) httpReorderColumn(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body dto.ReorderColumnRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	body.BoardID = boardID
	resp, err := h.controller.ReorderColumn(c.Request.Context(), body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StateHandlers) wsBoardState(ctx context.Context, msg *ws.Message) (*ws.Message, error) {
	return wsHandle(ctx, msg, h.controller.BoardState)
}

func (h *StateHandlers) wsMoveTask(ctx context.Context, msg *ws.Message) (*ws.Message, error) {
	return wsHandle(ctx, msg, h.controller.MoveTask)
}

func (h *StateHandlers) wsReorderColumn(ctx context.Context, msg *ws.Message) (*ws.Message, error) {
	return wsHandle(ctx, msg, h.controller.ReorderColumn)
}

func (h *StateHandlers) wsFilter(ctx context.Context, msg *ws.Message) (*ws.Message, error) {
	return wsHandle(ctx, msg, h.controller.Filter)
}
