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

type BoardHandlers struct {
	controller *controller.BoardController
	logger     *logger.Logger
}

func NewBoardHandlers(ctrl *controller.BoardController, log *logger.Logger) *BoardHandlers {
	return &BoardHandlers{
		controller: ctrl,
		logger:     log.WithFields(zap.String("component", "board-handlers")),
	}
}

func (h *BoardHandlers) registerHTTP(api *gin.RouterGroup) {
	api.GET("/boards", h.httpListBoards)
	api.POST("/boards", h.httpCreateBoard)
	api.GET("/boards/:id", h.httpGetBoard)
	api.PATCH("/boards/:id", h.httpUpdateBoard)
	api.DELETE("/boards/:id", h.httpDeleteBoard)

	api.GET("/boards/:id/columns", h.httpListColumns)
	api.POST("/boards/:id/columns", h.httpCreateColumn)
	api.PUT("/boards/:id/columns/positions", h.httpUpdatePositions)
	api.GET("/columns/:id", h.httpGetColumn)
	api.PATCH("/columns/:id", h.httpUpdateColumn)
	api.DELETE("/columns/:id", h.httpDeleteColumn)
}

func (h *BoardHandlers) registerWS(r *ws.Router) {
	r.Handle(ws.ActionBoardList, h.wsListBoards)
}

func (h *BoardHandlers) httpListBoards(c *gin.Context) {
	resp, err := h.controller.ListBoards(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BoardHandlers) httpGetBoard(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.controller.GetBoard(c.Request.Context(), dto.GetRequest{ID: id})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BoardHandlers) httpCreateBoard(c *gin.Context) {
	var body dto.CreateBoardRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	resp, err := h.controller.CreateBoard(c.Request.Context(), body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BoardHandlers) httpUpdateBoard(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body dto.UpdateBoardRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	body.ID = id
	resp, err := h.controller.UpdateBoard(c.Request.Context(), body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BoardHandlers) httpDeleteBoard(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.controller.DeleteBoard(c.Request.Context(), dto.GetRequest{ID: id})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BoardHandlers) httpListColumns(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.controller.ListColumns(c.Request.Context(), dto.GetRequest{ID: id})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BoardHandlers) httpCreateColumn(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body dto.CreateColumnRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	body.BoardID = boardID
	resp, err := h.controller.CreateColumn(c.Request.Context(), body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BoardHandlers) httpUpdatePositions(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body dto.UpdatePositionsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	body.BoardID = boardID
	resp, err := h.controller.UpdatePositions(c.Request.Context(), body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	status := http.StatusOK
	if len(resp.Errors) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, resp)
}

func (h *BoardHandlers) httpGetColumn(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.controller.GetColumn(c.Request.Context(), dto.GetRequest{ID: id})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BoardHandlers) httpUpdateColumn(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body dto.UpdateColumnRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	body.ID = id
	resp, err := h.controller.UpdateColumn(c.Request.Context(), body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BoardHandlers) httpDeleteColumn(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.controller.DeleteColumn(c.Request.Context(), dto.GetRequest{ID: id})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BoardHandlers) wsListBoards(ctx context.Context, msg *ws.Message) (*ws.Message, error) {
	return wsHandle(ctx, msg, func(ctx context.Context, _ struct{}) (dto.ListBoardsResponse, error) {
		return h.controller.ListBoards(ctx)
	})
}
