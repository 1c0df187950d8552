package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/board/controller"
	"github.com/apper-canvas/holodevboard/internal/board/dto"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
)

type LabelHandlers struct {
	controller *controller.LabelController
	logger     *logger.Logger
}

func NewLabelHandlers(ctrl *controller.LabelController, log *logger.Logger) *LabelHandlers {
	return &LabelHandlers{
		controller: ctrl,
		logger:     log.WithFields(zap.String("component", "label-handlers")),
	}
}

func (h *LabelHandlers) registerHTTP(api *gin.RouterGroup) {
	api.GET("/labels", h.httpListLabels)
	api.POST("/labels", h.httpCreateLabel)
	api.GET("/labels/:id", h.httpGetLabel)
	api.PATCH("/labels/:id", h.httpUpdateLabel)
	api.DELETE("/labels/:id", h.httpDeleteLabel)
}

func (h *LabelHandlers) httpListLabels(c *gin.Context) {
	resp, err := h.controller.ListLabels(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LabelHandlers) httpGetLabel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.controller.GetLabel(c.Request.Context(), dto.GetRequest{ID: id})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LabelHandlers) httpCreateLabel(c *gin.Context) {
	var body dto.CreateLabelRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	resp, err := h.controller.CreateLabel(c.Request.Context(), body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *LabelHandlers) httpUpdateLabel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body dto.UpdateLabelRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	body.ID = id
	resp, err := h.controller.UpdateLabel(c.Request.Context(), body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LabelHandlers) httpDeleteLabel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.controller.DeleteLabel(c.Request.Context(), dto.GetRequest{ID: id})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
