package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/board/controller"
	"github.com/apper-canvas/holodevboard/internal/board/dto"
	"github.com/apper-canvas/holodevboard/internal/board/filter"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
)

type TaskHandlers struct {
	controller *controller.TaskController
	logger     *logger.Logger
}

func NewTaskHandlers(ctrl *controller.TaskController, log *logger.Logger) *TaskHandlers {
	return &TaskHandlers{
		controller: ctrl,
		logger:     log.WithFields(zap.String("component", "task-handlers")),
	}
}

func (h *TaskHandlers) registerHTTP(api *gin.RouterGroup) {
	api.GET("/boards/:id/tasks", h.httpListTasks)
	api.GET("/columns/:id/tasks", h.httpListByColumn)
	api.GET("/tasks/by-labels", h.httpListByLabels)
	api.POST("/tasks", h.httpCreateTask)
	api.GET("/tasks/:id", h.httpGetTask)
	api.PATCH("/tasks/:id", h.httpUpdateTask)
	api.DELETE("/tasks/:id", h.httpDeleteTask)
}

// queryFromRequest reads ?q= and ?labels=a,b.
func queryFromRequest(c *gin.Context) filter.Query {
	return filter.Query{
		Text:   c.Query("q"),
		Labels: filter.ParseLabels(c.Query("labels")),
	}
}

func (h *TaskHandlers) httpListTasks(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.controller.ListTasks(c.Request.Context(), dto.ListTasksRequest{
		BoardID: boardID,
		Query:   queryFromRequest(c),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandlers) httpListByColumn(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.controller.ListByColumn(c.Request.Context(), dto.GetRequest{ID: id})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandlers) httpListByLabels(c *gin.Context) {
	resp, err := h.controller.ListByLabels(c.Request.Context(), filter.ParseLabels(c.Query("names")))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandlers) httpGetTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.controller.GetTask(c.Request.Context(), dto.GetRequest{ID: id})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandlers) httpCreateTask(c *gin.Context) {
	var body dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	resp, err := h.controller.CreateTask(c.Request.Context(), body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *TaskHandlers) httpUpdateTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	body.ID = id
	resp, err := h.controller.UpdateTask(c.Request.Context(), body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandlers) httpDeleteTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.controller.DeleteTask(c.Request.Context(), dto.GetRequest{ID: id})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
