package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apper-canvas/holodevboard/internal/board/controller"
	"github.com/apper-canvas/holodevboard/internal/board/service"
	"github.com/apper-canvas/holodevboard/internal/board/session"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
	ws "github.com/apper-canvas/holodevboard/pkg/websocket"
)

// RegisterRoutes mounts the REST API under /api/v1 and the board actions on
// the WebSocket router.
func RegisterRoutes(router *gin.Engine, wsRouter *ws.Router, svc *service.Services, sessions *session.Manager, log *logger.Logger) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "devboard"})
	})

	api := router.Group("/api/v1")

	boards := NewBoardHandlers(controller.NewBoardController(svc, sessions), log)
	boards.registerHTTP(api)

	tasks := NewTaskHandlers(controller.NewTaskController(svc), log)
	tasks.registerHTTP(api)

	labels := NewLabelHandlers(controller.NewLabelController(svc), log)
	labels.registerHTTP(api)

	states := NewStateHandlers(controller.NewStateController(svc, sessions), log)
	states.registerHTTP(api)

	if wsRouter != nil {
		boards.registerWS(wsRouter)
		states.registerWS(wsRouter)
	}
}
