package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
	ws "github.com/apper-canvas/holodevboard/pkg/websocket"
)

// respondError writes {"error", "code"} with the status carried by err.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	status := apperrors.GetHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.WithContext(c.Request.Context()).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(status, gin.H{
		"error": apperrors.MessageOf(err),
		"code":  apperrors.CodeOf(err),
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "code": apperrors.ErrCodeBadRequest})
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// wsError converts err into an error reply for msg.
func wsError(msg *ws.Message, err error) (*ws.Message, error) {
	code := ws.ErrorCodeInternalError
	switch {
	case apperrors.IsNotFound(err):
		code = ws.ErrorCodeNotFound
	case apperrors.IsValidation(err):
		code = ws.ErrorCodeValidation
	case apperrors.IsBadRequest(err):
		code = ws.ErrorCodeBadRequest
	case apperrors.IsConflict(err):
		code = ws.ErrorCodeConflict
	}
	return msg.Fail(code, apperrors.MessageOf(err))
}

// wsHandle parses the payload into a Req and replies with fn's result.
func wsHandle[Req any, Resp any](
	ctx context.Context,
	msg *ws.Message,
	fn func(ctx context.Context, req Req) (Resp, error),
) (*ws.Message, error) {
	var req Req
	if err := msg.Decode(&req); err != nil {
		return msg.Fail(ws.ErrorCodeBadRequest, "Invalid payload: "+err.Error())
	}
	resp, err := fn(ctx, req)
	if err != nil {
		return wsError(msg, err)
	}
	return msg.Reply(resp)
}
