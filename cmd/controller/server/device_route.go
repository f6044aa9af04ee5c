package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"station-monitor/cmd/controller/protocol"
)

// device routes, used as the task log topic on the HTTP transport
const (
	heartbeatRoute = "/api/iot/heartbeat"
	configRoute    = "/api/iot/config"
	dataRoute      = "/api/iot/data"
)

// deviceError maps the protocol error classes to distinct status codes so a
// device can tell a bad payload from an unknown station from a server fault.
func deviceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, protocol.ErrValidation):
		ctx.JSON(http.StatusUnprocessableEntity, ginResponse{Status: -1, Msg: err.Error()})
	case errors.Is(err, protocol.ErrNotFound):
		ctx.JSON(http.StatusNotFound, ginResponse{Status: -1, Msg: err.Error()})
	default:
		logrus.Errorf("device request failed: %s", err.Error())
		ctx.JSON(http.StatusInternalServerError, ginResponse{Status: -1, Msg: "server error"})
	}
}

func (c *Controller) deviceHeartbeat(ctx *gin.Context) {
	var req protocol.HeartbeatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ginResponse{Status: -1, Msg: err.Error()})
		return
	}
	resp, err := c.handler.Heartbeat(heartbeatRoute, req)
	if err != nil {
		deviceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

func (c *Controller) deviceConfigAck(ctx *gin.Context) {
	var req protocol.ConfigAckRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ginResponse{Status: -1, Msg: err.Error()})
		return
	}
	resp, err := c.handler.ConfigAck(configRoute, req)
	if err != nil {
		deviceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

func (c *Controller) deviceDataUpload(ctx *gin.Context) {
	var req protocol.DataUploadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ginResponse{Status: -1, Msg: err.Error()})
		return
	}
	resp, err := c.handler.DataUpload(dataRoute, req)
	if err != nil {
		deviceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
