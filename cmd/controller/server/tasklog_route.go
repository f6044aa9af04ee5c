package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"station-monitor/cmd/controller/db"
	"station-monitor/cmd/controller/model"
)

const (
	defaultLogLimit = 200
	maxLogLimit     = 2000
)

func (c *Controller) listTaskLogs(ctx *gin.Context) {
	var query []string
	var values []interface{}

	if stationID := ctx.Query("stationId"); stationID != "" {
		query = append(query, "station_id=?")
		values = append(values, stationID)
	}
	if taskType := ctx.Query("taskType"); taskType != "" {
		if taskType != model.TaskHeartbeat && taskType != model.TaskConfigUpdate &&
			taskType != model.TaskDataUpload {
			ctx.JSON(http.StatusBadRequest, ginResponse{Status: -1, Msg: "invalid taskType"})
			return
		}
		query = append(query, "task_type=?")
		values = append(values, taskType)
	}
	if direction := ctx.Query("direction"); direction != "" {
		if direction != model.DirectionRequest && direction != model.DirectionResponse {
			ctx.JSON(http.StatusBadRequest, ginResponse{Status: -1, Msg: "invalid direction"})
			return
		}
		query = append(query, "direction=?")
		values = append(values, direction)
	}
	if st, err := time.ParseInLocation(timeFormat, ctx.Query("start"), time.Local); err == nil {
		query = append(query, "received_at> ?")
		values = append(values, st)
	}
	if et, err := time.ParseInLocation(timeFormat, ctx.Query("end"), time.Local); err == nil {
		query = append(query, "received_at< ?")
		values = append(values, et)
	}

	limit := defaultLogLimit
	if l, err := strconv.Atoi(ctx.Query("limit")); err == nil && l > 0 {
		limit = l
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}

	res := make([]model.TaskLog, 0)
	if err := db.MysqlClient.DB.Where(strings.Join(query, " and "), values...).
		Order("received_at DESC").Limit(limit).Find(&res).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, ginResponse{Status: -1, Msg: "query failed"})
		return
	}
	ctx.JSON(http.StatusOK, ginResponse{Status: 0, Msg: "success", Data: res})
}
