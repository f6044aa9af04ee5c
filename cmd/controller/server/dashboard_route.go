package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"station-monitor/cmd/controller/db"
	"station-monitor/cmd/controller/model"
)

type dashboardSummary struct {
	TotalStations  int64 `json:"total_stations"`
	ActiveStations int64 `json:"active_stations"`
	Online         int64 `json:"online"`
	Offline        int64 `json:"offline"`
	Maintenance    int64 `json:"maintenance"`
	PendingConfig  int64 `json:"pending_config"`
	PendingData    int64 `json:"pending_data"`
	Readings24h    int64 `json:"readings_24h"`
}

// statusCount joins against active stations so deactivated ones do not skew
// the dashboard.
const statusCount = "select count(*) from device_statuses ds " +
	"join stations s on s.station_id = ds.station_id " +
	"where s.active=1 and ds.status=?"

func (c *Controller) dashboardSummary(ctx *gin.Context) {
	conn := db.MysqlClient.DB
	var summary dashboardSummary

	counts := []error{
		conn.Model(&model.Station{}).Count(&summary.TotalStations).Error,
		conn.Model(&model.Station{}).Where("active=?", true).
			Count(&summary.ActiveStations).Error,
		conn.Raw(statusCount, model.StatusOnline).Scan(&summary.Online).Error,
		conn.Raw(statusCount, model.StatusOffline).Scan(&summary.Offline).Error,
		conn.Raw(statusCount, model.StatusMaintenance).Scan(&summary.Maintenance).Error,
		conn.Model(&model.DeviceConfig{}).Where("configuration_update=?", true).
			Count(&summary.PendingConfig).Error,
		conn.Model(&model.DeviceStatus{}).Where("request_update=?", true).
			Count(&summary.PendingData).Error,
		conn.Model(&model.SensorReading{}).
			Where("recorded_at> ?", time.Now().Add(-24*time.Hour)).
			Count(&summary.Readings24h).Error,
	}
	for _, err := range counts {
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, ginResponse{Status: -1, Msg: "query failed"})
			return
		}
	}

	ctx.JSON(http.StatusOK, ginResponse{Status: 0, Msg: "success", Data: summary})
}
