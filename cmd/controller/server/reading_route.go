package server

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"station-monitor/cmd/controller/db"
	"station-monitor/cmd/controller/model"
	"station-monitor/cmd/controller/registry"
	"station-monitor/pkg/influxdb"
)

const timeFormat = "2006-01-02 15:04:05"

const (
	defaultReadingLimit = 200
	maxReadingLimit     = 5000
)

// readingFilters builds the where clause shared by list and export.
func readingFilters(ctx *gin.Context) (string, []interface{}, error) {
	var query []string
	var values []interface{}

	if stationID := ctx.Query("stationId"); stationID != "" {
		query = append(query, "station_id=?")
		values = append(values, stationID)
	}
	if web := ctx.Query("webTriggered"); web != "" {
		v, err := strconv.ParseBool(web)
		if err != nil {
			return "", nil, fmt.Errorf("webTriggered must be a boolean")
		}
		query = append(query, "web_triggered=?")
		values = append(values, v)
	}
	if st, err := time.ParseInLocation(timeFormat, ctx.Query("start"), time.Local); err == nil {
		query = append(query, "recorded_at> ?")
		values = append(values, st)
	}
	if et, err := time.ParseInLocation(timeFormat, ctx.Query("end"), time.Local); err == nil {
		query = append(query, "recorded_at< ?")
		values = append(values, et)
	}
	return strings.Join(query, " and "), values, nil
}

func readingLimit(ctx *gin.Context) int {
	limit := defaultReadingLimit
	if l, err := strconv.Atoi(ctx.Query("limit")); err == nil && l > 0 {
		limit = l
	}
	if limit > maxReadingLimit {
		limit = maxReadingLimit
	}
	return limit
}

func (c *Controller) listReadings(ctx *gin.Context) {
	query, values, err := readingFilters(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ginResponse{Status: -1, Msg: err.Error()})
		return
	}
	res := make([]model.SensorReading, 0)
	if err := db.MysqlClient.DB.Where(query, values...).Order("recorded_at DESC").
		Limit(readingLimit(ctx)).Find(&res).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, ginResponse{Status: -1, Msg: "query failed"})
		return
	}
	ctx.JSON(http.StatusOK, ginResponse{Status: 0, Msg: "success", Data: res})
}

// exportReadings streams the filtered readings as csv.
func (c *Controller) exportReadings(ctx *gin.Context) {
	query, values, err := readingFilters(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ginResponse{Status: -1, Msg: err.Error()})
		return
	}
	var res []model.SensorReading
	if err := db.MysqlClient.DB.Where(query, values...).Order("recorded_at").
		Limit(maxReadingLimit).Find(&res).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, ginResponse{Status: -1, Msg: "query failed"})
		return
	}

	ctx.Header("Content-Type", "text/csv")
	ctx.Header("Content-Disposition", "attachment; filename=readings.csv")
	w := csv.NewWriter(ctx.Writer)
	_ = w.Write([]string{"station_id", "recorded_at", "temperature", "humidity",
		"rssi", "battery_voltage", "web_triggered"})
	for _, r := range res {
		_ = w.Write([]string{
			r.StationID,
			r.RecordedAt.Format(timeFormat),
			strconv.FormatFloat(r.Temperature, 'f', 2, 64),
			strconv.FormatFloat(r.Humidity, 'f', 2, 64),
			strconv.FormatFloat(r.Rssi, 'f', 1, 64),
			strconv.FormatFloat(r.BatteryVoltage, 'f', 2, 64),
			strconv.FormatBool(r.WebTriggered),
		})
	}
	w.Flush()
	// headers are already out, a mid stream failure can only be logged
	if err := w.Error(); err != nil {
		logrus.Errorf("readings export failed mid stream: %s", err.Error())
	}
}

type seriesRequest struct {
	StationID string             `json:"station_id"`
	Fields    []string           `json:"fields"`
	Range     influxdb.Range     `json:"range"`
	Aggregate influxdb.Aggregate `json:"aggregate"`
}

// querySeries serves aggregated time series from the influxdb mirror for the
// dashboard charts.
func (c *Controller) querySeries(ctx *gin.Context) {
	var req seriesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ginResponse{Status: -1, Msg: err.Error()})
		return
	}
	query := influxdb.SeriesQuery{
		Bucket:      db.InfluxdbClient.Bucket,
		Measurement: registry.Measurement,
		StationID:   req.StationID,
		Fields:      req.Fields,
		Range:       req.Range,
		Aggregate:   req.Aggregate,
	}
	if err := query.Validate(); err != nil {
		ctx.JSON(http.StatusBadRequest, ginResponse{Status: -1, Msg: err.Error()})
		return
	}
	series, err := db.InfluxdbClient.QuerySeries(query.TransToFlux(), ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ginResponse{Status: -1, Msg: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, ginResponse{Status: 0, Msg: "success", Data: series})
}
