package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"station-monitor/cmd/controller/db"
	"station-monitor/cmd/controller/model"
	"station-monitor/cmd/controller/protocol"
	"station-monitor/cmd/controller/registry"
)

type stationRow struct {
	StationID           string     `json:"station_id"`
	Name                string     `json:"name"`
	StateName           string     `json:"state"`
	DistrictName        string     `json:"district"`
	Address             string     `json:"address"`
	Latitude            *float64   `json:"latitude"`
	Longitude           *float64   `json:"longitude"`
	Active              bool       `json:"active"`
	Status              string     `json:"status"`
	LastSeen            *time.Time `json:"last_seen"`
	RequestUpdate       bool       `json:"request_update"`
	ConfigurationUpdate bool       `json:"configuration_update"`
	MacAddress          string     `json:"mac_address"`
	DataInterval        int        `json:"data_interval"`
	DataCollectionTime  int        `json:"data_collection_time"`
}

const stationQuery = "select s.station_id, s.name, st.name as state_name, d.name as district_name, " +
	"s.address, s.latitude, s.longitude, s.active, " +
	"ds.status, ds.last_seen, ds.request_update, " +
	"dc.configuration_update, dc.mac_address, dc.data_interval, dc.data_collection_time " +
	"from stations s " +
	"left join states st on s.state_id = st.id " +
	"left join districts d on s.district_id = d.id " +
	"left join device_statuses ds on s.station_id = ds.station_id " +
	"left join device_configs dc on s.station_id = dc.station_id"

func (c *Controller) listStations(ctx *gin.Context) {
	query := stationQuery
	var values []interface{}
	if ctx.Query("active") != "" {
		query += " where s.active=?"
		values = append(values, ctx.Query("active") == "true")
	}
	query += " order by s.station_id"

	rows := make([]stationRow, 0)
	if err := db.MysqlClient.DB.Raw(query, values...).Find(&rows).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, ginResponse{Status: -1, Msg: "query failed"})
		return
	}
	ctx.JSON(http.StatusOK, ginResponse{Status: 0, Msg: "success", Data: rows})
}

func (c *Controller) getStation(ctx *gin.Context) {
	stationID := ctx.Param("id")

	var row stationRow
	err := db.MysqlClient.DB.Raw(stationQuery+" where s.station_id=?", stationID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, ginResponse{Status: -1, Msg: "station not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, ginResponse{Status: -1, Msg: "query failed"})
		}
		return
	}

	var latest model.SensorReading
	var latestPtr *model.SensorReading
	err = db.MysqlClient.DB.Where("station_id=?", stationID).
		Order("recorded_at DESC").First(&latest).Error
	if err == nil {
		latestPtr = &latest
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusInternalServerError, ginResponse{Status: -1, Msg: "query failed"})
		return
	}

	ctx.JSON(http.StatusOK, ginResponse{Status: 0, Msg: "success", Data: gin.H{
		"station":        row,
		"latest_reading": latestPtr,
	}})
}

func (c *Controller) createStation(ctx *gin.Context) {
	var in registry.CreateStationInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		ctx.JSON(http.StatusBadRequest, ginResponse{Status: -1, Msg: err.Error()})
		return
	}
	station, err := c.store.CreateStation(in)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrDuplicateMac),
			errors.Is(err, registry.ErrInvalidMac),
			errors.Is(err, registry.ErrDistrictNotFound):
			ctx.JSON(http.StatusBadRequest, ginResponse{Status: -1, Msg: err.Error()})
		default:
			ctx.JSON(http.StatusInternalServerError, ginResponse{Status: -1, Msg: err.Error()})
		}
		return
	}
	ctx.JSON(http.StatusOK, ginResponse{Status: 0, Msg: "success", Data: station})
}

func (c *Controller) updateStation(ctx *gin.Context) {
	var in registry.UpdateStationInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		ctx.JSON(http.StatusBadRequest, ginResponse{Status: -1, Msg: err.Error()})
		return
	}
	if err := c.store.UpdateStation(ctx.Param("id"), in); err != nil {
		storeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, ginResponse{Status: 0, Msg: "success"})
}

func (c *Controller) deactivateStation(ctx *gin.Context) {
	if err := c.store.SetActive(ctx.Param("id"), false); err != nil {
		storeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, ginResponse{Status: 0, Msg: "success"})
}

func (c *Controller) activateStation(ctx *gin.Context) {
	if err := c.store.SetActive(ctx.Param("id"), true); err != nil {
		storeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, ginResponse{Status: 0, Msg: "success"})
}

type deviceConfigInput struct {
	DataInterval       int `json:"data_interval"`
	DataCollectionTime int `json:"data_collection_time"`
}

func (c *Controller) updateDeviceConfig(ctx *gin.Context) {
	var in deviceConfigInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		ctx.JSON(http.StatusBadRequest, ginResponse{Status: -1, Msg: err.Error()})
		return
	}
	if err := c.store.UpdateDeviceConfig(ctx.Param("id"), in.DataInterval, in.DataCollectionTime); err != nil {
		storeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, ginResponse{Status: 0, Msg: "success"})
}

func (c *Controller) rotateToken(ctx *gin.Context) {
	fresh, err := c.store.RotateToken(ctx.Param("id"))
	if err != nil {
		storeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, ginResponse{Status: 0, Msg: "success", Data: gin.H{"auth_token": fresh}})
}

func (c *Controller) requestData(ctx *gin.Context) {
	if err := c.store.RequestDataUpdate(ctx.Param("id")); err != nil {
		storeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, ginResponse{Status: 0, Msg: "success"})
}

func (c *Controller) requestConfig(ctx *gin.Context) {
	if err := c.store.RequestConfigUpdate(ctx.Param("id")); err != nil {
		storeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, ginResponse{Status: 0, Msg: "success"})
}

func (c *Controller) listStates(ctx *gin.Context) {
	states := make([]model.State, 0)
	if err := db.MysqlClient.DB.Order("name").Find(&states).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, ginResponse{Status: -1, Msg: "query failed"})
		return
	}
	ctx.JSON(http.StatusOK, ginResponse{Status: 0, Msg: "success", Data: states})
}

func (c *Controller) listDistricts(ctx *gin.Context) {
	stateID := ctx.Query("state_id")
	if stateID == "" {
		ctx.JSON(http.StatusBadRequest, ginResponse{Status: -1, Msg: "must provide state_id"})
		return
	}
	districts := make([]model.District, 0)
	if err := db.MysqlClient.DB.Where("state_id=?", stateID).Order("name").
		Find(&districts).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, ginResponse{Status: -1, Msg: "query failed"})
		return
	}
	ctx.JSON(http.StatusOK, ginResponse{Status: 0, Msg: "success", Data: districts})
}

// storeError maps registry errors for the operator routes.
func storeError(ctx *gin.Context, err error) {
	if errors.Is(err, protocol.ErrNotFound) {
		ctx.JSON(http.StatusNotFound, ginResponse{Status: -1, Msg: "station not found"})
		return
	}
	ctx.JSON(http.StatusInternalServerError, ginResponse{Status: -1, Msg: err.Error()})
}
