// Package registry persists station state. It backs the device protocol
// handler and the operator routes with the same tables.
package registry

import (
	"errors"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"station-monitor/cmd/controller/model"
	"station-monitor/cmd/controller/protocol"
	"station-monitor/pkg/influxdb"
)

// Measurement is the influxdb measurement mirroring accepted readings.
const Measurement = "sensor_data"

type Store struct {
	db     *gorm.DB
	influx *influxdb.Connector // optional reading mirror, may be nil
}

func NewStore(db *gorm.DB, influx *influxdb.Connector) *Store {
	return &Store{db: db, influx: influx}
}

// findActive resolves the station identifier to an active station or
// protocol.ErrNotFound.
func findActive(tx *gorm.DB, stationID string) (model.Station, error) {
	var station model.Station
	err := tx.Where("station_id=? and active=?", stationID, true).First(&station).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return station, protocol.ErrNotFound
		}
		return station, err
	}
	return station, nil
}

// appendLogPair writes the request received / response sent audit rows.
func appendLogPair(tx *gorm.DB, stationID, topic, taskType string, now time.Time) error {
	processed := now
	logs := []model.TaskLog{
		{
			StationID:   stationID,
			Topic:       topic,
			TaskType:    taskType,
			Direction:   model.DirectionRequest,
			Status:      protocol.StatusOK,
			ReceivedAt:  now,
			ProcessedAt: &processed,
		},
		{
			StationID:   stationID,
			Topic:       topic,
			TaskType:    taskType,
			Direction:   model.DirectionResponse,
			Status:      protocol.StatusOK,
			ReceivedAt:  now,
			ProcessedAt: &processed,
		},
	}
	return tx.Create(&logs).Error
}

func (s *Store) MarkOnline(stationID, topic string, now time.Time) (protocol.Flags, error) {
	var flags protocol.Flags
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := findActive(tx, stationID); err != nil {
			return err
		}
		if err := tx.Model(&model.DeviceStatus{}).Where("station_id=?", stationID).
			Updates(map[string]interface{}{
				"status":    model.StatusOnline,
				"last_seen": now,
			}).Error; err != nil {
			return err
		}
		var status model.DeviceStatus
		if err := tx.Where("station_id=?", stationID).First(&status).Error; err != nil {
			return err
		}
		var config model.DeviceConfig
		if err := tx.Where("station_id=?", stationID).First(&config).Error; err != nil {
			return err
		}
		flags = protocol.Flags{
			RequestUpdate:       status.RequestUpdate,
			ConfigurationUpdate: config.ConfigurationUpdate,
		}
		return appendLogPair(tx, stationID, topic, model.TaskHeartbeat, now)
	})
	return flags, err
}

func (s *Store) AckConfig(stationID, topic string, now time.Time) (protocol.ConfigValues, error) {
	var values protocol.ConfigValues
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := findActive(tx, stationID); err != nil {
			return err
		}
		if err := tx.Model(&model.DeviceConfig{}).Where("station_id=?", stationID).
			Updates(map[string]interface{}{
				"configuration_update": false,
				"config_requested_at":  nil,
			}).Error; err != nil {
			return err
		}
		var config model.DeviceConfig
		if err := tx.Where("station_id=?", stationID).First(&config).Error; err != nil {
			return err
		}
		values = protocol.ConfigValues{
			DataCollectionTime: config.DataCollectionTime,
			DataInterval:       config.DataInterval,
		}
		return appendLogPair(tx, stationID, topic, model.TaskConfigUpdate, now)
	})
	return values, err
}

func (s *Store) StoreUpload(stationID, topic string, r protocol.Reading, now time.Time) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := findActive(tx, stationID); err != nil {
			return err
		}
		reading := model.SensorReading{
			StationID:      stationID,
			Temperature:    r.Temperature,
			Humidity:       r.Humidity,
			Rssi:           r.Rssi,
			BatteryVoltage: r.BatteryVoltage,
			WebTriggered:   r.WebTriggered,
			RecordedAt:     now,
		}
		if err := tx.Create(&reading).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.DeviceStatus{}).Where("station_id=?", stationID).
			Updates(map[string]interface{}{
				"status":            model.StatusOnline,
				"last_seen":         now,
				"request_update":    false,
				"data_requested_at": nil,
			}).Error; err != nil {
			return err
		}
		return appendLogPair(tx, stationID, topic, model.TaskDataUpload, now)
	})
	if err != nil {
		return err
	}
	s.mirrorReading(stationID, r, now)
	return nil
}

// mirrorReading copies the accepted sample into influxdb for the dashboard
// time series. The relational row is the source of truth, a mirror failure
// only logs.
func (s *Store) mirrorReading(stationID string, r protocol.Reading, now time.Time) {
	if s.influx == nil {
		return
	}
	point := influxdb2.NewPoint(
		Measurement,
		map[string]string{
			"station_id":    stationID,
			"web_triggered": strconv.FormatBool(r.WebTriggered),
		},
		map[string]interface{}{
			"temperature":     r.Temperature,
			"humidity":        r.Humidity,
			"rssi":            r.Rssi,
			"battery_voltage": r.BatteryVoltage,
		},
		now,
	)
	s.influx.WritePoint(point)
}

func (s *Store) LogFailure(stationID, topic, taskType, status string, now time.Time) {
	entry := model.TaskLog{
		StationID:  stationID,
		Topic:      topic,
		TaskType:   taskType,
		Direction:  model.DirectionRequest,
		Status:     status,
		ReceivedAt: now,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		logrus.Errorf("task log append failed for %s: %s", stationID, err.Error())
	}
}
