package registry

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"station-monitor/cmd/controller/model"
	"station-monitor/cmd/controller/protocol"
	"station-monitor/pkg/mac"
	"station-monitor/pkg/token"
)

var (
	ErrDistrictNotFound = errors.New("district not found")
	ErrInvalidMac       = errors.New("mac address invalid")
	ErrDuplicateMac     = errors.New("mac address already registered")
)

// NextStationID derives the immutable station identifier from the district
// code and the number of stations already created there: PJY + 001 -> PJY001.
func NextStationID(districtCode string, existing int64) string {
	return fmt.Sprintf("%s%03d", districtCode, existing+1)
}

type CreateStationInput struct {
	Name               string   `json:"name"`
	StateID            uint     `json:"state_id"`
	DistrictID         uint     `json:"district_id"`
	Address            string   `json:"address"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	MacAddress         string   `json:"mac_address"`
	DataInterval       int      `json:"data_interval"`
	DataCollectionTime int      `json:"data_collection_time"`
}

func (in CreateStationInput) Validate() error {
	if in.Name == "" {
		return fmt.Errorf("name could not be empty")
	}
	if in.StateID == 0 || in.DistrictID == 0 {
		return fmt.Errorf("state_id and district_id are required")
	}
	if !mac.IsValid(in.MacAddress) {
		return ErrInvalidMac
	}
	if in.DataInterval <= 0 || in.DataCollectionTime <= 0 {
		return fmt.Errorf("data_interval and data_collection_time must be positive")
	}
	return nil
}

// CreateStation registers a station with its device config and live status
// in one transaction. The MAC uniqueness check runs before any insert.
func (s *Store) CreateStation(in CreateStationInput) (model.Station, error) {
	var station model.Station
	if err := in.Validate(); err != nil {
		return station, err
	}
	canonicalMac := mac.Canonical(in.MacAddress)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var district model.District
		if err := tx.Where("id=? and state_id=?", in.DistrictID, in.StateID).
			First(&district).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDistrictNotFound
			}
			return err
		}

		var existing int64
		if err := tx.Model(&model.DeviceConfig{}).Where("mac_address=?", canonicalMac).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicateMac
		}

		var count int64
		if err := tx.Model(&model.Station{}).Where("district_id=?", in.DistrictID).
			Count(&count).Error; err != nil {
			return err
		}

		station = model.Station{
			StationID:  NextStationID(district.Code, count),
			Name:       in.Name,
			StateID:    in.StateID,
			DistrictID: in.DistrictID,
			Address:    in.Address,
			Latitude:   in.Latitude,
			Longitude:  in.Longitude,
			Active:     true,
		}
		if err := tx.Create(&station).Error; err != nil {
			return err
		}

		config := model.DeviceConfig{
			StationID:          station.StationID,
			AuthToken:          token.NewDeviceToken(),
			MacAddress:         canonicalMac,
			DataInterval:       in.DataInterval,
			DataCollectionTime: in.DataCollectionTime,
		}
		if err := tx.Create(&config).Error; err != nil {
			return err
		}

		status := model.DeviceStatus{
			StationID: station.StationID,
			Status:    model.StatusOffline,
		}
		return tx.Create(&status).Error
	})
	return station, err
}

type UpdateStationInput struct {
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// UpdateStation changes identity fields only; station_id is immutable.
func (s *Store) UpdateStation(stationID string, in UpdateStationInput) error {
	if in.Name == "" {
		return fmt.Errorf("name could not be empty")
	}
	return s.withStation(stationID, func(tx *gorm.DB) error {
		return tx.Model(&model.Station{}).Where("station_id=?", stationID).
			Updates(map[string]interface{}{
				"name":      in.Name,
				"address":   in.Address,
				"latitude":  in.Latitude,
				"longitude": in.Longitude,
			}).Error
	})
}

// SetActive soft deletes (or restores) a station. Registry rows are kept.
func (s *Store) SetActive(stationID string, active bool) error {
	res := s.db.Model(&model.Station{}).Where("station_id=?", stationID).
		Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return protocol.ErrNotFound
	}
	return nil
}

// UpdateDeviceConfig stores new collection settings and raises the pending
// flag; the device clears it via config ack.
func (s *Store) UpdateDeviceConfig(stationID string, dataInterval, dataCollectionTime int) error {
	if dataInterval <= 0 || dataCollectionTime <= 0 {
		return fmt.Errorf("data_interval and data_collection_time must be positive")
	}
	now := time.Now()
	return s.withStation(stationID, func(tx *gorm.DB) error {
		return tx.Model(&model.DeviceConfig{}).Where("station_id=?", stationID).
			Updates(map[string]interface{}{
				"data_interval":        dataInterval,
				"data_collection_time": dataCollectionTime,
				"configuration_update": true,
				"config_requested_at":  now,
			}).Error
	})
}

// RotateToken replaces the device auth token with a fresh one. The old value
// is never reused.
func (s *Store) RotateToken(stationID string) (string, error) {
	fresh := token.NewDeviceToken()
	err := s.withStation(stationID, func(tx *gorm.DB) error {
		return tx.Model(&model.DeviceConfig{}).Where("station_id=?", stationID).
			Update("auth_token", fresh).Error
	})
	if err != nil {
		return "", err
	}
	return fresh, nil
}

// RequestDataUpdate flags the station for an out of cycle upload, picked up
// passively on the next heartbeat.
func (s *Store) RequestDataUpdate(stationID string) error {
	now := time.Now()
	return s.withStation(stationID, func(tx *gorm.DB) error {
		return tx.Model(&model.DeviceStatus{}).Where("station_id=?", stationID).
			Updates(map[string]interface{}{
				"request_update":    true,
				"data_requested_at": now,
			}).Error
	})
}

// RequestConfigUpdate flags the station to re-sync its configuration.
func (s *Store) RequestConfigUpdate(stationID string) error {
	now := time.Now()
	return s.withStation(stationID, func(tx *gorm.DB) error {
		return tx.Model(&model.DeviceConfig{}).Where("station_id=?", stationID).
			Updates(map[string]interface{}{
				"configuration_update": true,
				"config_requested_at":  now,
			}).Error
	})
}

// withStation runs fn in a transaction after resolving the active station.
func (s *Store) withStation(stationID string, fn func(tx *gorm.DB) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := findActive(tx, stationID); err != nil {
			return err
		}
		return fn(tx)
	})
}
