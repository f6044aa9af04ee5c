package protocol

import "fmt"

// task names echoed back to the device, values fixed by the firmware
const (
	TaskNameHeartbeat = "heartbeat"
	TaskNameConfig    = "Configuration Update"
	TaskNameUpload    = "Upload Data"
)

const ackMessage = "data received"

const maxStationIDLen = 50

// metric domains, bounds inclusive
const (
	TemperatureMin = -50.0
	TemperatureMax = 100.0
	HumidityMin    = 0.0
	HumidityMax    = 100.0
	RssiMin        = -120.0
	RssiMax        = 0.0
	BatteryMin     = 0.0
	BatteryMax     = 5.0
)

type HeartbeatRequest struct {
	StationID string `json:"station_id"`
	Task      string `json:"task"`
	Message   string `json:"message"`
	Status    string `json:"status"`
}

func (r HeartbeatRequest) Validate() error {
	if err := checkStationID(r.StationID); err != nil {
		return err
	}
	if r.Task == "" || r.Message == "" || r.Status == "" {
		return fmt.Errorf("%w: task, message and status are required", ErrValidation)
	}
	return nil
}

type ConfigAckRequest struct {
	StationID           string `json:"station_id"`
	Task                string `json:"task"`
	Message             string `json:"message"`
	ConfigurationUpdate *bool  `json:"configuration_update"`
}

func (r ConfigAckRequest) Validate() error {
	if err := checkStationID(r.StationID); err != nil {
		return err
	}
	if r.Task == "" || r.Message == "" {
		return fmt.Errorf("%w: task and message are required", ErrValidation)
	}
	if r.ConfigurationUpdate == nil {
		return fmt.Errorf("%w: configuration_update is required", ErrValidation)
	}
	return nil
}

type DataUploadRequest struct {
	StationID      string   `json:"station_id"`
	Task           string   `json:"task"`
	Message        string   `json:"message"`
	Humidity       *float64 `json:"humidity"`
	Temperature    *float64 `json:"temperature"`
	Rssi           *float64 `json:"rssi"`
	BatteryVoltage *float64 `json:"battery_voltage"`
	UpdateRequest  *bool    `json:"update_request"`
}

func (r DataUploadRequest) Validate() error {
	if err := checkStationID(r.StationID); err != nil {
		return err
	}
	if r.Task == "" || r.Message == "" {
		return fmt.Errorf("%w: task and message are required", ErrValidation)
	}
	if r.UpdateRequest == nil {
		return fmt.Errorf("%w: update_request is required", ErrValidation)
	}
	if err := checkRange("humidity", r.Humidity, HumidityMin, HumidityMax); err != nil {
		return err
	}
	if err := checkRange("temperature", r.Temperature, TemperatureMin, TemperatureMax); err != nil {
		return err
	}
	if err := checkRange("rssi", r.Rssi, RssiMin, RssiMax); err != nil {
		return err
	}
	return checkRange("battery_voltage", r.BatteryVoltage, BatteryMin, BatteryMax)
}

func checkStationID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: station_id is required", ErrValidation)
	}
	if len(id) > maxStationIDLen {
		return fmt.Errorf("%w: station_id exceeds %d characters", ErrValidation, maxStationIDLen)
	}
	return nil
}

func checkRange(field string, v *float64, min, max float64) error {
	if v == nil {
		return fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	if *v < min || *v > max {
		return fmt.Errorf("%w: %s must be within [%g,%g]", ErrValidation, field, min, max)
	}
	return nil
}

type HeartbeatResponse struct {
	StationID           string `json:"station_id"`
	Task                string `json:"task"`
	Message             string `json:"message"`
	Success             bool   `json:"success"`
	RequestUpdate       bool   `json:"request_update"`
	ConfigurationUpdate bool   `json:"configuration_update"`
}

type ConfigAckResponse struct {
	StationID          string `json:"station_id"`
	Task               string `json:"task"`
	Message            string `json:"message"`
	Success            bool   `json:"success"`
	DataCollectionTime int    `json:"data_collection_time"`
	DataInterval       int    `json:"data_interval"`
}

type DataUploadResponse struct {
	StationID string `json:"station_id"`
	Task      string `json:"task"`
	Message   string `json:"message"`
	Success   bool   `json:"success"`
}
