// Package protocol implements the device facing message handling shared by
// the MQTT listener and the HTTP fallback endpoints. One validated inbound
// message maps to one registry transition and one response payload; all state
// lives behind the Registry interface.
package protocol

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"station-monitor/cmd/controller/model"
)

// ErrNotFound : the station id does not reference an active station.
var ErrNotFound = errors.New("station not found")

// ErrValidation : the payload is missing a field or out of range.
var ErrValidation = errors.New("invalid payload")

// log statuses recorded in the task audit trail
const (
	StatusOK       = "success"
	StatusRejected = "rejected"
	StatusUnknown  = "unknown_station"
)

// Flags are the per station pending markers revealed to the device on
// heartbeat.
type Flags struct {
	RequestUpdate       bool
	ConfigurationUpdate bool
}

// ConfigValues are the active collection settings returned on config ack.
type ConfigValues struct {
	DataCollectionTime int
	DataInterval       int
}

// Reading is one accepted sensor sample.
type Reading struct {
	Temperature    float64
	Humidity       float64
	Rssi           float64
	BatteryVoltage float64
	WebTriggered   bool
}

// Registry is the persistence contract for the three protocol transitions.
// Each method applies its mutation together with the request/response task
// log pair in a single transaction, and returns ErrNotFound without mutating
// anything when the station is unknown or inactive.
type Registry interface {
	// MarkOnline refreshes live status for a heartbeat and reports the
	// current pending flags. The flags are read, never cleared, here.
	MarkOnline(stationID, topic string, now time.Time) (Flags, error)

	// AckConfig clears the configuration pending flag unconditionally and
	// returns the active collection settings.
	AckConfig(stationID, topic string, now time.Time) (ConfigValues, error)

	// StoreUpload appends the reading, refreshes live status and clears the
	// data request flag.
	StoreUpload(stationID, topic string, r Reading, now time.Time) error

	// LogFailure records a rejected inbound message. Advisory only, a
	// failure to log must not fail the request.
	LogFailure(stationID, topic, taskType, status string, now time.Time)
}

type Handler struct {
	registry Registry
}

func NewHandler(registry Registry) *Handler {
	return &Handler{registry: registry}
}

// Heartbeat : set the station online and reveal the pending flags.
func (h *Handler) Heartbeat(topic string, req HeartbeatRequest) (*HeartbeatResponse, error) {
	if err := req.Validate(); err != nil {
		h.registry.LogFailure(req.StationID, topic, model.TaskHeartbeat, StatusRejected, time.Now())
		return nil, err
	}
	flags, err := h.registry.MarkOnline(req.StationID, topic, time.Now())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.registry.LogFailure(req.StationID, topic, model.TaskHeartbeat, StatusUnknown, time.Now())
		}
		return nil, err
	}
	logrus.Debugf("heartbeat from %s request_update=%v configuration_update=%v",
		req.StationID, flags.RequestUpdate, flags.ConfigurationUpdate)
	return &HeartbeatResponse{
		StationID:           req.StationID,
		Task:                TaskNameHeartbeat,
		Message:             ackMessage,
		Success:             true,
		RequestUpdate:       flags.RequestUpdate,
		ConfigurationUpdate: flags.ConfigurationUpdate,
	}, nil
}

// ConfigAck : the device asserts it applied the pending configuration. The
// server does not diff the applied values, it clears the flag and echoes the
// settings the device should be running.
func (h *Handler) ConfigAck(topic string, req ConfigAckRequest) (*ConfigAckResponse, error) {
	if err := req.Validate(); err != nil {
		h.registry.LogFailure(req.StationID, topic, model.TaskConfigUpdate, StatusRejected, time.Now())
		return nil, err
	}
	values, err := h.registry.AckConfig(req.StationID, topic, time.Now())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.registry.LogFailure(req.StationID, topic, model.TaskConfigUpdate, StatusUnknown, time.Now())
		}
		return nil, err
	}
	return &ConfigAckResponse{
		StationID:          req.StationID,
		Task:               TaskNameConfig,
		Message:            ackMessage,
		Success:            true,
		DataCollectionTime: values.DataCollectionTime,
		DataInterval:       values.DataInterval,
	}, nil
}

// DataUpload : append the reading and clear the data request flag. The flag
// is cleared no matter what update_request carried, any upload satisfies any
// pending request.
func (h *Handler) DataUpload(topic string, req DataUploadRequest) (*DataUploadResponse, error) {
	if err := req.Validate(); err != nil {
		h.registry.LogFailure(req.StationID, topic, model.TaskDataUpload, StatusRejected, time.Now())
		return nil, err
	}
	reading := Reading{
		Temperature:    *req.Temperature,
		Humidity:       *req.Humidity,
		Rssi:           *req.Rssi,
		BatteryVoltage: *req.BatteryVoltage,
		WebTriggered:   *req.UpdateRequest,
	}
	if err := h.registry.StoreUpload(req.StationID, topic, reading, time.Now()); err != nil {
		if errors.Is(err, ErrNotFound) {
			h.registry.LogFailure(req.StationID, topic, model.TaskDataUpload, StatusUnknown, time.Now())
		}
		return nil, err
	}
	return &DataUploadResponse{
		StationID: req.StationID,
		Task:      TaskNameUpload,
		Message:   ackMessage,
		Success:   true,
	}, nil
}
