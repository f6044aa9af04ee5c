package protocol

import (
	"errors"
	"testing"
	"time"

	"station-monitor/cmd/controller/model"
)

// fakeRegistry mimics the persistence semantics in memory: one transition
// per call, flags cleared by the operations that own them.
type fakeRegistry struct {
	active   map[string]bool
	flags    map[string]Flags
	config   map[string]ConfigValues
	status   map[string]string
	lastSeen map[string]time.Time
	readings []Reading
	logPairs []string // task types of successful log pairs
	failures []string // statuses of failure log rows
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		active:   map[string]bool{"PJY001": true},
		flags:    map[string]Flags{"PJY001": {}},
		config:   map[string]ConfigValues{"PJY001": {DataCollectionTime: 5, DataInterval: 30}},
		status:   map[string]string{"PJY001": model.StatusOffline},
		lastSeen: map[string]time.Time{},
	}
}

func (f *fakeRegistry) MarkOnline(stationID, topic string, now time.Time) (Flags, error) {
	if !f.active[stationID] {
		return Flags{}, ErrNotFound
	}
	f.status[stationID] = model.StatusOnline
	f.lastSeen[stationID] = now
	f.logPairs = append(f.logPairs, model.TaskHeartbeat)
	return f.flags[stationID], nil
}

func (f *fakeRegistry) AckConfig(stationID, topic string, now time.Time) (ConfigValues, error) {
	if !f.active[stationID] {
		return ConfigValues{}, ErrNotFound
	}
	flags := f.flags[stationID]
	flags.ConfigurationUpdate = false
	f.flags[stationID] = flags
	f.logPairs = append(f.logPairs, model.TaskConfigUpdate)
	return f.config[stationID], nil
}

func (f *fakeRegistry) StoreUpload(stationID, topic string, r Reading, now time.Time) error {
	if !f.active[stationID] {
		return ErrNotFound
	}
	f.readings = append(f.readings, r)
	f.status[stationID] = model.StatusOnline
	f.lastSeen[stationID] = now
	flags := f.flags[stationID]
	flags.RequestUpdate = false
	f.flags[stationID] = flags
	f.logPairs = append(f.logPairs, model.TaskDataUpload)
	return nil
}

func (f *fakeRegistry) LogFailure(stationID, topic, taskType, status string, now time.Time) {
	f.failures = append(f.failures, status)
}

func validHeartbeat() HeartbeatRequest {
	return HeartbeatRequest{
		StationID: "PJY001",
		Task:      "heartbeat",
		Message:   "checking in",
		Status:    "ok",
	}
}

func boolPtr(v bool) *bool        { return &v }
func floatPtr(v float64) *float64 { return &v }

func validUpload() DataUploadRequest {
	return DataUploadRequest{
		StationID:      "PJY001",
		Task:           "Upload Data",
		Message:        "scheduled reading",
		Humidity:       floatPtr(68.2),
		Temperature:    floatPtr(31.5),
		Rssi:           floatPtr(-71),
		BatteryVoltage: floatPtr(3.9),
		UpdateRequest:  boolPtr(false),
	}
}

func TestHeartbeatMirrorsFlagsWithoutClearing(t *testing.T) {
	reg := newFakeRegistry()
	reg.flags["PJY001"] = Flags{RequestUpdate: true, ConfigurationUpdate: true}
	h := NewHandler(reg)

	resp, err := h.Heartbeat("iot/heartBeat/request", validHeartbeat())
	if err != nil {
		t.Fatalf("heartbeat failed: %s", err.Error())
	}
	if !resp.Success || resp.Task != TaskNameHeartbeat || resp.Message != "data received" {
		t.Errorf("unexpected response envelope: %+v", resp)
	}
	if !resp.RequestUpdate || !resp.ConfigurationUpdate {
		t.Errorf("response must mirror pending flags, got %+v", resp)
	}
	// heartbeat reads, never clears
	if got := reg.flags["PJY001"]; !got.RequestUpdate || !got.ConfigurationUpdate {
		t.Errorf("heartbeat must not clear pending flags, got %+v", got)
	}
	if reg.status["PJY001"] != model.StatusOnline {
		t.Errorf("station should be online, got %s", reg.status["PJY001"])
	}
}

func TestHeartbeatIdempotent(t *testing.T) {
	reg := newFakeRegistry()
	h := NewHandler(reg)

	if _, err := h.Heartbeat("iot/heartBeat/request", validHeartbeat()); err != nil {
		t.Fatal(err)
	}
	first := reg.lastSeen["PJY001"]
	time.Sleep(time.Millisecond)
	if _, err := h.Heartbeat("iot/heartBeat/request", validHeartbeat()); err != nil {
		t.Fatal(err)
	}
	if len(reg.logPairs) != 2 {
		t.Errorf("expected two log pairs, got %d", len(reg.logPairs))
	}
	if reg.status["PJY001"] != model.StatusOnline {
		t.Errorf("station should stay online")
	}
	if !reg.lastSeen["PJY001"].After(first) {
		t.Errorf("last seen should advance on replay")
	}
}

func TestHeartbeatValidation(t *testing.T) {
	long := make([]byte, 51)
	for i := range long {
		long[i] = 'A'
	}
	cases := []struct {
		name   string
		mutate func(*HeartbeatRequest)
	}{
		{"missing station_id", func(r *HeartbeatRequest) { r.StationID = "" }},
		{"station_id too long", func(r *HeartbeatRequest) { r.StationID = string(long) }},
		{"missing task", func(r *HeartbeatRequest) { r.Task = "" }},
		{"missing message", func(r *HeartbeatRequest) { r.Message = "" }},
		{"missing status", func(r *HeartbeatRequest) { r.Status = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := newFakeRegistry()
			h := NewHandler(reg)
			req := validHeartbeat()
			tc.mutate(&req)
			if _, err := h.Heartbeat("iot/heartBeat/request", req); !errors.Is(err, ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
			if len(reg.logPairs) != 0 {
				t.Errorf("rejected request must not mutate state")
			}
			if len(reg.failures) != 1 || reg.failures[0] != StatusRejected {
				t.Errorf("rejection should be logged, got %v", reg.failures)
			}
		})
	}
}

func TestUnknownOrInactiveStation(t *testing.T) {
	reg := newFakeRegistry()
	reg.active["KL001"] = false
	h := NewHandler(reg)

	hb := validHeartbeat()
	hb.StationID = "KL001"
	if _, err := h.Heartbeat("iot/heartBeat/request", hb); !errors.Is(err, ErrNotFound) {
		t.Errorf("heartbeat: expected not found, got %v", err)
	}

	ack := ConfigAckRequest{StationID: "KL001", Task: "Configuration Update",
		Message: "applied", ConfigurationUpdate: boolPtr(false)}
	if _, err := h.ConfigAck("iot/config/request", ack); !errors.Is(err, ErrNotFound) {
		t.Errorf("config ack: expected not found, got %v", err)
	}

	up := validUpload()
	up.StationID = "KL001"
	if _, err := h.DataUpload("iot/data/request", up); !errors.Is(err, ErrNotFound) {
		t.Errorf("upload: expected not found, got %v", err)
	}

	if len(reg.readings) != 0 || len(reg.logPairs) != 0 {
		t.Errorf("inactive station must leave registry unchanged")
	}
	for _, status := range reg.failures {
		if status != StatusUnknown {
			t.Errorf("expected unknown_station failures, got %v", reg.failures)
		}
	}
}

func TestConfigAckAlwaysClears(t *testing.T) {
	for _, ackValue := range []bool{true, false} {
		reg := newFakeRegistry()
		reg.flags["PJY001"] = Flags{ConfigurationUpdate: true}
		h := NewHandler(reg)

		req := ConfigAckRequest{
			StationID:           "PJY001",
			Task:                "Configuration Update",
			Message:             "applied",
			ConfigurationUpdate: boolPtr(ackValue),
		}
		resp, err := h.ConfigAck("iot/config/request", req)
		if err != nil {
			t.Fatalf("config ack failed: %s", err.Error())
		}
		if reg.flags["PJY001"].ConfigurationUpdate {
			t.Errorf("ack with configuration_update=%v must still clear the flag", ackValue)
		}
		if resp.DataCollectionTime != 5 || resp.DataInterval != 30 {
			t.Errorf("response should carry current settings, got %+v", resp)
		}
	}
}

func TestConfigAckRequiresField(t *testing.T) {
	reg := newFakeRegistry()
	h := NewHandler(reg)
	req := ConfigAckRequest{StationID: "PJY001", Task: "Configuration Update", Message: "applied"}
	if _, err := h.ConfigAck("iot/config/request", req); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestDataUploadStoresAndClears(t *testing.T) {
	for _, updateRequest := range []bool{true, false} {
		reg := newFakeRegistry()
		reg.flags["PJY001"] = Flags{RequestUpdate: true}
		h := NewHandler(reg)

		req := validUpload()
		req.UpdateRequest = boolPtr(updateRequest)
		resp, err := h.DataUpload("iot/data/request", req)
		if err != nil {
			t.Fatalf("upload failed: %s", err.Error())
		}
		if !resp.Success || resp.Task != TaskNameUpload {
			t.Errorf("unexpected response: %+v", resp)
		}
		if len(reg.readings) != 1 {
			t.Fatalf("expected exactly one reading, got %d", len(reg.readings))
		}
		if reg.readings[0].WebTriggered != updateRequest {
			t.Errorf("reading should be tagged web_triggered=%v", updateRequest)
		}
		// cleared regardless of the payload's own update_request value
		if reg.flags["PJY001"].RequestUpdate {
			t.Errorf("upload with update_request=%v must clear the data request flag", updateRequest)
		}
	}
}

func TestDataUploadBoundaries(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*DataUploadRequest)
		ok     bool
	}{
		{"humidity min", func(r *DataUploadRequest) { r.Humidity = floatPtr(0) }, true},
		{"humidity max", func(r *DataUploadRequest) { r.Humidity = floatPtr(100) }, true},
		{"humidity above max", func(r *DataUploadRequest) { r.Humidity = floatPtr(100.01) }, false},
		{"humidity below min", func(r *DataUploadRequest) { r.Humidity = floatPtr(-0.01) }, false},
		{"temperature min", func(r *DataUploadRequest) { r.Temperature = floatPtr(-50) }, true},
		{"temperature max", func(r *DataUploadRequest) { r.Temperature = floatPtr(100) }, true},
		{"temperature below min", func(r *DataUploadRequest) { r.Temperature = floatPtr(-50.5) }, false},
		{"rssi min", func(r *DataUploadRequest) { r.Rssi = floatPtr(-120) }, true},
		{"rssi max", func(r *DataUploadRequest) { r.Rssi = floatPtr(0) }, true},
		{"rssi positive", func(r *DataUploadRequest) { r.Rssi = floatPtr(1) }, false},
		{"battery min", func(r *DataUploadRequest) { r.BatteryVoltage = floatPtr(0) }, true},
		{"battery max", func(r *DataUploadRequest) { r.BatteryVoltage = floatPtr(5) }, true},
		{"battery above max", func(r *DataUploadRequest) { r.BatteryVoltage = floatPtr(5.1) }, false},
		{"missing humidity", func(r *DataUploadRequest) { r.Humidity = nil }, false},
		{"missing update_request", func(r *DataUploadRequest) { r.UpdateRequest = nil }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := newFakeRegistry()
			h := NewHandler(reg)
			req := validUpload()
			tc.mutate(&req)
			_, err := h.DataUpload("iot/data/request", req)
			if tc.ok && err != nil {
				t.Errorf("expected accept, got %v", err)
			}
			if !tc.ok {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("expected validation error, got %v", err)
				}
				if len(reg.readings) != 0 {
					t.Errorf("rejected upload must not store a reading")
				}
			}
		})
	}
}

// trigger -> heartbeat reveals -> upload clears
func TestPendingDataRoundTrip(t *testing.T) {
	reg := newFakeRegistry()
	h := NewHandler(reg)

	// operator requests an out of cycle reading
	flags := reg.flags["PJY001"]
	flags.RequestUpdate = true
	reg.flags["PJY001"] = flags

	resp, err := h.Heartbeat("iot/heartBeat/request", validHeartbeat())
	if err != nil {
		t.Fatal(err)
	}
	if !resp.RequestUpdate {
		t.Fatalf("heartbeat must reveal the pending data request")
	}

	if _, err := h.DataUpload("iot/data/request", validUpload()); err != nil {
		t.Fatal(err)
	}
	resp, err = h.Heartbeat("iot/heartBeat/request", validHeartbeat())
	if err != nil {
		t.Fatal(err)
	}
	if resp.RequestUpdate {
		t.Errorf("upload should have cleared the pending data request")
	}
}
