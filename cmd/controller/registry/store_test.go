package registry

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"station-monitor/cmd/controller/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %s", err.Error())
	}
	err = conn.AutoMigrate(&model.State{}, &model.District{}, &model.Station{},
		&model.DeviceConfig{}, &model.DeviceStatus{}, &model.SensorReading{},
		&model.TaskLog{})
	if err != nil {
		t.Fatalf("migrate failed: %s", err.Error())
	}
	return conn
}

// seedGeography inserts one state with one district and returns their ids.
func seedGeography(t *testing.T, conn *gorm.DB) (uint, uint) {
	t.Helper()
	state := model.State{Name: "Selangor"}
	if err := conn.Create(&state).Error; err != nil {
		t.Fatalf("seed state failed: %s", err.Error())
	}
	district := model.District{StateID: state.ID, Name: "Petaling Jaya", Code: "PJY"}
	if err := conn.Create(&district).Error; err != nil {
		t.Fatalf("seed district failed: %s", err.Error())
	}
	return state.ID, district.ID
}

func createInput(stateID, districtID uint, macAddress string) CreateStationInput {
	return CreateStationInput{
		Name:               "Taman Jaya",
		StateID:            stateID,
		DistrictID:         districtID,
		Address:            "Jalan Timur, Petaling Jaya",
		MacAddress:         macAddress,
		DataInterval:       30,
		DataCollectionTime: 5,
	}
}

func countRows(t *testing.T, conn *gorm.DB, value interface{}) int64 {
	t.Helper()
	var n int64
	if err := conn.Model(value).Count(&n).Error; err != nil {
		t.Fatalf("count failed: %s", err.Error())
	}
	return n
}

func TestCreateStation(t *testing.T) {
	conn := openTestDB(t)
	stateID, districtID := seedGeography(t, conn)
	store := NewStore(conn, nil)

	first, err := store.CreateStation(createInput(stateID, districtID, "aa:bb:cc:dd:ee:01"))
	if err != nil {
		t.Fatalf("create failed: %s", err.Error())
	}
	if first.StationID != "PJY001" {
		t.Errorf("derived station id = %q, want PJY001", first.StationID)
	}
	if !first.Active {
		t.Errorf("new station should be active")
	}

	second, err := store.CreateStation(createInput(stateID, districtID, "aa:bb:cc:dd:ee:02"))
	if err != nil {
		t.Fatalf("second create failed: %s", err.Error())
	}
	if second.StationID != "PJY002" {
		t.Errorf("derived station id = %q, want PJY002", second.StationID)
	}

	var config model.DeviceConfig
	if err := conn.Where("station_id=?", first.StationID).First(&config).Error; err != nil {
		t.Fatalf("device config row missing: %s", err.Error())
	}
	if len(config.AuthToken) != 64 {
		t.Errorf("auth token length = %d, want 64", len(config.AuthToken))
	}
	if config.MacAddress != "AA:BB:CC:DD:EE:01" {
		t.Errorf("mac stored as %q, want canonical AA:BB:CC:DD:EE:01", config.MacAddress)
	}

	var status model.DeviceStatus
	if err := conn.Where("station_id=?", first.StationID).First(&status).Error; err != nil {
		t.Fatalf("device status row missing: %s", err.Error())
	}
	if status.Status != model.StatusOffline {
		t.Errorf("new station status = %q, want offline", status.Status)
	}
}

// the uniqueness check runs on the canonical form, so the same device re
// registered with a different separator style must bounce before any insert
func TestCreateStationRejectsDuplicateMac(t *testing.T) {
	conn := openTestDB(t)
	stateID, districtID := seedGeography(t, conn)
	store := NewStore(conn, nil)

	if _, err := store.CreateStation(createInput(stateID, districtID, "aa:bb:cc:dd:ee:ff")); err != nil {
		t.Fatalf("create failed: %s", err.Error())
	}

	_, err := store.CreateStation(createInput(stateID, districtID, "AA-BB-CC-DD-EE-FF"))
	if !errors.Is(err, ErrDuplicateMac) {
		t.Fatalf("expected ErrDuplicateMac, got %v", err)
	}

	if n := countRows(t, conn, &model.Station{}); n != 1 {
		t.Errorf("station rows = %d, want 1", n)
	}
	if n := countRows(t, conn, &model.DeviceConfig{}); n != 1 {
		t.Errorf("device config rows = %d, want 1", n)
	}
	if n := countRows(t, conn, &model.DeviceStatus{}); n != 1 {
		t.Errorf("device status rows = %d, want 1", n)
	}
}

func TestCreateStationUnknownDistrict(t *testing.T) {
	conn := openTestDB(t)
	stateID, _ := seedGeography(t, conn)
	store := NewStore(conn, nil)

	_, err := store.CreateStation(createInput(stateID, 99, "aa:bb:cc:dd:ee:ff"))
	if !errors.Is(err, ErrDistrictNotFound) {
		t.Fatalf("expected ErrDistrictNotFound, got %v", err)
	}
	if n := countRows(t, conn, &model.Station{}); n != 0 {
		t.Errorf("station rows = %d, want 0", n)
	}
}

func TestRotateToken(t *testing.T) {
	conn := openTestDB(t)
	stateID, districtID := seedGeography(t, conn)
	store := NewStore(conn, nil)

	station, err := store.CreateStation(createInput(stateID, districtID, "aa:bb:cc:dd:ee:ff"))
	if err != nil {
		t.Fatalf("create failed: %s", err.Error())
	}
	var before model.DeviceConfig
	if err := conn.Where("station_id=?", station.StationID).First(&before).Error; err != nil {
		t.Fatal(err)
	}

	fresh, err := store.RotateToken(station.StationID)
	if err != nil {
		t.Fatalf("rotate failed: %s", err.Error())
	}
	if len(fresh) != 64 {
		t.Errorf("rotated token length = %d, want 64", len(fresh))
	}
	if fresh == before.AuthToken {
		t.Errorf("rotated token must differ from the previous one")
	}

	var after model.DeviceConfig
	if err := conn.Where("station_id=?", station.StationID).First(&after).Error; err != nil {
		t.Fatal(err)
	}
	if after.AuthToken != fresh {
		t.Errorf("stored token %q does not match returned token", after.AuthToken)
	}
}
