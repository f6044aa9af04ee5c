package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"station-monitor/cmd/controller/db"
	"station-monitor/cmd/controller/model"
	"station-monitor/pkg/mysql"
)

// setupTestDB points the package level client at an in memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %s", err.Error())
	}
	err = conn.AutoMigrate(&model.State{}, &model.District{}, &model.Station{},
		&model.DeviceConfig{}, &model.DeviceStatus{}, &model.SensorReading{},
		&model.TaskLog{}, &model.User{})
	if err != nil {
		t.Fatalf("migrate failed: %s", err.Error())
	}
	db.MysqlClient = &mysql.Connector{DB: conn}
	return conn
}

func testContext(t *testing.T, method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(method, target, nil)
	return ctx, w
}

func TestDashboardSummary(t *testing.T) {
	conn := setupTestDB(t)

	// one active online station with pending config and a fresh reading,
	// one deactivated station that must not skew the status counts
	mustCreate(t, conn, &model.Station{StationID: "PJY001", Name: "Taman Jaya",
		StateID: 1, DistrictID: 1, Active: true})
	mustCreate(t, conn, &model.DeviceStatus{StationID: "PJY001", Status: model.StatusOnline})
	mustCreate(t, conn, &model.DeviceConfig{StationID: "PJY001", AuthToken: "t",
		MacAddress: "AA:BB:CC:DD:EE:01", DataInterval: 30, DataCollectionTime: 5,
		ConfigurationUpdate: true})
	mustCreate(t, conn, &model.SensorReading{StationID: "PJY001", Temperature: 31.5,
		Humidity: 68.2, Rssi: -71, BatteryVoltage: 3.9, RecordedAt: time.Now()})

	mustCreate(t, conn, &model.Station{StationID: "SAM001", Name: "Seksyen 7",
		StateID: 1, DistrictID: 2, Active: false})
	mustCreate(t, conn, &model.DeviceStatus{StationID: "SAM001", Status: model.StatusOnline})

	c := &Controller{}
	ctx, w := testContext(t, http.MethodGet, "/api/dashboard/summary")
	c.dashboardSummary(ctx)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data dashboardSummary `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode failed: %s", err.Error())
	}
	got := resp.Data
	if got.TotalStations != 2 || got.ActiveStations != 1 {
		t.Errorf("station counts = %d/%d, want 2/1", got.TotalStations, got.ActiveStations)
	}
	if got.Online != 1 {
		t.Errorf("online = %d, want 1 (deactivated station must not count)", got.Online)
	}
	if got.PendingConfig != 1 || got.Readings24h != 1 {
		t.Errorf("pending_config=%d readings_24h=%d, want 1/1", got.PendingConfig, got.Readings24h)
	}
}

func TestExportReadings(t *testing.T) {
	conn := setupTestDB(t)
	mustCreate(t, conn, &model.SensorReading{StationID: "PJY001", Temperature: 31.5,
		Humidity: 68.2, Rssi: -71, BatteryVoltage: 3.9, RecordedAt: time.Now()})
	mustCreate(t, conn, &model.SensorReading{StationID: "SAM001", Temperature: 28.0,
		Humidity: 75.0, Rssi: -80, BatteryVoltage: 4.1, RecordedAt: time.Now()})

	c := &Controller{}
	ctx, w := testContext(t, http.MethodGet, "/api/readings/export?stationId=PJY001")
	c.exportReadings(ctx)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %q, want text/csv", ct)
	}
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv line count = %d, want header plus one row: %q", len(lines), lines)
	}
	if lines[0] != "station_id,recorded_at,temperature,humidity,rssi,battery_voltage,web_triggered" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "PJY001,") {
		t.Errorf("row should be the filtered station: %q", lines[1])
	}
	if strings.Contains(w.Body.String(), "SAM001") {
		t.Errorf("filtered out station leaked into the export")
	}
}

func mustCreate(t *testing.T, conn *gorm.DB, value interface{}) {
	t.Helper()
	if err := conn.Create(value).Error; err != nil {
		t.Fatalf("seed failed: %s", err.Error())
	}
}
