package model

import "time"

// device lifecycle status values
const (
	StatusOnline      = "online"
	StatusOffline     = "offline"
	StatusMaintenance = "maintenance"
)

// task log task types
const (
	TaskHeartbeat    = "heartbeat"
	TaskConfigUpdate = "configuration_update"
	TaskDataUpload   = "data_upload"
)

// task log directions
const (
	DirectionRequest  = "request"
	DirectionResponse = "response"
)

// user roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// State : reference data, seeded on boot
type State struct {
	ID   uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;not null;unique" json:"name"`
}

func (s State) TableName() string {
	return "states"
}

// District : reference data, Code is the 3 letter prefix of derived station ids
type District struct {
	ID      uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	StateID uint   `gorm:"column:state_id;not null;index" json:"state_id"`
	Name    string `gorm:"column:name;not null" json:"name"`
	Code    string `gorm:"column:code;not null;unique" json:"code"`
}

func (d District) TableName() string {
	return "districts"
}

// Station : identity and location. StationID is immutable once created;
// deactivation flips Active, rows are never removed.
type Station struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	StationID  string    `gorm:"column:station_id;size:50;not null;unique" json:"station_id"`
	Name       string    `gorm:"column:name;not null" json:"name"`
	StateID    uint      `gorm:"column:state_id;not null" json:"state_id"`
	DistrictID uint      `gorm:"column:district_id;not null" json:"district_id"`
	Address    string    `gorm:"column:address" json:"address"`
	Latitude   *float64  `gorm:"column:latitude" json:"latitude"`
	Longitude  *float64  `gorm:"column:longitude" json:"longitude"`
	Active     bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (s Station) TableName() string {
	return "stations"
}

// DeviceConfig : one per station, keyed by the station identifier string.
type DeviceConfig struct {
	ID                  uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	StationID           string     `gorm:"column:station_id;size:50;not null;unique" json:"station_id"`
	AuthToken           string     `gorm:"column:auth_token;size:64;not null" json:"auth_token"`
	MacAddress          string     `gorm:"column:mac_address;size:17;not null;unique" json:"mac_address"`
	DataInterval        int        `gorm:"column:data_interval;not null" json:"data_interval"`               // minutes
	DataCollectionTime  int        `gorm:"column:data_collection_time;not null" json:"data_collection_time"` // minutes
	ConfigurationUpdate bool       `gorm:"column:configuration_update;not null;default:false" json:"configuration_update"`
	ConfigRequestedAt   *time.Time `gorm:"column:config_requested_at" json:"config_requested_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (d DeviceConfig) TableName() string {
	return "device_configs"
}

// DeviceStatus : live status, one per station.
type DeviceStatus struct {
	ID              uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	StationID       string     `gorm:"column:station_id;size:50;not null;unique" json:"station_id"`
	Status          string     `gorm:"column:status;size:16;not null;default:offline" json:"status"`
	LastSeen        *time.Time `gorm:"column:last_seen" json:"last_seen"`
	RequestUpdate   bool       `gorm:"column:request_update;not null;default:false" json:"request_update"`
	DataRequestedAt *time.Time `gorm:"column:data_requested_at" json:"data_requested_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (d DeviceStatus) TableName() string {
	return "device_statuses"
}

// SensorReading : append only, never updated or deleted.
type SensorReading struct {
	ID             uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	StationID      string    `gorm:"column:station_id;size:50;not null;index" json:"station_id"`
	Temperature    float64   `gorm:"column:temperature;not null" json:"temperature"`         // celsius
	Humidity       float64   `gorm:"column:humidity;not null" json:"humidity"`               // percent
	Rssi           float64   `gorm:"column:rssi;not null" json:"rssi"`                       // dBm
	BatteryVoltage float64   `gorm:"column:battery_voltage;not null" json:"battery_voltage"` // volt
	WebTriggered   bool      `gorm:"column:web_triggered;not null;default:false" json:"web_triggered"`
	RecordedAt     time.Time `gorm:"column:recorded_at;not null;index" json:"recorded_at"`
}

func (s SensorReading) TableName() string {
	return "sensor_readings"
}

// TaskLog : append only audit trail of protocol messages. No FK on purpose,
// rows survive station deactivation.
type TaskLog struct {
	ID          uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	StationID   string     `gorm:"column:station_id;size:50;index" json:"station_id"`
	Topic       string     `gorm:"column:topic;size:128;not null" json:"topic"`
	TaskType    string     `gorm:"column:task_type;size:32;not null" json:"task_type"`
	Direction   string     `gorm:"column:direction;size:16;not null" json:"direction"`
	Status      string     `gorm:"column:status;size:32;not null" json:"status"`
	ReceivedAt  time.Time  `gorm:"column:received_at;not null;index" json:"received_at"`
	ProcessedAt *time.Time `gorm:"column:processed_at" json:"processed_at"`
}

func (t TaskLog) TableName() string {
	return "task_logs"
}

// User : operator account. Token is the current session token, empty when
// logged out.
type User struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"column:username;size:64;not null;unique" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;size:72;not null" json:"-"`
	Role         string    `gorm:"column:role;size:16;not null;default:user" json:"role"`
	Token        string    `gorm:"column:token;size:40;index" json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (u User) TableName() string {
	return "users"
}
