package db

import (
	"fmt"
	"sync"

	"station-monitor/cmd/controller/model"
	"station-monitor/pkg/influxdb"
	"station-monitor/pkg/mysql"
)

var (
	MysqlClient    *mysql.Connector
	InfluxdbClient *influxdb.Connector
	mysqlOnce      = &sync.Once{}
	influxOnce     = &sync.Once{}
)

func InitMysqlClient(c mysql.Account) {
	mysqlOnce.Do(func() {
		conn, err := mysql.NewConnector(c.Address, c.Database, c.Username, c.Password)
		if err != nil {
			panic(fmt.Errorf("init mysql conn failed %s", err.Error()))
		}
		MysqlClient = conn
	})
}

func InitInfluxdbClient(c influxdb.Account) {
	influxOnce.Do(func() {
		conn, err := influxdb.NewConnector(c.Address, c.Bucket, c.Token, c.Org)
		if err != nil {
			panic(fmt.Errorf("init influxdb conn failed %s", err.Error()))
		}
		InfluxdbClient = conn
	})
}

func InfluxdbClientClose() {
	if InfluxdbClient != nil {
		InfluxdbClient.Close()
	}
}

// Init migrates all tables. Panics on failure, the service cannot run
// without its schema.
func Init() {
	if MysqlClient == nil {
		panic("mysql client has not init")
	}
	tables := []interface{}{
		&model.State{},
		&model.District{},
		&model.Station{},
		&model.DeviceConfig{},
		&model.DeviceStatus{},
		&model.SensorReading{},
		&model.TaskLog{},
		&model.User{},
	}
	for _, t := range tables {
		if !MysqlClient.DB.Migrator().HasTable(t) {
			if err := MysqlClient.DB.AutoMigrate(t); err != nil {
				panic(fmt.Sprintf("cannot migrate database: %s", err.Error()))
			}
		}
	}
}
