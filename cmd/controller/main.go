package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"station-monitor/cmd/controller/config"
	"station-monitor/cmd/controller/db"
	"station-monitor/cmd/controller/monitor"
	"station-monitor/cmd/controller/registry"
	"station-monitor/cmd/controller/server"
	"station-monitor/pkg/validator"
)

var configFilePath = flag.String("config", "", "input config file path")

const info = "usage \n" + "		-config string		config file path"

func main() {
	flag.Parse()
	if *configFilePath == "" {
		fmt.Printf("please input config file path\n\n")
		fmt.Print(info)
		return
	}

	conf, err := config.ParseYaml(*configFilePath)
	if err != nil {
		logrus.Errorf("server start failed: %s", err.Error())
		return
	}
	if err := conf.Validate(); err != nil {
		logrus.Errorf("server start failed: %s", err.Error())
		return
	}

	db.InitInfluxdbClient(conf.Influxdb)
	logrus.Infof("init influxdb success using config bucket:%s org:%s url:%s",
		conf.Influxdb.Bucket,
		conf.Influxdb.Org,
		conf.Influxdb.Address,
	)

	db.InitMysqlClient(conf.Mysql)
	logrus.Infof("init mysql success using config database:%s username:%s url:%s",
		conf.Mysql.Database,
		conf.Mysql.Username,
		conf.Mysql.Address,
	)

	db.Init()
	db.Seed()

	defer db.InfluxdbClientClose()

	store := registry.NewStore(db.MysqlClient.DB, db.InfluxdbClient)

	if conf.Monitor.Enable {
		checkInterval, _ := validator.CheckDurationPositive(conf.Monitor.CheckInterval)
		pendingTTL, _ := validator.CheckDurationPositive(conf.Monitor.PendingTTL)
		var notifier monitor.Notifier
		if conf.Alert.Enable {
			notifier = monitor.NewAlertClient(conf.Alert.Address, conf.Alert.Topic)
		}
		mon := monitor.New(db.MysqlClient.DB, notifier, checkInterval, pendingTTL)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		// delayed start, let the first migrations and seeds settle
		time.AfterFunc(7*time.Second, func() { mon.Start(ctx) })
	}

	serv, err := server.NewController(conf, store)
	if err != nil {
		logrus.Errorf("server start failed: %s", err.Error())
		return
	}

	if err := serv.Start(); err != nil {
		logrus.Errorf("server start failed: %s", err.Error())
	}
	serv.Stop()
}
