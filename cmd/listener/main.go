package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"station-monitor/cmd/controller/db"
	"station-monitor/cmd/controller/protocol"
	"station-monitor/cmd/controller/registry"
	"station-monitor/cmd/listener/bridge"
	"station-monitor/cmd/listener/config"
	"station-monitor/pkg/mqtt"
	"station-monitor/pkg/validator"
)

var configFilePath = flag.String("config", "", "input config file path")

const info = "usage \n" + "		-config string		config file path"

const statsEvery = 5 * time.Minute

func main() {
	flag.Parse()
	if *configFilePath == "" {
		fmt.Printf("please input config file path\n\n")
		fmt.Print(info)
		return
	}

	conf, err := config.ParseYaml(*configFilePath)
	if err != nil {
		logrus.Errorf("listener start failed: %s", err.Error())
		return
	}
	if err := conf.Validate(); err != nil {
		logrus.Errorf("listener start failed: %s", err.Error())
		return
	}

	db.InitMysqlClient(conf.Mysql)
	logrus.Infof("init mysql success using config database:%s username:%s url:%s",
		conf.Mysql.Database,
		conf.Mysql.Username,
		conf.Mysql.Address,
	)

	db.InitInfluxdbClient(conf.Influxdb)
	logrus.Infof("init influxdb success using config bucket:%s org:%s url:%s",
		conf.Influxdb.Bucket,
		conf.Influxdb.Org,
		conf.Influxdb.Address,
	)
	defer db.InfluxdbClientClose()

	db.Init()

	conn, err := mqtt.NewConnector(conf.Mqtt)
	if err != nil {
		logrus.Errorf("listener start failed: %s", err.Error())
		return
	}
	defer conn.Close()
	logrus.Infof("connected to mqtt broker %s as %s", conf.Mqtt.Address, conf.Mqtt.ClientID)

	store := registry.NewStore(db.MysqlClient.DB, db.InfluxdbClient)
	b := bridge.New(conn, protocol.NewHandler(store))
	if err := b.Start(); err != nil {
		logrus.Errorf("listener start failed: %s", err.Error())
		return
	}

	// stop on signal or, when run_for is set, on the wall clock timeout
	sg := make(chan os.Signal, 1)
	signal.Notify(sg, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var timeout <-chan time.Time
	if conf.RunFor != "" && conf.RunFor != "0" {
		d, _ := validator.CheckDurationPositive(conf.RunFor)
		timeout = time.After(d)
		logrus.Infof("listener will stop after %s", d)
	}

	ticker := time.NewTicker(statsEvery)
	defer ticker.Stop()

	for {
		select {
		case s := <-sg:
			b.LogStats()
			logrus.Infof("listener stop: %s", s.String())
			return
		case <-timeout:
			b.LogStats()
			logrus.Info("listener stop: run duration elapsed")
			return
		case <-ticker.C:
			b.LogStats()
		}
	}
}
