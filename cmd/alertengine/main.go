package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"station-monitor/cmd/alertengine/alert"
	"station-monitor/cmd/alertengine/config"
	"station-monitor/cmd/alertengine/server"
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

	alert.InitMail(conf.Smtp.Host, conf.Smtp.Port, conf.Smtp.Account, conf.Smtp.Password)

	exit := make(chan error)      // internal exit signal, cause by program error
	sg := make(chan os.Signal, 1) // external interrupt signal, send by user
	signal.Notify(sg, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	serv := server.NewServer(conf.Port, exit)
	for _, sub := range conf.Subscriptions {
		var rs []alert.Receiver
		for _, r := range sub.To {
			rs = append(rs, alert.NewReceiver(alert.BaseApi{
				Type:    r.Type,
				Address: r.Address,
				Token:   r.Token,
			}))
		}
		serv.Seed(sub.Topic, rs)
		logrus.Infof("seeded subscription %s with %d receivers", sub.Topic, len(rs))
	}
	go serv.Start()

	select {
	case info := <-sg:
		serv.Stop()
		logrus.Infof("service stop: %s", info.String())
	case err := <-exit:
		serv.Stop()
		logrus.Errorf("service stop: %s", err.Error())
	}
}
