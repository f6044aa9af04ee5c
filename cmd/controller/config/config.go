package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"station-monitor/pkg/influxdb"
	"station-monitor/pkg/mysql"
	"station-monitor/pkg/validator"
)

type Http struct {
	Port int `yaml:"port"`
}

func (h Http) Validate() error {
	if h.Port <= 0 || h.Port > 65535 {
		return fmt.Errorf("http: port invalid")
	}
	return nil
}

// Monitor drives the offline sweep and pending flag expiry.
type Monitor struct {
	Enable        bool   `yaml:"enable"`
	CheckInterval string `yaml:"check_interval"` // e.g. 1m
	PendingTTL    string `yaml:"pending_ttl"`    // e.g. 24h
}

func (m Monitor) Validate() error {
	if !m.Enable {
		return nil
	}
	if _, err := validator.CheckDurationPositive(m.CheckInterval); err != nil {
		return fmt.Errorf("monitor: check_interval invalid: %s", err.Error())
	}
	if _, err := validator.CheckDurationPositive(m.PendingTTL); err != nil {
		return fmt.Errorf("monitor: pending_ttl invalid: %s", err.Error())
	}
	return nil
}

// Alert points at the alert engine service offline notifications are pushed to.
type Alert struct {
	Enable  bool   `yaml:"enable"`
	Address string `yaml:"address"` // e.g. http://127.0.0.1:5050
	Topic   string `yaml:"topic"`   // e.g. station/offline
}

func (a Alert) Validate() error {
	if !a.Enable {
		return nil
	}
	if a.Address == "" {
		return fmt.Errorf("alert: address could not be empty")
	}
	if a.Topic == "" {
		return fmt.Errorf("alert: topic could not be empty")
	}
	return nil
}

type Config struct {
	Http     Http             `yaml:"http"`
	Mysql    mysql.Account    `yaml:"mysql"`
	Influxdb influxdb.Account `yaml:"influxdb"`
	Monitor  Monitor          `yaml:"monitor"`
	Alert    Alert            `yaml:"alert"`
}

func (c Config) Validate() error {
	if err := c.Http.Validate(); err != nil {
		return err
	}
	if err := c.Mysql.Validate(); err != nil {
		return err
	}
	if err := c.Influxdb.Validate(); err != nil {
		return err
	}
	if err := c.Monitor.Validate(); err != nil {
		return err
	}
	return c.Alert.Validate()
}

func ParseYaml(path string) (*Config, error) {
	conf := &Config{}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err = yaml.NewDecoder(f).Decode(conf); err != nil {
		return nil, err
	}
	return conf, nil
}
