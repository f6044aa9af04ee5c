package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"station-monitor/pkg/influxdb"
	"station-monitor/pkg/mqtt"
	"station-monitor/pkg/mysql"
	"station-monitor/pkg/validator"
)

type Config struct {
	Mysql    mysql.Account    `yaml:"mysql"`
	Influxdb influxdb.Account `yaml:"influxdb"`
	Mqtt     mqtt.Account     `yaml:"mqtt"`
	// RunFor bounds the listener lifetime, empty or 0 means run until
	// interrupted.
	RunFor string `yaml:"run_for"`
}

func (c Config) Validate() error {
	if err := c.Mysql.Validate(); err != nil {
		return err
	}
	if err := c.Influxdb.Validate(); err != nil {
		return err
	}
	if err := c.Mqtt.Validate(); err != nil {
		return err
	}
	if c.RunFor != "" && c.RunFor != "0" {
		if _, err := validator.CheckDurationPositive(c.RunFor); err != nil {
			return fmt.Errorf("run_for invalid: %s", err.Error())
		}
	}
	return nil
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
