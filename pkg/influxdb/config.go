package influxdb

import (
	"fmt"
	"strconv"
	"strings"
)

type Account struct {
	Address string `yaml:"address"`
	Bucket  string `yaml:"bucket"`
	Token   string `yaml:"token"`
	Org     string `yaml:"org"`
}

func (i Account) Validate() error {
	if i.Bucket == "" {
		return fmt.Errorf("influxdb: bucket could not be empty")
	}
	if i.Token == "" {
		return fmt.Errorf("influxdb: token could not be empty")
	}
	if i.Org == "" {
		return fmt.Errorf("influxdb: org could not be empty")
	}
	if !strings.HasPrefix(i.Address, "http://") && !strings.HasPrefix(i.Address, "https://") {
		return fmt.Errorf("influxdb: address invalid, expect http(s)://host:port")
	}
	host := i.Address[strings.Index(i.Address, "//")+2:]
	p := strings.Split(host, ":")
	if len(p) != 2 || p[0] == "" {
		return fmt.Errorf("influxdb: address invalid, expect http(s)://host:port")
	}
	if port, err := strconv.ParseInt(p[1], 10, 32); err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("influxdb: address invalid, expect http(s)://host:port")
	}
	return nil
}
