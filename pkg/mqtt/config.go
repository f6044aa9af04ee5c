package mqtt

import (
	"fmt"
	"strconv"
	"strings"
)

type Account struct {
	Address  string `yaml:"address"` // host:port, tcp transport
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func (m Account) Validate() error {
	if m.ClientID == "" {
		return fmt.Errorf("mqtt: client_id could not be empty")
	}
	p := strings.Split(m.Address, ":")
	if len(p) != 2 || p[0] == "" {
		return fmt.Errorf("mqtt: address invalid, expect host:port")
	}
	if port, err := strconv.ParseInt(p[1], 10, 32); err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("mqtt: port invalid")
	}
	return nil
}
