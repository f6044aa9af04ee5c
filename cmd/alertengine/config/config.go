package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"station-monitor/cmd/alertengine/alert"
)

type SmtpService struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Account  string `yaml:"account"`
	Password string `yaml:"password"`
}

func (s SmtpService) Validate() error {
	if s.Host == "" {
		return fmt.Errorf("invalid smtp host")
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid smtp port")
	}
	if s.Account == "" {
		return fmt.Errorf("invalid smtp account")
	}
	if s.Password == "" {
		return fmt.Errorf("invalid smtp password")
	}
	return nil
}

// Subscription declares a topic with its receivers, registered on boot so the
// station offline alerts work without any API call.
type Subscription struct {
	Topic string          `yaml:"topic"`
	To    []ReceiverEntry `yaml:"to"`
}

type ReceiverEntry struct {
	Type    string `yaml:"type"`
	Address string `yaml:"address"`
	Token   string `yaml:"token"`
}

func (r ReceiverEntry) Validate() error {
	if alert.NewReceiver(alert.BaseApi{Type: r.Type, Address: r.Address, Token: r.Token}) == nil {
		return fmt.Errorf("receiver type must in [email, dingTalk]")
	}
	if r.Address == "" {
		return fmt.Errorf("receiver address could not be empty")
	}
	return nil
}

type Config struct {
	Port          int            `yaml:"port"`
	Smtp          SmtpService    `yaml:"smtp"`
	Subscriptions []Subscription `yaml:"subscriptions"`
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port")
	}
	if err := c.Smtp.Validate(); err != nil {
		return err
	}
	for _, sub := range c.Subscriptions {
		if sub.Topic == "" {
			return fmt.Errorf("subscription topic could not be empty")
		}
		for _, r := range sub.To {
			if err := r.Validate(); err != nil {
				return err
			}
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
