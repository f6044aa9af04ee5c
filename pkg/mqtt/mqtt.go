package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectTimeout    = 10 * time.Second
	disconnectQuiesce = 250 // milliseconds, passed to paho
)

type Handler func(topic string, payload []byte)

type Connector struct {
	Address string
	client  paho.Client
}

func NewConnector(account Account) (*Connector, error) {
	opts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s", account.Address)).
		SetClientID(account.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)
	if account.Username != "" {
		opts.SetUsername(account.Username)
		opts.SetPassword(account.Password)
	}

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect failed: %s", token.Error())
	}
	return &Connector{Address: account.Address, client: client}, nil
}

func (c *Connector) Subscribe(topic string, qos byte, handler Handler) error {
	token := c.client.Subscribe(topic, qos, func(_ paho.Client, msg paho.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt subscribe %s failed: %s", topic, token.Error())
	}
	return nil
}

func (c *Connector) Publish(topic string, qos byte, payload []byte) error {
	token := c.client.Publish(topic, qos, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt publish %s failed: %s", topic, token.Error())
	}
	return nil
}

func (c *Connector) Close() {
	c.client.Disconnect(disconnectQuiesce)
}
