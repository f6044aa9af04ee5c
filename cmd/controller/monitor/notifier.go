package monitor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// AlertClient pushes alerts to the alert engine service over its push API.
type AlertClient struct {
	Address string // base url, e.g. http://127.0.0.1:5050
	Topic   string
	client  *http.Client
}

func NewAlertClient(address, topic string) *AlertClient {
	return &AlertClient{
		Address: address,
		Topic:   topic,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *AlertClient) Notify(subject, content string) error {
	type stringMessage struct {
		Subject string `json:"subject"`
		Msg     string `json:"msg"`
	}
	body, err := json.Marshal(map[string]interface{}{
		"topic": a.Topic,
		"msg":   stringMessage{Subject: subject, Msg: content},
	})
	if err != nil {
		return err
	}
	resp, err := a.client.Post(a.Address+"/api/alert", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("alert push failed with code %d", resp.StatusCode)
	}
	return nil
}
