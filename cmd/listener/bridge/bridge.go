// Package bridge subscribes to the device request topics and relays each
// message through the shared protocol handler, publishing the response on
// the derived response topic.
package bridge

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"station-monitor/cmd/controller/protocol"
	"station-monitor/pkg/concurrency"
	"station-monitor/pkg/mqtt"
)

// request topics fixed by the device firmware
const (
	HeartbeatRequestTopic = "iot/heartBeat/request"
	ConfigRequestTopic    = "iot/config/request"
	DataRequestTopic      = "iot/data/request"
)

const qos = 1

// ResponseTopic derives the publish topic from a request topic:
// iot/heartBeat/request -> iot/heartBeat/response.
func ResponseTopic(requestTopic string) string {
	return strings.Replace(requestTopic, "/request", "/response", 1)
}

type Bridge struct {
	conn    *mqtt.Connector
	handler *protocol.Handler

	Processed   concurrency.Int64
	Rejected    concurrency.Int64
	LastMessage concurrency.Time
}

func New(conn *mqtt.Connector, handler *protocol.Handler) *Bridge {
	return &Bridge{conn: conn, handler: handler}
}

// Start subscribes the three request topics. Message handling itself runs in
// the paho callback, one message at a time.
func (b *Bridge) Start() error {
	if err := b.conn.Subscribe(HeartbeatRequestTopic, qos, b.onHeartbeat); err != nil {
		return err
	}
	if err := b.conn.Subscribe(ConfigRequestTopic, qos, b.onConfigAck); err != nil {
		return err
	}
	if err := b.conn.Subscribe(DataRequestTopic, qos, b.onDataUpload); err != nil {
		return err
	}
	logrus.Infof("listening on %s, %s, %s",
		HeartbeatRequestTopic, ConfigRequestTopic, DataRequestTopic)
	return nil
}

func (b *Bridge) onHeartbeat(topic string, payload []byte) {
	b.LastMessage.Set(time.Now())
	var req protocol.HeartbeatRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		b.reject(topic, err)
		return
	}
	resp, err := b.handler.Heartbeat(topic, req)
	if err != nil {
		b.reject(topic, err)
		return
	}
	b.publish(topic, resp)
}

func (b *Bridge) onConfigAck(topic string, payload []byte) {
	b.LastMessage.Set(time.Now())
	var req protocol.ConfigAckRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		b.reject(topic, err)
		return
	}
	resp, err := b.handler.ConfigAck(topic, req)
	if err != nil {
		b.reject(topic, err)
		return
	}
	b.publish(topic, resp)
}

func (b *Bridge) onDataUpload(topic string, payload []byte) {
	b.LastMessage.Set(time.Now())
	var req protocol.DataUploadRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		b.reject(topic, err)
		return
	}
	resp, err := b.handler.DataUpload(topic, req)
	if err != nil {
		b.reject(topic, err)
		return
	}
	b.publish(topic, resp)
}

// reject drops the message without publishing anything; the device retries
// on its own schedule.
func (b *Bridge) reject(topic string, err error) {
	b.Rejected.Add(1)
	logrus.Warnf("message on %s rejected: %s", topic, err.Error())
}

func (b *Bridge) publish(requestTopic string, response interface{}) {
	payload, err := json.Marshal(response)
	if err != nil {
		logrus.Errorf("response marshal failed: %s", err.Error())
		return
	}
	if err := b.conn.Publish(ResponseTopic(requestTopic), qos, payload); err != nil {
		logrus.Errorf("response publish failed: %s", err.Error())
		return
	}
	b.Processed.Add(1)
}

// LogStats writes one stats line, called periodically by main.
func (b *Bridge) LogStats() {
	last := "never"
	if t := b.LastMessage.Get(); !t.IsZero() {
		last = t.Format("2006-01-02 15:04:05")
	}
	logrus.Infof("processed=%d rejected=%d last_message=%s",
		b.Processed.Get(), b.Rejected.Get(), last)
}
