package alert

import (
	"fmt"
	"sync"
	"time"
)

// Subscribe fans one alert topic out to its receivers. Held in memory, the
// push API recreates subscriptions after a restart.
type Subscribe struct {
	Topic         string     `json:"topic"`
	Receiver      []Receiver `json:"receiver"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Triggered     int        `json:"triggered"`
	LastTriggered time.Time  `json:"last_triggered"`
	rw            sync.RWMutex
}

func NewSubscribe(topic string, receivers []Receiver) *Subscribe {
	now := time.Now()
	return &Subscribe{
		Topic:     topic,
		Receiver:  receivers,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Send pushes the message to every receiver, counting failures instead of
// stopping at the first one.
func (s *Subscribe) Send(message Message) error {
	s.rw.Lock()
	defer s.rw.Unlock()
	s.Triggered++
	s.LastTriggered = time.Now()
	var failed int
	for _, r := range s.Receiver {
		if err := r.Message(message); err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("subscribe %s message push failed %d", s.Topic, failed)
	}
	return nil
}

func (s *Subscribe) AddReceiver(receiver Receiver) error {
	s.rw.Lock()
	defer s.rw.Unlock()
	for _, r := range s.Receiver {
		if r.Id() == receiver.Id() {
			return fmt.Errorf("receiver %s already existed", r.Id())
		}
	}
	s.Receiver = append(s.Receiver, receiver)
	s.UpdatedAt = time.Now()
	return nil
}

func (s *Subscribe) DeleteReceiver(id string) error {
	s.rw.Lock()
	defer s.rw.Unlock()
	for i, r := range s.Receiver {
		if r.Id() == id {
			s.Receiver = append(s.Receiver[:i], s.Receiver[i+1:]...)
			s.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("receiver %s does not exist", id)
}

func (s *Subscribe) UpdateReceiver(receiver []Receiver) {
	s.rw.Lock()
	defer s.rw.Unlock()
	s.Receiver = receiver
	s.UpdatedAt = time.Now()
}
