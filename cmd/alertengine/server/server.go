// Package server exposes the alert push and subscription API consumed by the
// station monitor sweep.
package server

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"station-monitor/cmd/alertengine/alert"
)

type Server struct {
	port       int
	subscribes map[string]*alert.Subscribe
	rw         sync.RWMutex
	exit       chan error
}

func NewServer(port int, exit chan error) *Server {
	return &Server{
		port:       port,
		subscribes: make(map[string]*alert.Subscribe),
		exit:       exit,
	}
}

// Seed registers a subscription before the API is up, used for the
// config-declared default receivers.
func (s *Server) Seed(topic string, receivers []alert.Receiver) {
	s.rw.Lock()
	defer s.rw.Unlock()
	s.subscribes[topic] = alert.NewSubscribe(topic, receivers)
}

func (s *Server) Start() {
	r := mux.NewRouter()
	r.Use(loggingMiddleware)

	api := r.PathPrefix(BasePath).Subrouter()
	api.HandleFunc(AlertPath, s.push).Methods(http.MethodPost)
	api.HandleFunc(SubscribePath, s.createSubscribe).Methods(http.MethodPost)
	api.HandleFunc(SubscribePath, s.getSubscribe).Methods(http.MethodGet)
	api.HandleFunc(SubscribePath, s.updateSubscribe).Methods(http.MethodPatch)
	api.HandleFunc(SubscribePath, s.deleteSubscribe).Methods(http.MethodDelete)

	addr := fmt.Sprintf(":%d", s.port)
	logrus.Infof("start listening on port %d", s.port)
	if err := http.ListenAndServe(addr, r); err != nil {
		s.exit <- err
	}
}

func (s *Server) Stop() {
}

func writeJson(w http.ResponseWriter, data interface{}) error {
	content, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err = w.Write(content); err != nil {
		return err
	}
	return nil
}

func write(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	_ = writeJson(w, data)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		logrus.Infof("from=%s req=%s method=%s", req.RemoteAddr, req.RequestURI, req.Method)
		next.ServeHTTP(w, req)
	})
}

// StringMessage is the wire shape the monitor posts.
type StringMessage struct {
	Subject string `json:"subject"`
	Msg     string `json:"msg"`
}

func (s StringMessage) Title() string {
	return s.Subject
}

func (s StringMessage) Content() string {
	return s.Msg
}

func (s *Server) push(resp http.ResponseWriter, req *http.Request) {
	type requestBody struct {
		Topic string        `json:"topic"`
		Msg   StringMessage `json:"msg"`
	}
	data := requestBody{}
	body, _ := ioutil.ReadAll(req.Body)
	if err := json.Unmarshal(body, &data); err != nil {
		write(resp, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.sendMessage(data.Topic, data.Msg); err != nil {
		write(resp, http.StatusInternalServerError, map[string]interface{}{"error": "push message failed: " + err.Error()})
	} else {
		write(resp, http.StatusOK, map[string]interface{}{"msg": "write success"})
	}
}

func (s *Server) createSubscribe(resp http.ResponseWriter, req *http.Request) {
	type requestBody struct {
		Topic string          `json:"topic"`
		To    []alert.BaseApi `json:"to"`
	}
	data := requestBody{}
	body, _ := ioutil.ReadAll(req.Body)
	if err := json.Unmarshal(body, &data); err != nil {
		write(resp, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
		return
	}
	s.rw.Lock()
	defer s.rw.Unlock()
	if _, ok := s.subscribes[data.Topic]; ok {
		write(resp, http.StatusBadRequest, map[string]interface{}{"error": "topic already existed"})
		return
	}
	var rs []alert.Receiver
	for _, r := range data.To {
		temp := alert.NewReceiver(r)
		if temp == nil {
			write(resp, http.StatusBadRequest, map[string]interface{}{"error": "type not match"})
			return
		}
		rs = append(rs, temp)
	}
	s.subscribes[data.Topic] = alert.NewSubscribe(data.Topic, rs)
	write(resp, http.StatusOK, map[string]interface{}{"msg": "create success"})
}

func (s *Server) updateSubscribe(resp http.ResponseWriter, req *http.Request) {
	topic := req.URL.Query().Get("topic")
	if topic == "" {
		write(resp, http.StatusBadRequest, map[string]interface{}{"error": "topic could not be empty"})
		return
	}

	type requestBody struct {
		To []alert.BaseApi `json:"to"`
	}
	data := requestBody{}
	body, _ := ioutil.ReadAll(req.Body)
	if err := json.Unmarshal(body, &data); err != nil {
		write(resp, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
		return
	}
	s.rw.RLock()
	sub, ok := s.subscribes[topic]
	s.rw.RUnlock()
	if !ok {
		write(resp, http.StatusBadRequest, map[string]interface{}{"error": "topic not exists"})
		return
	}
	var rs []alert.Receiver
	for _, r := range data.To {
		temp := alert.NewReceiver(r)
		if temp == nil {
			write(resp, http.StatusBadRequest, map[string]interface{}{"error": "type not match"})
			return
		}
		rs = append(rs, temp)
	}
	sub.UpdateReceiver(rs)
	write(resp, http.StatusOK, map[string]interface{}{"msg": "update success"})
}

func (s *Server) getSubscribe(resp http.ResponseWriter, req *http.Request) {
	type response struct {
		Msg  string             `json:"msg"`
		Data []*alert.Subscribe `json:"data"`
	}
	data := response{}
	s.rw.RLock()
	defer s.rw.RUnlock()
	for _, sub := range s.subscribes {
		data.Data = append(data.Data, sub)
	}
	write(resp, http.StatusOK, data)
}

func (s *Server) deleteSubscribe(resp http.ResponseWriter, req *http.Request) {
	topic := req.URL.Query().Get("topic")
	s.rw.Lock()
	defer s.rw.Unlock()
	if _, ok := s.subscribes[topic]; !ok {
		write(resp, http.StatusBadRequest, map[string]interface{}{"error": "topic not exists"})
	} else {
		delete(s.subscribes, topic)
		write(resp, http.StatusOK, map[string]interface{}{"msg": "delete success"})
	}
}

func (s *Server) sendMessage(topic string, message alert.Message) error {
	s.rw.RLock()
	sub, ok := s.subscribes[topic]
	s.rw.RUnlock()
	if !ok {
		return nil
	}
	return sub.Send(message)
}
