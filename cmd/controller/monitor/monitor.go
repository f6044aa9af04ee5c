// Package monitor runs the background sweep that detects silent stations and
// expires stale pending flags.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"station-monitor/cmd/controller/model"
)

// minOfflineAfter floors the silence threshold so very short collection
// intervals do not flap stations offline.
const minOfflineAfter = 10 * time.Minute

// Notifier pushes an operator alert. Push failures only log, the sweep keeps
// going.
type Notifier interface {
	Notify(subject, content string) error
}

type Monitor struct {
	db            *gorm.DB
	notifier      Notifier // may be nil
	checkInterval time.Duration
	pendingTTL    time.Duration
}

func New(db *gorm.DB, notifier Notifier, checkInterval, pendingTTL time.Duration) *Monitor {
	return &Monitor{
		db:            db,
		notifier:      notifier,
		checkInterval: checkInterval,
		pendingTTL:    pendingTTL,
	}
}

// OfflineThreshold is the silence duration after which a station counts as
// offline: twice its collection interval, floored at minOfflineAfter.
func OfflineThreshold(dataIntervalMinutes int) time.Duration {
	d := 2 * time.Duration(dataIntervalMinutes) * time.Minute
	if d < minOfflineAfter {
		return minOfflineAfter
	}
	return d
}

// Start blocks until ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()
	logrus.Infof("monitor started, check interval %s pending ttl %s", m.checkInterval, m.pendingTTL)
	for {
		select {
		case <-ctx.Done():
			logrus.Info("monitor stopped")
			return
		case <-ticker.C:
			m.sweepOffline(time.Now())
			m.expirePending(time.Now())
		}
	}
}

type onlineRow struct {
	StationID    string
	Name         string
	DataInterval int
	LastSeen     *time.Time
}

const onlineQuery = "select s.station_id, s.name, dc.data_interval, ds.last_seen " +
	"from stations s " +
	"join device_statuses ds on s.station_id = ds.station_id " +
	"join device_configs dc on s.station_id = dc.station_id " +
	"where s.active=1 and ds.status=?"

// sweepOffline transitions silent stations to offline and notifies.
func (m *Monitor) sweepOffline(now time.Time) {
	var rows []onlineRow
	if err := m.db.Raw(onlineQuery, model.StatusOnline).Find(&rows).Error; err != nil {
		logrus.Errorf("offline sweep query failed: %s", err.Error())
		return
	}
	for _, row := range rows {
		if row.LastSeen != nil && now.Sub(*row.LastSeen) < OfflineThreshold(row.DataInterval) {
			continue
		}
		err := m.db.Model(&model.DeviceStatus{}).Where("station_id=?", row.StationID).
			Update("status", model.StatusOffline).Error
		if err != nil {
			logrus.Errorf("offline transition failed for %s: %s", row.StationID, err.Error())
			continue
		}
		logrus.Warnf("station %s marked offline", row.StationID)
		m.notify(row, now)
	}
}

func (m *Monitor) notify(row onlineRow, now time.Time) {
	if m.notifier == nil {
		return
	}
	lastSeen := "never"
	if row.LastSeen != nil {
		lastSeen = row.LastSeen.Format("2006-01-02 15:04:05")
	}
	subject := fmt.Sprintf("station %s offline", row.StationID)
	content := fmt.Sprintf("station %s (%s) has not reported since %s, marked offline at %s",
		row.StationID, row.Name, lastSeen, now.Format("2006-01-02 15:04:05"))
	if err := m.notifier.Notify(subject, content); err != nil {
		logrus.Errorf("offline alert push failed for %s: %s", row.StationID, err.Error())
	}
}

// expirePending clears pending flags the device never picked up within the
// ttl, so operators do not wait on a request forever.
func (m *Monitor) expirePending(now time.Time) {
	cutoff := now.Add(-m.pendingTTL)

	res := m.db.Model(&model.DeviceStatus{}).
		Where("request_update=? and data_requested_at is not null and data_requested_at< ?", true, cutoff).
		Updates(map[string]interface{}{"request_update": false, "data_requested_at": nil})
	if res.Error != nil {
		logrus.Errorf("data request expiry failed: %s", res.Error.Error())
	} else if res.RowsAffected > 0 {
		logrus.Warnf("expired %d stale data requests", res.RowsAffected)
	}

	res = m.db.Model(&model.DeviceConfig{}).
		Where("configuration_update=? and config_requested_at is not null and config_requested_at< ?", true, cutoff).
		Updates(map[string]interface{}{"configuration_update": false, "config_requested_at": nil})
	if res.Error != nil {
		logrus.Errorf("config request expiry failed: %s", res.Error.Error())
	} else if res.RowsAffected > 0 {
		logrus.Warnf("expired %d stale config requests", res.RowsAffected)
	}
}
