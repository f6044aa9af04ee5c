package influxdb

import "time"

type TimeSeries struct {
	Time    []time.Time           `json:"time"`
	Columns []string              `json:"columns"`
	Value   map[string][]*float64 `json:"value"`
}
