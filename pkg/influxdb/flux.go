package influxdb

import (
	"fmt"
	"strings"
	"time"

	"station-monitor/pkg/validator"
)

// Aggregate : window aggregation with interval and aggregate function
type Aggregate struct {
	Enable      bool   `json:"enable"`
	Every       string `json:"every"`
	Fn          string `json:"fn"`
	CreateEmpty bool   `json:"create_empty"`
}

func (a Aggregate) Validate() error {
	if !a.Enable {
		return nil
	}
	if a.Fn != "mean" && a.Fn != "median" && a.Fn != "max" && a.Fn != "min" {
		return fmt.Errorf("fn must in [mean, median, max, min]")
	}
	if d, err := time.ParseDuration(a.Every); err != nil {
		return err
	} else {
		now := time.Now()
		if !now.Add(d).After(now) {
			return fmt.Errorf("every must be positive time duration")
		}
	}
	return nil
}

// Range : query with time range.
// start/stop accept relative durations (-24h), absolute utc datetimes
// (2021-10-02T15:04:05Z) or now().
type Range struct {
	Start string `json:"start"`
	Stop  string `json:"stop"`
}

func (r Range) Validate() error {
	if r.Start == "" || r.Stop == "" {
		return fmt.Errorf("range parse failed: could not be empty string")
	}
	start, err := validator.CheckTimeBeforeNow(r.Start)
	if err != nil {
		return fmt.Errorf("range (start) parse failed: %s", err.Error())
	}
	stop, err := validator.CheckTimeBeforeNow(r.Stop)
	if err != nil {
		return fmt.Errorf("range (stop) parse failed: %s", err.Error())
	}
	if !start.Before(stop) {
		return fmt.Errorf("range parse failed: start should before stop")
	}
	return nil
}

const (
	bucketSnippet    = "from(bucket: \"%s\")"
	timeRangeSnippet = " |> range(start: %s, stop: %s)"
	filterSnippet    = " |> filter(fn: (r) => %s)"
	aggregateSnippet = " |> aggregateWindow(every: %s, fn: %s, createEmpty: %v)"
)

// SeriesQuery builds the flux script for one station's sensor series.
type SeriesQuery struct {
	Bucket      string    `json:"bucket"`
	Measurement string    `json:"measurement"`
	StationID   string    `json:"station_id"`
	Fields      []string  `json:"fields"`
	Aggregate   Aggregate `json:"aggregate"`
	Range       Range     `json:"range"`
}

func (q SeriesQuery) Validate() error {
	if q.Bucket == "" {
		return fmt.Errorf("bucket could not be empty")
	}
	if q.Measurement == "" {
		return fmt.Errorf("measurement could not be empty")
	}
	if q.StationID == "" {
		return fmt.Errorf("station_id could not be empty")
	}
	if len(q.Fields) == 0 {
		return fmt.Errorf("must provide at least one field")
	}
	if err := q.Aggregate.Validate(); err != nil {
		return err
	}
	return q.Range.Validate()
}

func (q SeriesQuery) TransToFlux() string {
	var scripts []string
	scripts = append(scripts, fmt.Sprintf(bucketSnippet, q.Bucket))
	scripts = append(scripts, fmt.Sprintf(timeRangeSnippet, q.Range.Start, q.Range.Stop))
	scripts = append(scripts, fmt.Sprintf(filterSnippet,
		fmt.Sprintf("r._measurement == \"%s\"", q.Measurement)))

	var fields []string
	for _, f := range q.Fields {
		fields = append(fields, fmt.Sprintf("r._field == \"%s\"", f))
	}
	scripts = append(scripts, fmt.Sprintf(filterSnippet, strings.Join(fields, " or ")))
	scripts = append(scripts, fmt.Sprintf(filterSnippet,
		fmt.Sprintf("r.station_id == \"%s\"", q.StationID)))

	if q.Aggregate.Enable {
		scripts = append(scripts, fmt.Sprintf(aggregateSnippet,
			q.Aggregate.Every, q.Aggregate.Fn, q.Aggregate.CreateEmpty))
	}
	return strings.Join(scripts, "")
}
