package influxdb

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"golang.org/x/sync/semaphore"
)

type Connector struct {
	Address string
	Bucket  string
	Token   string
	Org     string
	client  influxdb2.Client
	sema    *semaphore.Weighted // bound concurrent queries
}

func NewConnector(address, bucket, token, org string) (*Connector, error) {
	return &Connector{
		Address: address,
		Bucket:  bucket,
		Token:   token,
		Org:     org,
		client:  influxdb2.NewClient(address, token),
		sema:    semaphore.NewWeighted(10),
	}, nil
}

func (c *Connector) Close() {
	c.client.Close()
}

func (c *Connector) acquire() {
	_ = c.sema.Acquire(context.Background(), 1)
}

func (c *Connector) release() {
	c.sema.Release(1)
}

func (c *Connector) WritePoint(p *write.Point) {
	writeApi := c.client.WriteAPI(c.Org, c.Bucket)
	writeApi.WritePoint(p)
	writeApi.Flush()
}

func (c *Connector) QueryRaw(script string, ctx context.Context) (*api.QueryTableResult, error) {
	c.acquire()
	defer c.release()
	queryAPI := c.client.QueryAPI(c.Org)
	result, err := queryAPI.Query(ctx, script)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// QuerySeries runs a flux script and groups the result rows by field name.
// Time axis is taken from the first table; gin returns [] instead of null
// because the slices are created eagerly.
func (c *Connector) QuerySeries(script string, ctx context.Context) (*TimeSeries, error) {
	result, err := c.QueryRaw(script, ctx)
	if err != nil {
		return nil, err
	}

	series := &TimeSeries{
		Time:    make([]time.Time, 0),
		Columns: make([]string, 0),
		Value:   make(map[string][]*float64),
	}
	values := make([]*float64, 0)
	field := ""

	flush := func() {
		if field == "" {
			return
		}
		series.Columns = append(series.Columns, field)
		series.Value[field] = values
		values = make([]*float64, 0)
	}

	for result.Next() {
		if result.TableChanged() {
			flush()
			if f, ok := result.Record().ValueByKey("_field").(string); ok {
				field = f
			} else {
				field = fmt.Sprintf("value%d", len(series.Columns))
			}
		}
		if result.TablePosition() == 0 {
			series.Time = append(series.Time, result.Record().Time())
		}
		v := result.Record().ValueByKey("_value")
		switch value := v.(type) {
		case float64:
			_v := value
			values = append(values, &_v)
		case float32:
			_v := float64(value)
			values = append(values, &_v)
		case int64:
			_v := float64(value)
			values = append(values, &_v)
		default:
			if v == nil {
				values = append(values, nil)
			} else {
				return nil, fmt.Errorf("invalid value type")
			}
		}
	}
	flush()

	if result.Err() != nil {
		return nil, fmt.Errorf("query parsing error: %s", result.Err().Error())
	}
	return series, nil
}
