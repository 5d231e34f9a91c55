package timeseries

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"sbos/internal/proxy"
)

// Measurement is the InfluxDB measurement for setpoint samples.
const Measurement = "setpoint"

// Influx writes samples synchronously to an InfluxDB bucket.
type Influx struct {
	writeAPI api.WriteAPIBlocking
}

func NewInflux(writeAPI api.WriteAPIBlocking) *Influx {
	return &Influx{writeAPI: writeAPI}
}

func (i *Influx) Record(ctx context.Context, s proxy.Sample) error {
	p := influxdb2.NewPointWithMeasurement(Measurement).
		AddTag("point_label", s.Label).
		AddTag("source", s.Source).
		AddField("value", s.Value).
		SetTime(s.Time)
	if err := i.writeAPI.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("influx write: %w", err)
	}
	return nil
}
