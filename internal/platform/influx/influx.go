// Package influx builds the InfluxDB client used for setpoint time series.
package influx

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// Config selects the InfluxDB target. An empty URL disables InfluxDB.
type Config struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// Client pairs the InfluxDB client with a blocking write API for one bucket.
type Client struct {
	influxdb2.Client
	Writer api.WriteAPIBlocking
}

// New connects and checks server health. Returns nil when URL is empty.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("influx health: %w", err)
	}
	if health.Status != "pass" {
		client.Close()
		return nil, fmt.Errorf("influx unhealthy: %s", health.Status)
	}
	return &Client{Client: client, Writer: client.WriteAPIBlocking(cfg.Org, cfg.Bucket)}, nil
}
