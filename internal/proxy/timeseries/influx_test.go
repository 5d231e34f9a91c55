package timeseries

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbos/internal/proxy"
)

func TestInfluxRecordWritesLineProtocol(t *testing.T) {
	var body, query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v2/write" {
			raw, _ := io.ReadAll(r.Body)
			body = string(raw)
			query = r.URL.RawQuery
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := influxdb2.NewClient(srv.URL, "test-token")
	defer client.Close()
	rec := NewInflux(client.WriteAPIBlocking("sbos", "points"))

	at := time.Unix(1_700_000_000, 0).UTC()
	err := rec.Record(context.Background(), proxy.Sample{Label: "F1_ZoneA_Cool_SP", Value: 23.5, Time: at, Source: proxy.SourceWrite})
	require.NoError(t, err)

	assert.Contains(t, query, "bucket=points")
	assert.Contains(t, body, "setpoint,point_label=F1_ZoneA_Cool_SP,source=write value=23.5 1700000000000000000")
}

func TestInfluxRecordSurfacesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"code":"unauthorized","message":"bad token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := influxdb2.NewClient(srv.URL, "bad")
	defer client.Close()
	rec := NewInflux(client.WriteAPIBlocking("sbos", "points"))
	err := rec.Record(context.Background(), proxy.Sample{Label: "A", Value: 1, Time: time.Now()})
	assert.Error(t, err)
}
