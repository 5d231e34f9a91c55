package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "10.0.0.7, 172.16.0.1"}, "127.0.0.1:4000", "10.0.0.7"},
		{"real ip", map[string]string{"X-Real-IP": " 10.0.0.8 "}, "127.0.0.1:4000", "10.0.0.8"},
		{"ipv6 socket", nil, "[::1]:4000", "::1"},
		{"bare socket", nil, "bms-gateway", "bms-gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/health", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(r))
		})
	}
}

func TestClientMetadataStoresIP(t *testing.T) {
	var got string
	h := ClientMetadata(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = GetClientIP(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/read", nil)
	r.RemoteAddr = "192.168.4.20:5555"
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, "192.168.4.20", got)
}
