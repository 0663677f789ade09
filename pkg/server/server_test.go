package server

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/ramstk-analysis/pkg/health"
	"github.com/dd0wney/ramstk-analysis/pkg/metrics"
	tlsconfig "github.com/dd0wney/ramstk-analysis/pkg/tls"
)

func testRoutes(t *testing.T) (Routes, *metrics.Registry) {
	t.Helper()
	reg := metrics.NewRegistry()
	hc := health.NewHealthChecker()
	hc.RegisterCheck("tree", health.TreeCheck(func() int { return 5 }))
	hc.RegisterReadinessCheck("tree", health.TreeCheck(func() int { return 5 }))

	graphqlHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":{"health":"ok"}}`)
	})
	return Routes{GraphQL: graphqlHandler, Health: hc, Metrics: reg}, reg
}

func TestRouterRoutes(t *testing.T) {
	routes, _ := testRoutes(t)
	router := NewRouter(routes)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodPost, "/graphql", http.StatusOK},
		{http.MethodGet, "/graphql", http.StatusMethodNotAllowed},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/nowhere", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}")))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMetricsEndpointExposesRequests(t *testing.T) {
	routes, reg := testRoutes(t)
	router := NewRouter(routes)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("{}")))
	require.Equal(t, http.StatusOK, rec.Code)

	var m dto.Metric
	require.NoError(t, reg.HTTPRequestsTotal.WithLabelValues("POST", "/graphql", "200").Write(&m))
	assert.Equal(t, 1.0, m.GetCounter().GetValue())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "ramstk_http_requests_total")
}

func TestRecoveryMiddleware(t *testing.T) {
	router := NewRouter(Routes{GraphQL: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBodySizeLimit(t *testing.T) {
	routes, _ := testRoutes(t)
	router := NewRouter(routes)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(strings.Repeat("x", maxBodyBytes+1)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestGracefulServerStopsOnContextCancel(t *testing.T) {
	routes, _ := testRoutes(t)
	gs := NewGracefulServer("127.0.0.1:0", NewRouter(routes), nil)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Serve(ctx, l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, gs.IsShuttingDown())
}

func TestGracefulServerServesTLS(t *testing.T) {
	c := tlsconfig.DefaultConfig()
	c.Enabled = true
	tlsCfg, err := tlsconfig.LoadTLSConfig(c)
	require.NoError(t, err)

	routes, _ := testRoutes(t)
	gs := NewGracefulServer("127.0.0.1:0", NewRouter(routes), nil)
	gs.SetTLSConfig(tlsCfg)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Serve(ctx, l) }()

	client := &http.Client{Transport: &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}}
	resp, err := client.Get("https://" + l.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, resp.TLS)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestGracefulServerShutdownIdempotent(t *testing.T) {
	gs := NewGracefulServer("127.0.0.1:0", http.NotFoundHandler(), nil)
	assert.False(t, gs.IsShuttingDown())
	assert.NoError(t, gs.Shutdown(time.Second))
	assert.NoError(t, gs.Shutdown(time.Second))
	assert.True(t, gs.IsShuttingDown())
}

func TestReloadConfig(t *testing.T) {
	gs := NewGracefulServer(":0", http.NotFoundHandler(), nil)

	// no reload function is not an error
	assert.NoError(t, gs.ReloadConfig())

	calls := 0
	gs.SetConfigReloadFunc(func() error { calls++; return nil })
	assert.NoError(t, gs.ReloadConfig())
	assert.Equal(t, 1, calls)

	gs.SetConfigReloadFunc(func() error { return errors.New("bad config") })
	assert.EqualError(t, gs.ReloadConfig(), "bad config")
}
