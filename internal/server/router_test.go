package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipment-parser/internal/cache"
	"shipment-parser/internal/export"
	"shipment-parser/internal/handlers"
	"shipment-parser/internal/parser"
	"shipment-parser/internal/ratelimit"
)

const samplePaste = "新竹7431005481 打包後重量: 1.2 KG (1 個包裹)\n" +
	"2025-04-18 09:10:00 貨件已入庫，等待出貨。\n" +
	"1\n順豐速運 SF1234567890123\n包裹重量: 1.2KG\n" +
	"卡通异形浴室防滑垫家用洗手间吸水硅藻泥地垫卫生间厕所门口脚垫\n"

func setupTestServer(t *testing.T, apiKey string) *httptest.Server {
	t.Helper()

	logger := discardLogger()
	manager := cache.NewManager(false, time.Minute, logger)
	t.Cleanup(manager.Close)

	handler := NewRouter(Options{
		Parser: parser.New(&parser.Config{Logger: logger}),
		Cache:  manager,
		APIKey: apiKey,
		Logger: logger,
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestRouter_Health(t *testing.T) {
	server := setupTestServer(t, "")

	resp, err := server.Client().Get(server.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	var health handlers.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, []string{"table", "section", "marker"}, health.Strategies)
}

func TestRouter_ParseWorkflow(t *testing.T) {
	server := setupTestServer(t, "")
	client := server.Client()

	resp, err := client.Post(server.URL+"/api/parse", "text/plain; charset=utf-8", strings.NewReader(samplePaste))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed handlers.ParseResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.Len(t, parsed.Records, 1)
	assert.Equal(t, "順豐速運", parsed.Records[0].Courier)
	assert.Equal(t, "1 個包裹", parsed.Records[0].PackageCountLabel)

	// The export of the same paste is served from the cache.
	exp, err := client.Post(server.URL+"/api/export", "text/plain; charset=utf-8", strings.NewReader(samplePaste))
	require.NoError(t, err)
	defer exp.Body.Close()
	assert.Equal(t, http.StatusOK, exp.StatusCode)
	assert.Equal(t, export.ContentType, exp.Header.Get("Content-Type"))
}

func TestRouter_Errors(t *testing.T) {
	server := setupTestServer(t, "")
	client := server.Client()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "no records", method: "POST", path: "/api/parse", body: "no shipments here", status: http.StatusUnprocessableEntity},
		{name: "empty", method: "POST", path: "/api/parse", body: "", status: http.StatusBadRequest},
		{name: "wrong method", method: "GET", path: "/api/parse", status: http.StatusMethodNotAllowed},
		{name: "unknown route", method: "GET", path: "/api/shipments", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, server.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)

			resp, err := client.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRouter_APIKey(t *testing.T) {
	server := setupTestServer(t, "secret-key")
	client := server.Client()

	resp, err := client.Get(server.URL + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health stays open")

	resp, err = client.Post(server.URL+"/api/parse", "text/plain", strings.NewReader(samplePaste))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest("POST", server.URL+"/api/parse", strings.NewReader(samplePaste))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret-key")
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_RateLimit(t *testing.T) {
	logger := discardLogger()
	handler := NewRouter(Options{
		Parser:      parser.New(&parser.Config{Logger: logger}),
		RateLimiter: ratelimit.New(rateLimitConfig{interval: time.Hour}),
		Logger:      logger,
	})
	server := httptest.NewServer(handler)
	defer server.Close()
	client := server.Client()

	resp, err := client.Post(server.URL+"/api/parse", "text/plain", strings.NewReader(samplePaste))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Post(server.URL+"/api/export", "text/plain", strings.NewReader(samplePaste))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, err = client.Get(server.URL + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health is not limited")
}

func TestNew(t *testing.T) {
	srv := New("localhost:8080", http.NotFoundHandler())
	assert.Equal(t, "localhost:8080", srv.Addr)
	assert.Equal(t, 15*time.Second, srv.ReadTimeout)
}
