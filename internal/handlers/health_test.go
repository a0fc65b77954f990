package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipment-parser/internal/cache"
)

func TestHealthCheck(t *testing.T) {
	t.Run("WithCache", func(t *testing.T) {
		manager := cache.NewManager(false, time.Minute, nil)
		defer manager.Close()

		handler := NewHealthHandler([]string{"table", "section", "marker"}, manager)

		req := httptest.NewRequest("GET", "/api/health", nil)
		w := httptest.NewRecorder()

		handler.HealthCheck(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var response HealthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, []string{"table", "section", "marker"}, response.Strategies)
		require.NotNil(t, response.Cache)
		assert.Equal(t, "1m0s", response.Cache.TTL)
	})

	t.Run("WithoutCache", func(t *testing.T) {
		handler := NewHealthHandler(nil, nil)

		req := httptest.NewRequest("GET", "/api/health", nil)
		w := httptest.NewRecorder()

		handler.HealthCheck(w, req)

		var response HealthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Nil(t, response.Cache)
	})
}
