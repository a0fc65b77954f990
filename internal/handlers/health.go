package handlers

import (
	"encoding/json"
	"net/http"

	"shipment-parser/internal/cache"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	strategies []string
	cache      *cache.Manager
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(strategies []string, cacheManager *cache.Manager) *HealthHandler {
	return &HealthHandler{strategies: strategies, cache: cacheManager}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string       `json:"status"`
	Strategies []string     `json:"strategies"`
	Cache      *cache.Stats `json:"cache,omitempty"`
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:     "healthy",
		Strategies: h.strategies,
	}
	if h.cache != nil {
		stats := h.cache.GetStats()
		response.Cache = &stats
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
