package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"shipment-parser/internal/parser"
)

// CachedResult represents an in-memory cached parse result with expiry
type CachedResult struct {
	Result    *parser.Result
	ExpiresAt time.Time
}

// IsExpired checks if the cached result has expired
func (c *CachedResult) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// Manager keeps recent parse results keyed by the pasted text, so that a
// client re-submitting the same paste (parse, then export) runs the
// pipeline once.
type Manager struct {
	memory   sync.Map // map[string]*CachedResult
	disabled bool
	ttl      time.Duration
	logger   *slog.Logger

	// Cleanup goroutine control
	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a new cache manager
func NewManager(disabled bool, ttl time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	manager := &Manager{
		disabled: disabled,
		ttl:      ttl,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}

	if !disabled {
		go manager.cleanupLoop()
	}

	return manager
}

// Key returns the cache key for a pasted text.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Get retrieves a cached result; the second return is false on a miss
func (m *Manager) Get(key string) (*parser.Result, bool) {
	if m.disabled {
		return nil, false
	}

	value, ok := m.memory.Load(key)
	if !ok {
		return nil, false
	}
	cached := value.(*CachedResult)
	if cached.IsExpired() {
		m.memory.Delete(key)
		return nil, false
	}
	return cached.Result, true
}

// Set stores a result
func (m *Manager) Set(key string, result *parser.Result) {
	if m.disabled {
		return
	}
	m.memory.Store(key, &CachedResult{
		Result:    result,
		ExpiresAt: time.Now().Add(m.ttl),
	})
}

// Delete removes a cached result
func (m *Manager) Delete(key string) {
	m.memory.Delete(key)
}

// IsEnabled returns true if caching is enabled
func (m *Manager) IsEnabled() bool {
	return !m.disabled
}

// GetTTL returns the cache TTL duration
func (m *Manager) GetTTL() time.Duration {
	return m.ttl
}

// cleanupLoop runs periodically to clean up expired entries
func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

// cleanup removes expired entries
func (m *Manager) cleanup() int {
	removed := 0
	m.memory.Range(func(key, value interface{}) bool {
		if value.(*CachedResult).IsExpired() {
			m.memory.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		m.logger.Debug("cleaned up expired cache entries", "count", removed)
	}
	return removed
}

// GetStats returns cache statistics
func (m *Manager) GetStats() Stats {
	stats := Stats{
		Disabled: m.disabled,
		TTL:      m.ttl.String(),
	}

	m.memory.Range(func(key, value interface{}) bool {
		stats.Total++
		if value.(*CachedResult).IsExpired() {
			stats.Expired++
		}
		return true
	})

	return stats
}

// Close shuts down the cleanup goroutine
func (m *Manager) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Stats represents cache statistics
type Stats struct {
	Disabled bool   `json:"disabled"`
	TTL      string `json:"ttl"`
	Total    int    `json:"total"`
	Expired  int    `json:"expired"`
}
