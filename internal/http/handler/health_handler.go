package handler

import (
	"net/http"

	"github.com/induskill/marketplace-api/internal/cache"
	"github.com/induskill/marketplace-api/internal/database"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	db     *gorm.DB
	cache  cache.Provider
	logger *zap.Logger
}

func NewHealthHandler(db *gorm.DB, cacheProvider cache.Provider, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, cache: cacheProvider, logger: logger}
}

// Live godoc
// @Summary Liveness probe
// @Tags Health
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /health [get]
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Database godoc
// @Summary Database readiness with pool statistics
// @Tags Health
// @Produce json
// @Success 200 {object} database.Stats
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *HealthHandler) Database(w http.ResponseWriter, r *http.Request) {
	stats, err := database.HealthCheckWithStats(r.Context(), h.db)
	if err != nil {
		h.logger.Error("database health check failed", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unhealthy",
			"error":   err.Error(),
			"service": "database",
		})
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// Ready godoc
// @Summary Combined readiness probe
// @Description Checks the database and, when enabled, the catalog cache
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]interface{})
	healthy := true

	if err := database.HealthCheck(r.Context(), h.db); err != nil {
		h.logger.Error("database health check failed", zap.Error(err))
		checks["database"] = map[string]string{"status": "unhealthy", "error": err.Error()}
		healthy = false
	} else {
		checks["database"] = map[string]string{"status": "healthy"}
	}

	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			// the catalog still works without the cache
			h.logger.Warn("cache health check failed", zap.Error(err))
			checks["cache"] = map[string]string{"status": "degraded", "error": err.Error()}
		} else {
			checks["cache"] = map[string]string{"status": "healthy"}
		}
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	respondJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}
