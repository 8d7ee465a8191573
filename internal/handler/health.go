package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Version is reported by /health and /api/info.
const Version = "1.0.0"

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the unauthenticated status routes.
type HealthHandler struct {
	db          Pinger
	cache       Pinger
	environment string
	providers   []string
	started     time.Time
	now         func() time.Time
	logger      *slog.Logger
}

// NewHealthHandler reports uptime from the moment it is built. providers
// are the labels of the configured AI tiers, in chain order.
func NewHealthHandler(db Pinger, environment string, providers []string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:          db,
		environment: environment,
		providers:   providers,
		started:     time.Now(),
		now:         time.Now,
		logger:      logger,
	}
}

// WithCache adds a session cache check to /health. Without it the cache
// is reported as "disabled".
func (h *HealthHandler) WithCache(cache Pinger) *HealthHandler {
	h.cache = cache
	return h
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    float64           `json:"uptime"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks"`
}

type infoResponse struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Environment string            `json:"environment"`
	Providers   []string          `json:"providers"`
	Endpoints   map[string]string `json:"endpoints"`
}

// HandleHealth answers 200 "healthy" when the database answers a ping and
// 503 "unhealthy" otherwise. An unreachable session cache only degrades
// the status, since requests fall through to the database. Uptime is in
// seconds.
//
// HTTP: GET /health
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	resp := healthResponse{
		Status:    "healthy",
		Timestamp: now.UTC().Format(time.RFC3339),
		Uptime:    now.Sub(h.started).Seconds(),
		Version:   Version,
		Checks:    map[string]string{"database": "ok", "cache": "disabled"},
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.cache != nil {
		resp.Checks["cache"] = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			h.logger.Warn("session cache unreachable", slog.String("error", err.Error()))
			resp.Checks["cache"] = "unavailable"
			resp.Status = "degraded"
		}
	}

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("health check failed", slog.String("error", err.Error()))
		resp.Checks["database"] = "unavailable"
		resp.Status = "unhealthy"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleInfo describes the API.
//
// HTTP: GET /api/info
func (h *HealthHandler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	providers := h.providers
	if providers == nil {
		providers = []string{}
	}
	writeJSON(w, http.StatusOK, infoResponse{
		Name:        "CrackBano API",
		Version:     Version,
		Description: "AI-Powered Interview Preparation Platform",
		Environment: h.environment,
		Providers:   providers,
		Endpoints: map[string]string{
			"auth":      "/api/auth",
			"sessions":  "/api/sessions",
			"questions": "/api/questions",
			"ai":        "/api/ai",
			"health":    "/health",
			"metrics":   "/metrics",
		},
	})
}

// HandleTest is a liveness check that does not touch the database.
//
// HTTP: GET /api/test
func (h *HealthHandler) HandleTest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "CrackBano API is working",
		"powered_by": "Enhanced Fallback System",
	})
}
