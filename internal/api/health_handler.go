package api

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/convene/backend/pkg/response"
)

// HealthHandler reports service liveness and database reachability
type HealthHandler struct {
	client *mongo.Client
	logger *zap.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(client *mongo.Client, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		client: client,
		logger: logger,
	}
}

// Health responds with service and database status
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "up"
	if err := h.client.Ping(ctx, readpref.Primary()); err != nil {
		h.logger.Warn("database ping failed", zap.Error(err))
		dbStatus = "down"
	}

	response.OK(w, "service healthy", map[string]string{
		"status":   "ok",
		"database": dbStatus,
	})
}

// Live always reports success while the process is serving
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	response.OK(w, "alive", map[string]string{"status": "ok"})
}

// Ready reports whether the service can reach its dependencies
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.client.Ping(ctx, readpref.Primary()); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		response.Error(w, http.StatusServiceUnavailable, "service not ready", "database unreachable")
		return
	}

	response.OK(w, "ready", map[string]string{"status": "ok"})
}
