package controllers

import (
	"context"
	"net/http"
	"time"

	apperrors "volunvibe/app/errors"

	"go.uber.org/zap"
)

// LivenessMessage is the plain-text answer of the root route.
const LivenessMessage = "VolunVibe Server Is Running!"

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController answers liveness and readiness probes
type HealthController struct {
	store  Pinger
	driver string
	logger *zap.Logger
}

// NewHealthController creates a new HealthController
func NewHealthController(store Pinger, driver string, logger *zap.Logger) *HealthController {
	return &HealthController{store: store, driver: driver, logger: logger}
}

// Root answers with a fixed liveness message
func (hc *HealthController) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(LivenessMessage))
}

// Healthz pings the store
func (hc *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := hc.store.Ping(ctx); err != nil {
		sendError(w, r, hc.logger, apperrors.Unavailable("store unavailable", err))
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "store": hc.driver})
}
