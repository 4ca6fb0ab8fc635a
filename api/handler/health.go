package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskpilot/backend/internal/infrastructure/monitor"
	"github.com/taskpilot/backend/pkg/httpcontext"
)

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
}

func NewHealthHandler(mon *monitor.Monitor, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// Check reports dependency health.
// GET /api/health
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"checks": map[string]interface{}{
			"database": status.Database,
			"api_key":  status.APIKey,
		},
	}

	if h.monitor.Healthy() {
		h.respondJSON(ctx, http.StatusOK, payload)
		return
	}
	payload["status"] = "unhealthy"
	h.respondJSON(ctx, http.StatusServiceUnavailable, payload)
}
