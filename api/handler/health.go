package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskmanager/api/transport"
	"github.com/fastygo/taskmanager/internal/infrastructure/monitor"
	"github.com/fastygo/taskmanager/pkg/httpcontext"
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

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	if status.LastCheck.IsZero() {
		stdCtx, cancel := h.requestContext(ctx)
		status = h.monitor.Refresh(stdCtx)
		cancel()
	}

	payload := transport.HealthResult{
		Status:       "ok",
		Online:       status.Online,
		Dependencies: make(map[string]string, len(status.Dependencies)),
		JournalSize:  status.JournalSize,
		CheckedAt:    status.LastCheck.Format(time.RFC3339),
	}
	for name, up := range status.Dependencies {
		payload.Dependencies[name] = monitor.Label(up)
	}

	if status.Online {
		h.respondJSON(ctx, http.StatusOK, payload)
		return
	}
	payload.Status = "degraded"
	h.respondJSON(ctx, http.StatusServiceUnavailable, payload)
}
