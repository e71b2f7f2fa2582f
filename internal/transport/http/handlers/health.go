package http_handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/baechuer/account-service/internal/logger"
	"github.com/baechuer/account-service/internal/transport/http/dto"
	"github.com/baechuer/account-service/internal/transport/http/response"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler takes the dependencies /readyz must reach, by name.
// Nil pingers are skipped.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	m := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			m[name] = p
		}
	}
	return &HealthHandler{checks: m}
}

// Healthz handles GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// Readyz handles GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	out := dto.HealthResponse{Status: "ready", Checks: make(map[string]string, len(h.checks))}

	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			logger.WithCtx(r.Context()).Warn().Err(err).Str("check", name).Msg("readiness check failed")
			out.Checks[name] = "unavailable"
			out.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		out.Checks[name] = "ok"
	}

	response.WriteJSON(w, status, out)
}
