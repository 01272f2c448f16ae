package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status string `json:"status"` // "ok" or "degraded"
	Model  string `json:"model,omitempty"`
	Uptime string `json:"uptime,omitempty"`
	Error  string `json:"error,omitempty"`
}

// handleHealth returns an http.HandlerFunc for GET /health.
// Returns 200 if the upstream endpoint answers, 503 otherwise. Without a
// health checker the process itself is reported healthy.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status: "ok",
			Model:  g.model,
		}
		if !g.startedAt.IsZero() {
			resp.Uptime = time.Since(g.startedAt).Round(time.Second).String()
		}

		if g.health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), g.config.HealthTimeout)
			defer cancel()
			if err := g.health.HealthCheck(ctx); err != nil {
				resp.Status = "degraded"
				resp.Error = err.Error()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status == "degraded" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
