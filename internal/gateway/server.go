package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", g.handleHealth())
	r.Method(http.MethodGet, "/metrics", g.metricsHandler())
	return r
}
