package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metricsHandler serves the configured gatherer in the Prometheus
// exposition format.
func (g *Gateway) metricsHandler() http.Handler {
	return promhttp.HandlerFor(g.gatherer, promhttp.HandlerOpts{
		ErrorLog: slogErrorLogger{g},
	})
}

// slogErrorLogger adapts the gateway logger to promhttp.Logger.
type slogErrorLogger struct{ g *Gateway }

func (l slogErrorLogger) Println(v ...any) {
	l.g.logger.Error("metrics handler error", "detail", v)
}
