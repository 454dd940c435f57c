package config

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/1anyK1/realTime/pkg/metrics"
	prommetrics "github.com/1anyK1/realTime/pkg/metrics/prometheus"
)

// MetricsResult holds the metrics collaborators of the server. Both fields
// are nil when metrics are disabled.
type MetricsResult struct {
	// Recorder receives command and connection events.
	Recorder metrics.ResmgrMetrics

	// Handler serves the registry in the Prometheus exposition format.
	Handler http.Handler
}

// InitializeMetrics enables the metrics registry when cfg asks for it and
// builds the recorder and the /metrics handler. It must be called at most
// once per registry.
func InitializeMetrics(cfg *Config) MetricsResult {
	if !cfg.Metrics.Enabled {
		return MetricsResult{}
	}

	reg := metrics.InitRegistry()
	return MetricsResult{
		Recorder: prommetrics.NewResmgrMetrics(),
		Handler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}
}
