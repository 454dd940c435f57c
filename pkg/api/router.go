package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/1anyK1/realTime/internal/logger"
	"github.com/1anyK1/realTime/pkg/api/handlers"
)

// ServerState is what the router needs from the running device server.
type ServerState interface {
	handlers.ServerState
	handlers.ConnectionLister
}

// Deps are the collaborators the API exposes. Any of them may be nil;
// the affected endpoints then report 503, and /metrics is not mounted.
type Deps struct {
	Server    ServerState
	Device    handlers.DeviceSource
	ChunkSize int

	// Metrics serves the Prometheus exposition format at /metrics.
	Metrics http.Handler
}

// NewRouter creates and configures the chi router with all middleware and routes.
//
// Routes:
//   - GET /health - Liveness probe
//   - GET /health/ready - Readiness probe
//   - GET /api/v1/device - Device geometry and counters
//   - GET /api/v1/device/contents - Device buffer window
//   - GET /api/v1/connections - Active connections
//   - GET /metrics - Prometheus metrics (when enabled)
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	health := handlers.NewHealthHandler(deps.Server)
	connections := handlers.NewConnectionsHandler(deps.Server)
	dev := handlers.NewDeviceHandler(deps.Device, deps.ChunkSize)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", health.Liveness)
		r.Get("/ready", health.Readiness)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/device", dev.Get)
		r.Get("/device/contents", dev.Contents)
		r.Get("/connections", connections.List)
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	return r
}

// requestLogger logs each request using the internal logger: start at
// DEBUG, completion at DEBUG for probes and INFO otherwise.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		attrs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		}
		if r.URL.Path == "/health" || r.URL.Path == "/health/ready" || r.URL.Path == "/metrics" {
			logger.Debug("API request completed", attrs...)
			return
		}
		logger.Info("API request completed", attrs...)
	})
}
