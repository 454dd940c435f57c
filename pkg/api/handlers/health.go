package handlers

import (
	"net/http"
	"time"
)

// ServerState is the view of the running device server the handlers need.
// It is satisfied by the resmgr adapter.
type ServerState interface {
	IsReady() bool
	Endpoint() (network, address string)
	Protocol() string
	GetActiveConnections() int32
}

// HealthHandler handles health check endpoints.
//
// Health endpoints are unauthenticated and provide:
//   - Liveness probe: Is the process running?
//   - Readiness probe: Is the device endpoint accepting connections?
type HealthHandler struct {
	server    ServerState
	startedAt time.Time
}

// NewHealthHandler creates a new health handler. server may be nil, in
// which case readiness reports unhealthy.
func NewHealthHandler(server ServerState) *HealthHandler {
	return &HealthHandler{server: server, startedAt: time.Now()}
}

// Liveness is the payload of GET /health.
type Liveness struct {
	Service   string    `json:"service"`
	StartedAt time.Time `json:"started_at"`
	Uptime    string    `json:"uptime"`
	UptimeSec int64     `json:"uptime_sec"`
}

// Liveness handles GET /health. It succeeds as long as the HTTP server is
// responsive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startedAt)
	writeJSON(w, http.StatusOK, healthyResponse(Liveness{
		Service:   "resmgr",
		StartedAt: h.startedAt.UTC(),
		Uptime:    uptime.Round(time.Second).String(),
		UptimeSec: int64(uptime.Seconds()),
	}))
}

// ReadinessData is the payload of a successful readiness probe.
type ReadinessData struct {
	Protocol          string `json:"protocol"`
	Network           string `json:"network"`
	Address           string `json:"address"`
	ActiveConnections int32  `json:"active_connections"`
}

// Readiness handles GET /health/ready.
//
// Returns 200 once the device endpoint is bound and accepting, and 503
// before that or when no server is attached.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.server == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("server not initialized"))
		return
	}
	if !h.server.IsReady() {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("endpoint not accepting connections"))
		return
	}

	network, address := h.server.Endpoint()
	writeJSON(w, http.StatusOK, healthyResponse(ReadinessData{
		Protocol:          h.server.Protocol(),
		Network:           network,
		Address:           address,
		ActiveConnections: h.server.GetActiveConnections(),
	}))
}
