package handlers

import (
	"net/http"

	"github.com/1anyK1/realTime/pkg/adapter"
)

// ConnectionLister reports the client connections currently being served.
type ConnectionLister interface {
	Connections() []adapter.ConnInfo
}

// ConnectionsHandler serves the list of active connections.
type ConnectionsHandler struct {
	lister ConnectionLister
}

// NewConnectionsHandler creates a connections handler.
func NewConnectionsHandler(lister ConnectionLister) *ConnectionsHandler {
	return &ConnectionsHandler{lister: lister}
}

// ConnectionList is the payload of GET /api/v1/connections.
type ConnectionList struct {
	Count       int                `json:"count"`
	Connections []adapter.ConnInfo `json:"connections"`
}

// List handles GET /api/v1/connections.
func (h *ConnectionsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.lister == nil {
		ServiceUnavailable(w, "server not initialized")
		return
	}

	conns := h.lister.Connections()
	if conns == nil {
		conns = []adapter.ConnInfo{}
	}
	writeJSON(w, http.StatusOK, okResponse(ConnectionList{
		Count:       len(conns),
		Connections: conns,
	}))
}
