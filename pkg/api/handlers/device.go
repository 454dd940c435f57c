package handlers

import (
	"net/http"
	"strconv"

	"github.com/1anyK1/realTime/pkg/device"
)

// DeviceSource is the read-only view of the device exposed over HTTP.
type DeviceSource interface {
	Capacity() int
	Stats() device.Stats
	Snapshot() []byte
}

// DeviceHandler serves device information.
type DeviceHandler struct {
	device    DeviceSource
	chunkSize int
}

// NewDeviceHandler creates a handler for dev. chunkSize is reported as-is.
func NewDeviceHandler(dev DeviceSource, chunkSize int) *DeviceHandler {
	return &DeviceHandler{device: dev, chunkSize: chunkSize}
}

// DeviceInfo describes the device geometry and its access counters.
type DeviceInfo struct {
	Capacity  int          `json:"capacity"`
	ChunkSize int          `json:"chunk_size"`
	Stats     device.Stats `json:"stats"`
}

// Get handles GET /api/v1/device.
func (h *DeviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.device == nil {
		ServiceUnavailable(w, "device not initialized")
		return
	}

	writeJSON(w, http.StatusOK, okResponse(DeviceInfo{
		Capacity:  h.device.Capacity(),
		ChunkSize: h.chunkSize,
		Stats:     h.device.Stats(),
	}))
}

// DeviceContents is a window of the device buffer. Data is base64 encoded
// by encoding/json.
type DeviceContents struct {
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	Data   []byte `json:"data"`
}

// Contents handles GET /api/v1/device/contents?offset=N&length=M.
//
// It copies the requested window out of a snapshot, so it neither moves any
// connection's cursor nor counts as a device read. Omitting length returns
// everything from offset to the end of the device.
func (h *DeviceHandler) Contents(w http.ResponseWriter, r *http.Request) {
	if h.device == nil {
		ServiceUnavailable(w, "device not initialized")
		return
	}

	offset, ok := queryInt(w, r, "offset", 0)
	if !ok {
		return
	}
	snap := h.device.Snapshot()
	length, ok := queryInt(w, r, "length", len(snap))
	if !ok {
		return
	}
	if offset < 0 || length < 0 {
		BadRequest(w, "offset and length must be non-negative")
		return
	}

	if offset > len(snap) {
		offset = len(snap)
	}
	end := len(snap)
	if length < end-offset {
		end = offset + length
	}

	writeJSON(w, http.StatusOK, okResponse(DeviceContents{
		Offset: offset,
		Length: end - offset,
		Data:   snap[offset:end],
	}))
}

func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		BadRequest(w, "invalid "+name+": "+raw)
		return 0, false
	}
	return v, true
}
