package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1anyK1/realTime/pkg/adapter"
	"github.com/1anyK1/realTime/pkg/device"
)

type fakeServer struct {
	ready bool
	conns []adapter.ConnInfo
}

func (f *fakeServer) IsReady() bool { return f.ready }

func (f *fakeServer) Endpoint() (string, string) { return "unix", "/tmp/test.sock" }

func (f *fakeServer) Protocol() string { return "resmgr" }

func (f *fakeServer) GetActiveConnections() int32 { return int32(len(f.conns)) }

func (f *fakeServer) Connections() []adapter.ConnInfo { return f.conns }

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestLiveness_ReturnsOK(t *testing.T) {
	w := httptest.NewRecorder()
	NewHealthHandler(nil).Liveness(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "healthy", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, "Data should be a map, got %T", resp.Data)
	assert.Equal(t, "resmgr", data["service"])
}

func TestReadiness(t *testing.T) {
	t.Run("NoServer", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewHealthHandler(nil).Readiness(w, httptest.NewRequest("GET", "/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "server not initialized", resp.Error)
	})

	t.Run("NotListening", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewHealthHandler(&fakeServer{}).Readiness(w, httptest.NewRequest("GET", "/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("Ready", func(t *testing.T) {
		srv := &fakeServer{ready: true, conns: make([]adapter.ConnInfo, 2)}
		w := httptest.NewRecorder()
		NewHealthHandler(srv).Readiness(w, httptest.NewRequest("GET", "/health/ready", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "unix", data["network"])
		assert.Equal(t, "/tmp/test.sock", data["address"])
		assert.EqualValues(t, 2, data["active_connections"])
	})
}

func TestDevice_Get(t *testing.T) {
	dev, err := device.NewWithPattern(64)
	require.NoError(t, err)
	dev.ReadAt(0, 10)

	w := httptest.NewRecorder()
	NewDeviceHandler(dev, 16).Get(w, httptest.NewRequest("GET", "/api/v1/device", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Status string     `json:"status"`
		Data   DeviceInfo `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 64, resp.Data.Capacity)
	assert.Equal(t, 16, resp.Data.ChunkSize)
	assert.EqualValues(t, 1, resp.Data.Stats.Reads)
	assert.EqualValues(t, 10, resp.Data.Stats.BytesRead)
}

func TestDevice_GetWithoutDevice(t *testing.T) {
	w := httptest.NewRecorder()
	NewDeviceHandler(nil, 16).Get(w, httptest.NewRequest("GET", "/api/v1/device", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, ContentTypeProblemJSON, w.Header().Get("Content-Type"))
}

func TestDevice_Contents(t *testing.T) {
	dev, err := device.NewWithPattern(32)
	require.NoError(t, err)
	h := NewDeviceHandler(dev, 16)

	type payload struct {
		Data DeviceContents `json:"data"`
	}
	get := func(t *testing.T, target string) (int, payload) {
		t.Helper()
		w := httptest.NewRecorder()
		h.Contents(w, httptest.NewRequest("GET", target, nil))
		var p payload
		if w.Code == http.StatusOK {
			require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
		}
		return w.Code, p
	}

	t.Run("Window", func(t *testing.T) {
		code, p := get(t, "/api/v1/device/contents?offset=4&length=3")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, 4, p.Data.Offset)
		assert.Equal(t, []byte{device.PatternByte(4), device.PatternByte(5), device.PatternByte(6)}, p.Data.Data)
	})

	t.Run("WholeDevice", func(t *testing.T) {
		code, p := get(t, "/api/v1/device/contents")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, 32, p.Data.Length)
	})

	t.Run("ClampedAtCapacity", func(t *testing.T) {
		code, p := get(t, "/api/v1/device/contents?offset=30&length=10")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, 2, p.Data.Length)

		code, p = get(t, "/api/v1/device/contents?offset=100")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, 32, p.Data.Offset)
		assert.Zero(t, p.Data.Length)
	})

	t.Run("Invalid", func(t *testing.T) {
		code, _ := get(t, "/api/v1/device/contents?offset=abc")
		assert.Equal(t, http.StatusBadRequest, code)

		code, _ = get(t, "/api/v1/device/contents?length=-1")
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("DoesNotCountAsRead", func(t *testing.T) {
		assert.Zero(t, dev.Stats().Reads)
	})
}

func TestConnections_List(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	srv := &fakeServer{conns: []adapter.ConnInfo{
		{ID: "a", RemoteAddr: "@", ConnectedAt: now},
		{ID: "b", RemoteAddr: "@", ConnectedAt: now},
	}}

	w := httptest.NewRecorder()
	NewConnectionsHandler(srv).List(w, httptest.NewRequest("GET", "/api/v1/connections", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data ConnectionList `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Data.Count)
	assert.Equal(t, "a", resp.Data.Connections[0].ID)
	assert.True(t, now.Equal(resp.Data.Connections[1].ConnectedAt))
}

func TestConnections_EmptyListIsArray(t *testing.T) {
	w := httptest.NewRecorder()
	NewConnectionsHandler(&fakeServer{}).List(w, httptest.NewRequest("GET", "/api/v1/connections", nil))

	assert.Contains(t, w.Body.String(), `"connections":[]`)
}
