package apiclient

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1anyK1/realTime/pkg/adapter"
	"github.com/1anyK1/realTime/pkg/api"
	"github.com/1anyK1/realTime/pkg/device"
)

func TestNew(t *testing.T) {
	assert.Equal(t, "http://localhost:8080", New("http://localhost:8080/").BaseURL())
	assert.Equal(t, "http://127.0.0.1:8080", New("127.0.0.1:8080").BaseURL())
}

type readyServer struct{ ready bool }

func (s readyServer) IsReady() bool                 { return s.ready }
func (readyServer) Endpoint() (string, string)      { return "unix", "/tmp/api.sock" }
func (readyServer) Protocol() string                { return "resmgr" }
func (readyServer) GetActiveConnections() int32     { return 1 }
func (readyServer) Connections() []adapter.ConnInfo { return []adapter.ConnInfo{{ID: "c1"}} }

func newAPI(t *testing.T, ready bool) *Client {
	t.Helper()
	dev, err := device.NewWithPattern(8)
	require.NoError(t, err)

	srv := httptest.NewServer(api.NewRouter(api.Deps{
		Server:    readyServer{ready: ready},
		Device:    dev,
		ChunkSize: 4,
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestClient_AgainstRouter(t *testing.T) {
	c := newAPI(t, true)

	live, err := c.Health()
	require.NoError(t, err)
	assert.Equal(t, "resmgr", live.Service)

	ready, err := c.Ready()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/api.sock", ready.Address)
	assert.EqualValues(t, 1, ready.ActiveConnections)

	info, err := c.Device()
	require.NoError(t, err)
	assert.Equal(t, 8, info.Capacity)
	assert.Equal(t, 4, info.ChunkSize)

	contents, err := c.DeviceContents(2, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{device.PatternByte(2), device.PatternByte(3), device.PatternByte(4)}, contents.Data)

	all, err := c.DeviceContents(0, -1)
	require.NoError(t, err)
	assert.Len(t, all.Data, 8)

	conns, err := c.Connections()
	require.NoError(t, err)
	require.Equal(t, 1, conns.Count)
	assert.Equal(t, "c1", conns.Connections[0].ID)
}

func TestClient_NotReady(t *testing.T) {
	c := newAPI(t, false)

	_, err := c.Ready()
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsUnavailable())
	assert.Equal(t, "endpoint not accepting connections", apiErr.Message)
}

func TestClient_ProblemDocument(t *testing.T) {
	c := newAPI(t, true)

	_, err := c.DeviceContents(-1, 1)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Bad Request", apiErr.Title)
}

func TestClient_MetricsNotMounted(t *testing.T) {
	c := newAPI(t, true)

	_, err := c.Metrics()
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsNotFound())
}

func TestClient_PlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Health()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).WithTimeout(time.Second).Health()
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
