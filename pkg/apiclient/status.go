package apiclient

import (
	"github.com/1anyK1/realTime/pkg/api/handlers"
)

// Response types are shared with the server handlers.
type (
	Liveness       = handlers.Liveness
	Readiness      = handlers.ReadinessData
	DeviceInfo     = handlers.DeviceInfo
	DeviceContents = handlers.DeviceContents
	ConnectionList = handlers.ConnectionList
)

// Health calls the liveness probe.
func (c *Client) Health() (*Liveness, error) {
	return getResource[Liveness](c, "/health")
}

// Ready calls the readiness probe. A server that is up but not yet
// accepting returns an *APIError for which IsUnavailable is true.
func (c *Client) Ready() (*Readiness, error) {
	return getResource[Readiness](c, "/health/ready")
}

// Device returns the device geometry and counters.
func (c *Client) Device() (*DeviceInfo, error) {
	return getResource[DeviceInfo](c, "/api/v1/device")
}

// DeviceContents returns length bytes of the device from offset without
// touching any connection cursor. A negative length requests everything
// up to the end of the device.
func (c *Client) DeviceContents(offset, length int) (*DeviceContents, error) {
	path := resourcePath("/api/v1/device/contents?offset=%d", offset)
	if length >= 0 {
		path += resourcePath("&length=%d", length)
	}
	return getResource[DeviceContents](c, path)
}

// Connections lists the connections currently being served.
func (c *Client) Connections() (*ConnectionList, error) {
	return getResource[ConnectionList](c, "/api/v1/connections")
}

// Metrics returns the raw Prometheus exposition text.
func (c *Client) Metrics() (string, error) {
	body, err := c.getRaw("/metrics")
	if err != nil {
		return "", err
	}
	return string(body), nil
}
