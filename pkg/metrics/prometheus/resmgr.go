package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/1anyK1/realTime/pkg/metrics"
)

// resmgrMetrics is the Prometheus implementation of metrics.ResmgrMetrics.
type resmgrMetrics struct {
	commandsTotal     *prometheus.CounterVec
	commandDuration   *prometheus.HistogramVec
	bytesTotal        *prometheus.CounterVec
	truncatedWrites   prometheus.Counter
	activeConnections prometheus.Gauge
	connectionsTotal  *prometheus.CounterVec
}

// NewResmgrMetrics creates a Prometheus-backed ResmgrMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewResmgrMetrics() metrics.ResmgrMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &resmgrMetrics{
		commandsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "resmgr_commands_total",
				Help: "Total number of commands served by command and status",
			},
			[]string{"command", "status"},
		),
		commandDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "resmgr_command_duration_milliseconds",
				Help: "Duration of command handling in milliseconds",
				Buckets: []float64{
					0.01, // 10us - in-memory copy
					0.05,
					0.1,
					0.5,
					1,
					5,
					10,
					50,
					100, // slow peer on send
				},
			},
			[]string{"command"},
		),
		bytesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "resmgr_bytes_total",
				Help: "Total bytes transferred to and from the device",
			},
			[]string{"direction"},
		),
		truncatedWrites: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "resmgr_truncated_writes_total",
				Help: "Writes shortened because they reached the end of the device",
			},
		),
		activeConnections: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "resmgr_active_connections",
				Help: "Current number of client connections",
			},
		),
		connectionsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "resmgr_connections_total",
				Help: "Connection lifecycle events",
			},
			[]string{"event"}, // accepted, closed, force_closed
		),
	}
}

func (m *resmgrMetrics) RecordCommand(command string, duration time.Duration, status string) {
	m.commandsTotal.WithLabelValues(command, status).Inc()
	m.commandDuration.WithLabelValues(command).Observe(float64(duration.Microseconds()) / 1000.0)
}

func (m *resmgrMetrics) RecordBytes(direction string, bytes int) {
	if bytes <= 0 {
		return
	}
	m.bytesTotal.WithLabelValues(direction).Add(float64(bytes))
}

func (m *resmgrMetrics) RecordTruncatedWrite() {
	m.truncatedWrites.Inc()
}

func (m *resmgrMetrics) SetActiveConnections(count int32) {
	m.activeConnections.Set(float64(count))
}

func (m *resmgrMetrics) RecordConnectionAccepted() {
	m.connectionsTotal.WithLabelValues("accepted").Inc()
}

func (m *resmgrMetrics) RecordConnectionClosed() {
	m.connectionsTotal.WithLabelValues("closed").Inc()
}

func (m *resmgrMetrics) RecordConnectionForceClosed() {
	m.connectionsTotal.WithLabelValues("force_closed").Inc()
}
