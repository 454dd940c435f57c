package metrics

import "time"

// ResmgrMetrics provides observability for the resource manager adapter.
//
// Implementations collect per-command latency and throughput plus the
// connection lifecycle. Pass nil to disable collection.
//
// Example usage:
//
//	m := prometheus.NewResmgrMetrics()
//	a := resmgr.New(cfg, dev, m)
type ResmgrMetrics interface {
	// RecordCommand records a completed command.
	//
	// Parameters:
	//   - command: "read", "write" or "unknown"
	//   - duration: time taken to serve the command
	//   - status: "ok", "eod" for a read at end of device, "rejected" for
	//     an unknown command, "closed" when the peer hung up mid-command, or
	//     "error" when the connection failed
	RecordCommand(command string, duration time.Duration, status string)

	// RecordBytes records bytes moved by a command ("read" or "write").
	RecordBytes(direction string, bytes int)

	// RecordTruncatedWrite counts writes that hit the end of the device and
	// were shortened. A write issued with the cursor already at the end
	// stores nothing and is not counted.
	RecordTruncatedWrite()

	// SetActiveConnections updates the current connection count.
	SetActiveConnections(count int32)

	// RecordConnectionAccepted increments the accepted connections counter.
	RecordConnectionAccepted()

	// RecordConnectionClosed increments the closed connections counter.
	RecordConnectionClosed()

	// RecordConnectionForceClosed counts connections closed by the server
	// after the shutdown timeout.
	RecordConnectionForceClosed()
}
