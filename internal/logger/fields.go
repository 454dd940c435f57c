package logger

import "log/slog"

// Field keys shared by every log statement so records can be queried
// uniformly.
const (
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	KeyConnID  = "conn_id"
	KeyClient  = "client"
	KeyCommand = "command"
	KeyActive  = "active"

	KeyOffset       = "offset"
	KeyCount        = "count"
	KeyBytesRead    = "bytes_read"
	KeyBytesWritten = "bytes_written"
	KeyCapacity     = "capacity"
	KeyEOD          = "eod"

	KeyEndpoint   = "endpoint"
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
)

// Err returns an error attribute, or an empty attribute for nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Offset returns a device offset attribute.
func Offset(off int) slog.Attr {
	return slog.Int(KeyOffset, off)
}

// ConnID returns a connection id attribute.
func ConnID(id string) slog.Attr {
	return slog.String(KeyConnID, id)
}
