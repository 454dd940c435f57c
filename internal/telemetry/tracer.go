package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for resource manager spans.
const (
	AttrClientAddr = "client.address"
	AttrConnID     = "resmgr.conn_id"

	AttrCommand      = "resmgr.command"
	AttrOffset       = "resmgr.offset"
	AttrCount        = "resmgr.count"
	AttrBytesRead    = "resmgr.bytes_read"
	AttrBytesWritten = "resmgr.bytes_written"
	AttrTruncated    = "resmgr.truncated"
	AttrEOD          = "resmgr.eod"
	AttrCapacity     = "device.capacity"
)

// Span names. One span is started per served command.
const (
	SpanRead    = "resmgr.read"
	SpanWrite   = "resmgr.write"
	SpanUnknown = "resmgr.unknown"
)

// CommandSpanName maps a command name ("read", "write", ...) to its span.
func CommandSpanName(command string) string {
	switch command {
	case "read":
		return SpanRead
	case "write":
		return SpanWrite
	default:
		return SpanUnknown
	}
}

// StartCommandSpan starts a server span for one command on a connection.
func StartCommandSpan(ctx context.Context, command, connID string, offset int, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	base := []attribute.KeyValue{
		attribute.String(AttrCommand, command),
		attribute.String(AttrConnID, connID),
		Offset(offset),
	}
	return StartSpan(ctx, CommandSpanName(command),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(append(base, attrs...)...),
	)
}

func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

func Offset(off int) attribute.KeyValue {
	return attribute.Int(AttrOffset, off)
}

func Count(n int) attribute.KeyValue {
	return attribute.Int(AttrCount, n)
}

func BytesRead(n int) attribute.KeyValue {
	return attribute.Int(AttrBytesRead, n)
}

func BytesWritten(n int) attribute.KeyValue {
	return attribute.Int(AttrBytesWritten, n)
}

func Truncated(t bool) attribute.KeyValue {
	return attribute.Bool(AttrTruncated, t)
}

func EOD(eod bool) attribute.KeyValue {
	return attribute.Bool(AttrEOD, eod)
}

func Capacity(c int) attribute.KeyValue {
	return attribute.Int(AttrCapacity, c)
}
