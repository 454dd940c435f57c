package logger

import (
	"context"
	"time"
)

type contextKey struct{}

// LogContext carries per-connection and per-command fields that the *Ctx
// functions add to every record.
type LogContext struct {
	TraceID    string
	SpanID     string
	ConnID     string
	ClientAddr string
	Command    string
	StartTime  time.Time
}

// NewLogContext creates a LogContext for a freshly accepted connection.
func NewLogContext(connID, clientAddr string) *LogContext {
	return &LogContext{
		ConnID:     connID,
		ClientAddr: clientAddr,
		StartTime:  time.Now(),
	}
}

// WithContext stores lc in ctx.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, contextKey{}, lc)
}

// FromContext returns the LogContext stored in ctx, or nil.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(contextKey{}).(*LogContext)
	return lc
}

// WithCommand returns a copy of lc for a single command.
func (lc *LogContext) WithCommand(command string) *LogContext {
	if lc == nil {
		return nil
	}
	c := *lc
	c.Command = command
	c.StartTime = time.Now()
	return &c
}

// WithTrace returns a copy of lc with trace identifiers set.
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	if lc == nil {
		return nil
	}
	c := *lc
	c.TraceID = traceID
	c.SpanID = spanID
	return &c
}

// DurationMs is the time since StartTime in milliseconds.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}

func withContextFields(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}

	out := make([]any, 0, 10+len(args))
	if lc.TraceID != "" {
		out = append(out, KeyTraceID, lc.TraceID)
	}
	if lc.SpanID != "" {
		out = append(out, KeySpanID, lc.SpanID)
	}
	if lc.ConnID != "" {
		out = append(out, KeyConnID, lc.ConnID)
	}
	if lc.ClientAddr != "" {
		out = append(out, KeyClient, lc.ClientAddr)
	}
	if lc.Command != "" {
		out = append(out, KeyCommand, lc.Command)
	}
	return append(out, args...)
}
