package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture redirects output to a buffer and restores the previous settings
// when the test ends.
func capture(t *testing.T, lvl, fmtName string) *bytes.Buffer {
	t.Helper()

	mu.RLock()
	prevOut, prevColor := output, useColor
	mu.RUnlock()
	prevLevel := GetLevel()
	prevFormat, _ := format.Load().(string)

	buf := new(bytes.Buffer)
	InitWithWriter(buf, lvl, fmtName, false)

	t.Cleanup(func() {
		InitWithWriter(prevOut, prevLevel.String(), prevFormat, prevColor)
	})
	return buf
}

func TestLevelFiltering(t *testing.T) {
	t.Run("DebugShowsEverything", func(t *testing.T) {
		buf := capture(t, "DEBUG", "text")

		Debug("d")
		Info("i")
		Warn("w")
		Error("e")

		out := buf.String()
		for _, want := range []string{"[DEBUG] d", "[INFO] i", "[WARN] w", "[ERROR] e"} {
			assert.Contains(t, out, want)
		}
	})

	t.Run("WarnHidesDebugAndInfo", func(t *testing.T) {
		buf := capture(t, "WARN", "text")

		Debug("d")
		Info("i")
		Warn("w")

		out := buf.String()
		assert.NotContains(t, out, "[DEBUG]")
		assert.NotContains(t, out, "[INFO]")
		assert.Contains(t, out, "[WARN] w")
	})

	t.Run("ErrorAlwaysLogged", func(t *testing.T) {
		buf := capture(t, "ERROR", "text")

		Warn("w")
		Error("e")

		assert.NotContains(t, buf.String(), "[WARN]")
		assert.Contains(t, buf.String(), "[ERROR] e")
	})

	t.Run("InvalidLevelIgnored", func(t *testing.T) {
		_ = capture(t, "INFO", "text")
		SetLevel("LOUD")
		assert.Equal(t, LevelInfo, GetLevel())
	})
}

func TestTextFormat(t *testing.T) {
	buf := capture(t, "INFO", "text")

	Info("connection accepted", KeyConnID, "abc", KeyOffset, 12, "note", "two words")

	line := buf.String()
	assert.Contains(t, line, "connection accepted")
	assert.Contains(t, line, "conn_id=abc")
	assert.Contains(t, line, "offset=12")
	assert.Contains(t, line, `note="two words"`)
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestTextFormat_Groups(t *testing.T) {
	buf := capture(t, "INFO", "text")

	With("server", "resmgr").WithGroup("device").Info("ready", "capacity", 256)

	line := buf.String()
	assert.Contains(t, line, "server=resmgr")
	assert.Contains(t, line, "device.capacity=256")
}

func TestJSONFormat(t *testing.T) {
	buf := capture(t, "INFO", "json")

	Info("write", KeyBytesWritten, 5)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "write", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
	assert.EqualValues(t, 5, rec[KeyBytesWritten])
}

func TestContextLogging(t *testing.T) {
	buf := capture(t, "DEBUG", "json")

	lc := NewLogContext("conn-1", "@peer").WithCommand("read").WithTrace("t1", "s1")
	ctx := WithContext(context.Background(), lc)

	DebugCtx(ctx, "served", KeyBytesRead, 10)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "conn-1", rec[KeyConnID])
	assert.Equal(t, "@peer", rec[KeyClient])
	assert.Equal(t, "read", rec[KeyCommand])
	assert.Equal(t, "t1", rec[KeyTraceID])
	assert.Equal(t, "s1", rec[KeySpanID])
}

func TestLogContext_NilSafe(t *testing.T) {
	var lc *LogContext
	assert.Nil(t, lc.WithCommand("read"))
	assert.Nil(t, lc.WithTrace("a", "b"))
	assert.Zero(t, lc.DurationMs())
	assert.Nil(t, FromContext(context.Background()))
}

func TestLogContext_WithCommandCopies(t *testing.T) {
	base := NewLogContext("c", "a")
	cmd := base.WithCommand("write")

	assert.Empty(t, base.Command)
	assert.Equal(t, "write", cmd.Command)
	assert.Equal(t, "c", cmd.ConnID)
}

func TestInit_FileOutput(t *testing.T) {
	_ = capture(t, "INFO", "text")

	path := filepath.Join(t.TempDir(), "resmgr.log")
	require.NoError(t, Init(Config{Level: "INFO", Format: "text", Output: path}))
	t.Cleanup(func() { _ = Init(Config{Output: "stderr"}) })

	Info("to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestErrAttr(t *testing.T) {
	assert.True(t, Err(nil).Equal(slog.Attr{}))
	assert.Equal(t, "boom", Err(assertErr("boom")).Value.String())
}

type assertErr string

func (e assertErr) Error() string { return string(e) }

func TestConcurrentLogging(t *testing.T) {
	_ = capture(t, "INFO", "text")
	buf := &syncBuffer{}
	InitWithWriter(buf, "INFO", "text", false)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				Info("tick")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, strings.Count(buf.String(), "tick\n"))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
