package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "table", input: "table", want: FormatTable},
		{name: "empty defaults to table", input: "", want: FormatTable},
		{name: "json", input: "json", want: FormatJSON},
		{name: "JSON uppercase", input: "JSON", want: FormatJSON},
		{name: "yaml", input: "yaml", want: FormatYAML},
		{name: "yml alias", input: "yml", want: FormatYAML},
		{name: "raw", input: "raw", want: FormatRaw},
		{name: "whitespace trimmed", input: "  table  ", want: FormatTable},
		{name: "invalid format", input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type devicePayload struct {
	Capacity int `json:"capacity" yaml:"capacity"`
}

func TestPrinter_Formats(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatJSON, false).Print(devicePayload{Capacity: 256}))
		assert.Contains(t, buf.String(), `"capacity": 256`)
	})

	t.Run("YAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatYAML, false).Print(devicePayload{Capacity: 256}))
		assert.Equal(t, "capacity: 256\n", buf.String())
	})

	t.Run("TableFallsBackToJSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatTable, false).Print(devicePayload{Capacity: 1}))
		assert.Contains(t, buf.String(), `"capacity": 1`)
	})

	t.Run("Raw", func(t *testing.T) {
		var buf bytes.Buffer
		data := []byte("AB\x00C")
		require.NoError(t, NewPrinter(&buf, FormatRaw, false).Print(HexDump{Data: data}))
		assert.Equal(t, data, buf.Bytes())
	})

	t.Run("RawFallsBackToJSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatRaw, false).Print(devicePayload{Capacity: 2}))
		assert.Contains(t, buf.String(), `"capacity": 2`)
	})

	t.Run("Unknown", func(t *testing.T) {
		assert.Error(t, NewPrinter(&bytes.Buffer{}, Format("xml"), false).Print(1))
	})
}

func TestPrinter_Messages(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatTable, false)

	p.Success("started")
	p.Warning("stale socket")
	p.Error("failed")
	p.Printf("%d bytes\n", 5)

	assert.Equal(t, "started\nstale socket\nfailed\n5 bytes\n", buf.String())
}

func TestPrinter_Color(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, FormatTable, true).Success("ok")
	assert.Equal(t, "\033[32mok\033[0m\n", buf.String())
}
