package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableData(t *testing.T) {
	table := NewTableData("ID", "Remote")
	assert.Equal(t, []string{"ID", "Remote"}, table.Headers())
	assert.Empty(t, table.Rows())

	table.AddRow("c1", "@")
	table.AddRow("c2", "@")

	rows := table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"c2", "@"}, rows[1])
}

func TestPrintTable(t *testing.T) {
	table := NewTableData("Connection", "Since")
	table.AddRow("c1", "10:00")

	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, table))

	out := buf.String()
	assert.Contains(t, out, "CONNECTION")
	assert.Contains(t, out, "c1")
	assert.Contains(t, out, "10:00")
}

func TestSimpleTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SimpleTable(&buf, [][2]string{
		{"Capacity", "256"},
		{"Chunk", "1024"},
	}))

	out := buf.String()
	assert.Contains(t, out, "Capacity")
	assert.Contains(t, out, "256")
	assert.Contains(t, out, "Chunk")
}

func TestHexDump(t *testing.T) {
	data := []byte("HELLO")
	for i := 0; i < 14; i++ {
		data = append(data, byte(i))
	}
	dump := HexDump{Base: 0x20, Data: data}

	rows := dump.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "00000020", rows[0][0])
	assert.True(t, strings.HasPrefix(rows[0][1], "48 45 4c 4c 4f 00"))
	assert.Equal(t, "HELLO...........", rows[0][2])
	assert.Equal(t, "00000030", rows[1][0])
	assert.Equal(t, "0b 0c 0d", rows[1][1])
}

func TestHexDump_Empty(t *testing.T) {
	assert.Empty(t, HexDump{}.Rows())

	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, HexDump{Data: []byte("A")}))
	assert.Contains(t, buf.String(), "00000000")
}
