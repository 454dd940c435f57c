package output

import (
	"fmt"
	"strings"
)

// HexDump renders a byte range of the device as a table of 16-byte rows:
// offset, hex bytes, and printable ASCII.
type HexDump struct {
	// Base is the device offset of Data[0].
	Base int    `json:"offset"`
	Data []byte `json:"data"`
}

const hexRowWidth = 16

// RawBytes implements RawRenderer.
func (h HexDump) RawBytes() []byte {
	return h.Data
}

// Headers implements TableRenderer.
func (h HexDump) Headers() []string {
	return []string{"Offset", "Hex", "ASCII"}
}

// Rows implements TableRenderer.
func (h HexDump) Rows() [][]string {
	rows := make([][]string, 0, (len(h.Data)+hexRowWidth-1)/hexRowWidth)
	for start := 0; start < len(h.Data); start += hexRowWidth {
		end := min(start+hexRowWidth, len(h.Data))
		line := h.Data[start:end]

		hex := make([]string, len(line))
		var ascii strings.Builder
		for i, b := range line {
			hex[i] = fmt.Sprintf("%02x", b)
			if b >= 0x20 && b < 0x7f {
				ascii.WriteByte(b)
			} else {
				ascii.WriteByte('.')
			}
		}

		rows = append(rows, []string{
			fmt.Sprintf("%08x", h.Base+start),
			strings.Join(hex, " "),
			ascii.String(),
		})
	}
	return rows
}
