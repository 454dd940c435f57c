package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1anyK1/realTime/cmd/resmgrctl/cmdutil"
	"github.com/1anyK1/realTime/internal/cli/output"
	"github.com/1anyK1/realTime/pkg/protocol"
)

var (
	writeHex  bool
	writeFile string
	writeSkip int
)

var writeCmd = &cobra.Command{
	Use:     "write [data]",
	Aliases: []string{"w"},
	Short:   "Write data to the device",
	Long: `Send 'w' commands over one connection to store data at the cursor.

Data longer than one chunk is sent as consecutive writes. The server stores
at most the bytes that fit before the end of the device, so a write near
the end is truncated and the remaining data is not sent.

The cursor starts at offset 0. Use --skip to advance it with reads first.

Examples:
  # Write a string at offset 0
  resmgrctl write hello

  # Write hex bytes after the first chunk
  resmgrctl write --hex deadbeef --skip 1

  # Write a file, "-" reads stdin
  resmgrctl write --file payload.bin`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWrite,
}

func init() {
	writeCmd.Flags().BoolVar(&writeHex, "hex", false, "Interpret data as hex-encoded bytes")
	writeCmd.Flags().StringVar(&writeFile, "file", "", "Read the payload from a file (\"-\" for stdin)")
	writeCmd.Flags().IntVar(&writeSkip, "skip", 0, "Number of reads to issue before writing")
}

// WriteResult summarizes a write command.
type WriteResult struct {
	Offset    int  `json:"offset" yaml:"offset"`
	Requested int  `json:"requested" yaml:"requested"`
	Written   int  `json:"written" yaml:"written"`
	Writes    int  `json:"writes" yaml:"writes"`
	Truncated bool `json:"truncated" yaml:"truncated"`
	// Acks are the per-write counts the server acknowledged.
	Acks []int `json:"acks" yaml:"acks"`
}

// RawBytes implements output.RawRenderer: the acks as the server sent them.
func (r WriteResult) RawBytes() []byte {
	var out []byte
	for _, n := range r.Acks {
		out = append(out, protocol.FormatAck(n)...)
	}
	return out
}

func runWrite(cmd *cobra.Command, args []string) error {
	payload, err := loadPayload(args, writeFile, writeHex, cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	c, err := cmdutil.GetDeviceClient(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	result := WriteResult{Requested: len(payload)}

	if writeSkip > 0 {
		skipped, err := readChunks(ctx, c, writeSkip)
		if err != nil {
			return err
		}
		for _, r := range skipped {
			result.Offset += r.Length
		}
	}

	for _, chunk := range splitChunks(payload, cmdutil.Flags.ChunkSize) {
		n, err := c.Write(ctx, chunk)
		if err != nil {
			return fmt.Errorf("write at offset %d: %w", result.Offset+result.Written, err)
		}
		result.Writes++
		result.Written += n
		result.Acks = append(result.Acks, n)
		cmdutil.Verbosef("wrote %d of %d bytes", n, len(chunk))
		if n < len(chunk) {
			result.Truncated = true
			break
		}
	}

	p, err := cmdutil.Printer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if p.Format() != output.FormatTable {
		return p.Print(result)
	}

	msg := fmt.Sprintf("Wrote %d of %d bytes at offset %d", result.Written, result.Requested, result.Offset)
	if result.Truncated {
		p.Warning(msg + " (truncated at end of device)")
		return nil
	}
	p.Success(msg)
	return nil
}

// loadPayload returns the bytes to write from the argument or --file.
func loadPayload(args []string, file string, isHex bool, stdin io.Reader) ([]byte, error) {
	var raw []byte
	switch {
	case file != "" && len(args) > 0:
		return nil, fmt.Errorf("pass either data or --file, not both")
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		raw = data
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload: %w", err)
		}
		raw = data
	case len(args) == 1:
		raw = []byte(args[0])
	default:
		return nil, fmt.Errorf("no data to write")
	}

	if isHex {
		decoded, err := hex.DecodeString(strings.Join(strings.Fields(string(raw)), ""))
		if err != nil {
			return nil, fmt.Errorf("invalid hex payload: %w", err)
		}
		raw = decoded
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no data to write")
	}
	return raw, nil
}

// splitChunks cuts data into pieces of at most size bytes.
func splitChunks(data []byte, size int) [][]byte {
	if size <= 0 {
		return [][]byte{data}
	}
	chunks := make([][]byte, 0, (len(data)+size-1)/size)
	for len(data) > size {
		chunks = append(chunks, data[:size])
		data = data[size:]
	}
	if len(data) > 0 {
		chunks = append(chunks, data)
	}
	return chunks
}
