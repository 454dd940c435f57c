package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/1anyK1/realTime/cmd/resmgrctl/cmdutil"
	"github.com/1anyK1/realTime/internal/cli/output"
	"github.com/1anyK1/realTime/pkg/client"
)

var readCount int

var readCmd = &cobra.Command{
	Use:     "read",
	Aliases: []string{"r"},
	Short:   "Read chunks from the device",
	Long: `Send 'r' commands over one connection and print each chunk.

The cursor starts at offset 0 and advances by the bytes returned. An empty
reply means the cursor reached the end of the device.

Examples:
  # Read the first chunk
  resmgrctl read

  # Read three chunks
  resmgrctl read -n 3

  # Read until end of device
  resmgrctl read -n 0 -o json

  # Print the reply bytes as received
  resmgrctl r -o raw`,
	Args: cobra.NoArgs,
	RunE: runRead,
}

func init() {
	readCmd.Flags().IntVarP(&readCount, "count", "n", 1, "Number of reads (0 reads until end of device)")
}

// ReadResult is one reply to a read command.
type ReadResult struct {
	Offset int    `json:"offset" yaml:"offset"`
	Length int    `json:"length" yaml:"length"`
	Data   []byte `json:"data,omitempty" yaml:"data,omitempty"`
	EOD    bool   `json:"eod" yaml:"eod"`
}

// ReadResults are the replies of one read command in order.
type ReadResults []ReadResult

// RawBytes implements output.RawRenderer: the reply payloads back to back.
func (r ReadResults) RawBytes() []byte {
	var out []byte
	for _, res := range r {
		out = append(out, res.Data...)
	}
	return out
}

func runRead(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	c, err := cmdutil.GetDeviceClient(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	results, err := readChunks(ctx, c, readCount)
	if err != nil {
		return err
	}

	p, err := cmdutil.Printer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if p.Format() != output.FormatTable {
		return p.Print(ReadResults(results))
	}
	return printReadTable(cmd.OutOrStdout(), results)
}

// readChunks issues up to count reads, stopping early at end of device.
// count <= 0 reads until end of device.
func readChunks(ctx context.Context, c *client.Client, count int) ([]ReadResult, error) {
	var results []ReadResult
	offset := 0

	for i := 0; count <= 0 || i < count; i++ {
		data, err := c.Read(ctx)
		if errors.Is(err, client.ErrEndOfDevice) {
			results = append(results, ReadResult{Offset: offset, EOD: true})
			break
		}
		if err != nil {
			return results, fmt.Errorf("read at offset %d: %w", offset, err)
		}

		cmdutil.Verbosef("read %d bytes at offset %d", len(data), offset)
		results = append(results, ReadResult{Offset: offset, Length: len(data), Data: data})
		offset += len(data)
	}
	return results, nil
}

func printReadTable(w io.Writer, results []ReadResult) error {
	for _, r := range results {
		if r.EOD {
			_, _ = fmt.Fprintf(w, "end of device at offset %d\n", r.Offset)
			continue
		}
		if err := output.PrintTable(w, output.HexDump{Base: r.Offset, Data: r.Data}); err != nil {
			return err
		}
	}
	return nil
}
