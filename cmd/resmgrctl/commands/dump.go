package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1anyK1/realTime/cmd/resmgrctl/cmdutil"
	"github.com/1anyK1/realTime/internal/cli/output"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Read the whole device",
	Long: `Read from offset 0 until end of device and print a hex dump.

Examples:
  resmgrctl dump
  resmgrctl dump -o json`,
	Args: cobra.NoArgs,
	RunE: runDump,
}

func runDump(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	c, err := cmdutil.GetDeviceClient(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	data, err := c.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("dump failed after %d bytes: %w", len(data), err)
	}

	return cmdutil.PrintOutput(cmd.OutOrStdout(), output.HexDump{Data: data},
		len(data) == 0, "Device is empty.", output.HexDump{Data: data})
}
