package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1anyK1/realTime/cmd/resmgrctl/cmdutil"
	"github.com/1anyK1/realTime/internal/cli/output"
)

var (
	contentsOffset int
	contentsLength int
)

var contentsCmd = &cobra.Command{
	Use:   "contents",
	Short: "Show device contents through the API",
	Long: `Fetch a snapshot of the device through the HTTP API.

Unlike 'dump' this does not open a device connection and does not count
as a read in the device statistics.

Examples:
  resmgrctl contents --api 127.0.0.1:8080
  resmgrctl contents --api 127.0.0.1:8080 --offset 16 --length 32`,
	Args: cobra.NoArgs,
	RunE: runContents,
}

func init() {
	contentsCmd.Flags().IntVar(&contentsOffset, "offset", 0, "First byte to show")
	contentsCmd.Flags().IntVar(&contentsLength, "length", -1, "Number of bytes to show (-1 for the rest of the device)")
}

func runContents(cmd *cobra.Command, args []string) error {
	api, err := cmdutil.GetAPIClient()
	if err != nil {
		return err
	}

	contents, err := api.DeviceContents(contentsOffset, contentsLength)
	if err != nil {
		return fmt.Errorf("failed to fetch device contents: %w", err)
	}

	dump := output.HexDump{Base: contents.Offset, Data: contents.Data}
	return cmdutil.PrintOutput(cmd.OutOrStdout(), contents, len(contents.Data) == 0, "No bytes in range.", dump)
}
