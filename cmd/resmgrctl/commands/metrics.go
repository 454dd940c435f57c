package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1anyK1/realTime/cmd/resmgrctl/cmdutil"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Print Prometheus metrics",
	Long: `Print the server's Prometheus metrics in the text exposition format.

The server needs metrics.enabled and api.enabled.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := cmdutil.GetAPIClient()
		if err != nil {
			return err
		}
		text, err := api.Metrics()
		if err != nil {
			return fmt.Errorf("failed to fetch metrics: %w", err)
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), text)
		return err
	},
}
