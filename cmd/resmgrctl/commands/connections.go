package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/1anyK1/realTime/cmd/resmgrctl/cmdutil"
	"github.com/1anyK1/realTime/pkg/apiclient"
)

var connectionsCmd = &cobra.Command{
	Use:     "connections",
	Aliases: []string{"conns"},
	Short:   "List open client connections",
	Args:    cobra.NoArgs,
	RunE:    runConnections,
}

// ConnectionTable renders connections as a table.
type ConnectionTable struct {
	list *apiclient.ConnectionList
	now  time.Time
}

// Headers implements TableRenderer.
func (t ConnectionTable) Headers() []string {
	return []string{"ID", "REMOTE", "CONNECTED", "AGE"}
}

// Rows implements TableRenderer.
func (t ConnectionTable) Rows() [][]string {
	rows := make([][]string, 0, len(t.list.Connections))
	for _, c := range t.list.Connections {
		rows = append(rows, []string{
			c.ID,
			cmdutil.EmptyOr(c.RemoteAddr, "-"),
			c.ConnectedAt.Format(time.RFC3339),
			t.now.Sub(c.ConnectedAt).Round(time.Second).String(),
		})
	}
	return rows
}

func runConnections(cmd *cobra.Command, args []string) error {
	api, err := cmdutil.GetAPIClient()
	if err != nil {
		return err
	}

	list, err := api.Connections()
	if err != nil {
		return fmt.Errorf("failed to list connections: %w", err)
	}

	return cmdutil.PrintOutput(cmd.OutOrStdout(), list, list.Count == 0,
		"No open connections.", ConnectionTable{list: list, now: time.Now()})
}
