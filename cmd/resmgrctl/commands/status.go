package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/1anyK1/realTime/cmd/resmgrctl/cmdutil"
	"github.com/1anyK1/realTime/internal/cli/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Display health, readiness and device statistics of the server
through the HTTP API.

Examples:
  resmgrctl status --api 127.0.0.1:8080
  resmgrctl status --api 127.0.0.1:8080 -o json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

// ServerStatus represents the server status for display.
type ServerStatus struct {
	Server            string `json:"server" yaml:"server"`
	Status            string `json:"status" yaml:"status"`
	Healthy           bool   `json:"healthy" yaml:"healthy"`
	Ready             bool   `json:"ready" yaml:"ready"`
	Uptime            string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Endpoint          string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	ActiveConnections int32  `json:"active_connections" yaml:"active_connections"`
	Capacity          int    `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	ChunkSize         int    `json:"chunk_size,omitempty" yaml:"chunk_size,omitempty"`
	Reads             uint64 `json:"reads" yaml:"reads"`
	Writes            uint64 `json:"writes" yaml:"writes"`
	BytesRead         uint64 `json:"bytes_read" yaml:"bytes_read"`
	BytesWritten      uint64 `json:"bytes_written" yaml:"bytes_written"`
	Error             string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Headers implements TableRenderer.
func (s ServerStatus) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (s ServerStatus) Rows() [][]string {
	rows := [][]string{
		{"Server", s.Server},
		{"Status", s.Status},
	}
	if s.Uptime != "" {
		rows = append(rows, []string{"Uptime", s.Uptime})
	}
	if s.Endpoint != "" {
		rows = append(rows,
			[]string{"Endpoint", s.Endpoint},
			[]string{"Connections", strconv.Itoa(int(s.ActiveConnections))})
	}
	if s.Capacity != 0 {
		rows = append(rows,
			[]string{"Capacity", strconv.Itoa(s.Capacity)},
			[]string{"Chunk size", strconv.Itoa(s.ChunkSize)},
			[]string{"Reads", fmt.Sprintf("%d (%d bytes)", s.Reads, s.BytesRead)},
			[]string{"Writes", fmt.Sprintf("%d (%d bytes)", s.Writes, s.BytesWritten)})
	}
	if s.Error != "" {
		rows = append(rows, []string{"Error", s.Error})
	}
	return rows
}

func runStatus(cmd *cobra.Command, args []string) error {
	api, err := cmdutil.GetAPIClient()
	if err != nil {
		return err
	}

	status := ServerStatus{Server: api.BaseURL(), Status: "unreachable"}

	if live, err := api.Health(); err != nil {
		status.Error = err.Error()
	} else {
		status.Healthy = true
		status.Status = "healthy"
		status.Uptime = live.Uptime
	}

	if status.Healthy {
		if ready, err := api.Ready(); err != nil {
			status.Status = "not ready"
			status.Error = err.Error()
		} else {
			status.Ready = true
			status.Status = "ready"
			status.Endpoint = ready.Network + ":" + ready.Address
			status.ActiveConnections = ready.ActiveConnections
		}

		if dev, err := api.Device(); err == nil {
			status.Capacity = dev.Capacity
			status.ChunkSize = dev.ChunkSize
			status.Reads = dev.Stats.Reads
			status.Writes = dev.Stats.Writes
			status.BytesRead = dev.Stats.BytesRead
			status.BytesWritten = dev.Stats.BytesWritten
		}
	}

	return cmdutil.PrintOutput(cmd.OutOrStdout(), status, false, "", status)
}

var _ output.TableRenderer = ServerStatus{}
