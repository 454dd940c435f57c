package commands

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/1anyK1/realTime/internal/cli/output"
	"github.com/1anyK1/realTime/pkg/apiclient"
	"github.com/1anyK1/realTime/pkg/config"
)

var (
	statusOutput  string
	statusPidFile string
	statusAPI     string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Display the current status of the resmgr server.

The PID file tells whether a daemon process is alive. When the API server
is enabled the health, readiness and device endpoints are queried too.

Examples:
  # Check status (uses the API address from the configuration)
  resmgr status

  # Check status against a specific API address
  resmgr status --api 127.0.0.1:9080

  # Output as JSON
  resmgr status --output json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusPidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/resmgr/resmgr.pid)")
	statusCmd.Flags().StringVar(&statusAPI, "api", "", "API server address (default: from configuration)")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// ServerStatus represents the server status information.
type ServerStatus struct {
	Running           bool   `json:"running" yaml:"running"`
	PID               int    `json:"pid,omitempty" yaml:"pid,omitempty"`
	Healthy           bool   `json:"healthy" yaml:"healthy"`
	Ready             bool   `json:"ready" yaml:"ready"`
	Message           string `json:"message" yaml:"message"`
	StartedAt         string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime            string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Endpoint          string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	ActiveConnections int32  `json:"active_connections" yaml:"active_connections"`
	Capacity          int    `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	ChunkSize         int    `json:"chunk_size,omitempty" yaml:"chunk_size,omitempty"`
	BytesRead         uint64 `json:"bytes_read" yaml:"bytes_read"`
	BytesWritten      uint64 `json:"bytes_written" yaml:"bytes_written"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	status := ServerStatus{Message: "Server is not running"}

	pidPath := statusPidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}
	if pid, running := isProcessRunning(pidPath); running {
		status.Running = true
		status.PID = pid
		status.Message = "Server process is running"
	}

	addr, err := statusAPIAddress()
	if err != nil {
		return err
	}
	if addr != "" {
		probeAPI(apiclient.New(addr).WithTimeout(2*time.Second), &status)
	} else if status.Running {
		status.Message = "Server process is running (API server disabled)"
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, status)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, status)
	default:
		return printStatusTable(status)
	}
}

// statusAPIAddress returns the API address to query, or "" when the API is
// disabled in the configuration and no --api flag was given.
func statusAPIAddress() (string, error) {
	if statusAPI != "" {
		return statusAPI, nil
	}
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.API.Enabled {
		return "", nil
	}
	return net.JoinHostPort(cfg.API.BindAddress, strconv.Itoa(cfg.API.Port)), nil
}

func probeAPI(client *apiclient.Client, status *ServerStatus) {
	live, err := client.Health()
	if err != nil {
		if status.Running {
			status.Message = "Server process exists but health check failed"
		}
		return
	}

	status.Running = true
	status.Healthy = true
	status.StartedAt = live.StartedAt.Format(time.RFC3339)
	status.Uptime = live.Uptime

	ready, err := client.Ready()
	if err != nil {
		status.Message = fmt.Sprintf("Server is running but not ready: %v", err)
		return
	}
	status.Ready = true
	status.Endpoint = ready.Network + ":" + ready.Address
	status.ActiveConnections = ready.ActiveConnections
	status.Message = "Server is running and accepting connections"

	if dev, err := client.Device(); err == nil {
		status.Capacity = dev.Capacity
		status.ChunkSize = dev.ChunkSize
		status.BytesRead = dev.Stats.BytesRead
		status.BytesWritten = dev.Stats.BytesWritten
	}
}

func printStatusTable(status ServerStatus) error {
	state := "\033[31m○ Stopped\033[0m"
	switch {
	case status.Ready:
		state = "\033[32m● Running\033[0m"
	case status.Running:
		state = "\033[33m● Running (not ready)\033[0m"
	}

	pairs := [][2]string{{"Status", state}}
	if status.PID != 0 {
		pairs = append(pairs, [2]string{"PID", strconv.Itoa(status.PID)})
	}
	if status.StartedAt != "" {
		pairs = append(pairs,
			[2]string{"Started", status.StartedAt},
			[2]string{"Uptime", status.Uptime})
	}
	if status.Endpoint != "" {
		pairs = append(pairs,
			[2]string{"Endpoint", status.Endpoint},
			[2]string{"Connections", strconv.Itoa(int(status.ActiveConnections))})
	}
	if status.Capacity != 0 {
		pairs = append(pairs,
			[2]string{"Capacity", strconv.Itoa(status.Capacity)},
			[2]string{"Chunk size", strconv.Itoa(status.ChunkSize)},
			[2]string{"Bytes read", strconv.FormatUint(status.BytesRead, 10)},
			[2]string{"Bytes written", strconv.FormatUint(status.BytesWritten, 10)})
	}

	fmt.Println()
	if err := output.SimpleTable(os.Stdout, pairs); err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("  %s\n\n", status.Message)
	return nil
}
