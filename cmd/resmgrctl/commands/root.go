// Package commands implements the CLI commands for the resmgrctl client.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/1anyK1/realTime/cmd/resmgrctl/cmdutil"
	"github.com/1anyK1/realTime/pkg/client"
	"github.com/1anyK1/realTime/pkg/config"
	"github.com/1anyK1/realTime/pkg/protocol"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "resmgrctl",
	Short: "resmgr Control - device client",
	Long: `resmgrctl talks to a running resmgr server.

Device commands (read, write, dump, raw) speak the single-byte protocol over
the server socket. Each invocation opens one connection, so its cursor
starts at offset 0. Inspection commands (status, connections, contents,
metrics) use the HTTP API.

Use "resmgrctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		cmdutil.Flags.Socket, _ = flags.GetString("socket")
		cmdutil.Flags.Network, _ = flags.GetString("network")
		cmdutil.Flags.ChunkSize, _ = flags.GetInt("chunk-size")
		cmdutil.Flags.ReplyTimeout, _ = flags.GetDuration("reply-timeout")
		cmdutil.Flags.APIAddress, _ = flags.GetString("api")
		cmdutil.Flags.Output, _ = flags.GetString("output")
		cmdutil.Flags.NoColor, _ = flags.GetBool("no-color")
		cmdutil.Flags.Verbose, _ = flags.GetBool("verbose")
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("socket", config.DefaultSocketPath, "Server socket path (or host:port with --network tcp)")
	pf.String("network", "unix", "Server network (unix|tcp)")
	pf.Int("chunk-size", protocol.DefaultChunkSize, "Server chunk size in bytes")
	pf.Duration("reply-timeout", client.DefaultReplyTimeout, "How long to wait for a reply before treating it as end of device")
	pf.String("api", "", "API server address (host:port)")
	pf.StringP("output", "o", "table", "Output format (table|json|yaml|raw)")
	pf.Bool("no-color", false, "Disable colored output")
	pf.BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(rawCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(connectionsCmd)
	rootCmd.AddCommand(contentsCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(completionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
