// Package cmdutil holds the flag state and helpers shared by the resmgrctl
// subcommands.
package cmdutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/1anyK1/realTime/internal/cli/output"
	"github.com/1anyK1/realTime/pkg/apiclient"
	"github.com/1anyK1/realTime/pkg/client"
)

// GlobalFlags mirrors the persistent flags of the root command.
type GlobalFlags struct {
	Socket       string
	Network      string
	ChunkSize    int
	ReplyTimeout time.Duration
	APIAddress   string
	Output       string
	NoColor      bool
	Verbose      bool
}

// Flags is populated by the root command before any subcommand runs.
var Flags GlobalFlags

// GetDeviceClient dials the device endpoint named by the global flags.
func GetDeviceClient(ctx context.Context) (*client.Client, error) {
	c, err := client.Dial(ctx, Flags.Socket, client.Options{
		Network:      Flags.Network,
		ChunkSize:    Flags.ChunkSize,
		ReplyTimeout: Flags.ReplyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot reach resmgr at %s: %w", Flags.Socket, err)
	}
	return c, nil
}

// GetAPIClient returns a client for the HTTP API.
func GetAPIClient() (*apiclient.Client, error) {
	if Flags.APIAddress == "" {
		return nil, fmt.Errorf("no API address configured\nPass --api host:port (the server needs api.enabled: true)")
	}
	return apiclient.New(Flags.APIAddress).WithTimeout(5 * time.Second), nil
}

// GetOutputFormatParsed parses the --output flag.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// IsColorDisabled reports whether color output is turned off by flag or
// by the NO_COLOR convention.
func IsColorDisabled() bool {
	return Flags.NoColor || os.Getenv("NO_COLOR") != ""
}

// Printer returns a printer for the configured output format.
func Printer(w io.Writer) (*output.Printer, error) {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(w, format, !IsColorDisabled()), nil
}

// PrintOutput prints data in the configured format. In table format an
// empty result prints emptyMsg instead of an empty table. Raw format needs
// data to implement output.RawRenderer and falls back to JSON otherwise.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, table output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	case output.FormatRaw:
		if renderer, ok := data.(output.RawRenderer); ok {
			return output.PrintRaw(w, renderer)
		}
		return output.PrintJSON(w, data)
	default:
		if isEmpty {
			_, _ = fmt.Fprintln(w, emptyMsg)
			return nil
		}
		return output.PrintTable(w, table)
	}
}

// PrintSuccess prints a success line in table mode and stays silent for
// machine-readable formats.
func PrintSuccess(w io.Writer, msg string) {
	p, err := Printer(w)
	if err != nil || p.Format() != output.FormatTable {
		return
	}
	p.Success(msg)
}

// EmptyOr returns fallback when s is empty.
func EmptyOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// Verbosef prints to stderr when --verbose is set.
func Verbosef(format string, args ...any) {
	if Flags.Verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
