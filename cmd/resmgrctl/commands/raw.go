package commands

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/1anyK1/realTime/cmd/resmgrctl/cmdutil"
	"github.com/1anyK1/realTime/internal/cli/output"
	"github.com/1anyK1/realTime/pkg/protocol"
)

var rawCmd = &cobra.Command{
	Use:   "raw <byte>",
	Short: "Send a single command byte",
	Long: `Send one command byte and print the reply.

The byte is a single character or a number such as 0x71. Commands other
than 'r' and 'w' are answered with an error message and leave the
connection open.

Examples:
  resmgrctl raw x
  resmgrctl raw 0x00`,
	Args: cobra.ExactArgs(1),
	RunE: runRaw,
}

// RawResult is the reply to a raw command.
type RawResult struct {
	Command byte   `json:"command" yaml:"command"`
	Reply   string `json:"reply" yaml:"reply"`
	Length  int    `json:"length" yaml:"length"`
	Unknown bool   `json:"unknown_command" yaml:"unknown_command"`
}

// RawBytes implements output.RawRenderer.
func (r RawResult) RawBytes() []byte {
	return []byte(r.Reply)
}

func runRaw(cmd *cobra.Command, args []string) error {
	b, err := parseCommandByte(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	c, err := cmdutil.GetDeviceClient(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	reply, err := c.Raw(ctx, b)
	if err != nil {
		return err
	}

	result := RawResult{
		Command: b,
		Reply:   string(reply),
		Length:  len(reply),
		Unknown: protocol.IsUnknownCommandReply(reply),
	}

	p, err := cmdutil.Printer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if p.Format() != output.FormatTable {
		return p.Print(result)
	}

	switch {
	case len(reply) == 0:
		p.Println("(empty reply)")
	case isPrintable(reply):
		p.Println(string(reply))
	default:
		return output.PrintTable(p.Writer(), output.HexDump{Data: reply})
	}
	return nil
}

// parseCommandByte accepts a single character or a numeric byte value
// in any base strconv understands (0x71, 0o161, 113).
func parseCommandByte(s string) (byte, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	n, err := strconv.ParseUint(strings.TrimSpace(s), 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid command byte %q: use one character or a number from 0 to 255", s)
	}
	return byte(n), nil
}

func isPrintable(p []byte) bool {
	for _, r := range string(p) {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
