// Package protocol defines the single-byte command protocol spoken over the
// resource manager socket.
//
// A client sends one command byte. For CmdRead the server answers with up to
// one chunk of device content; an empty answer means end of device. For
// CmdWrite the client follows the command with up to one chunk of payload in
// a single send and the server answers with an ack ("OK:<n>"). Any other byte
// is answered with UnknownCommandReply and the connection stays open.
// Replies carry no delimiter or length prefix.
package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// Command bytes.
const (
	CmdRead  byte = 'r'
	CmdWrite byte = 'w'
)

// DefaultChunkSize bounds a single read reply or write payload.
const DefaultChunkSize = 1024

// UnknownCommandReply is sent for any unrecognized command byte.
const UnknownCommandReply = "ERROR: Unknown command"

const ackPrefix = "OK:"

// ErrMalformedAck is returned by ParseAck for anything that is not "OK:<n>".
var ErrMalformedAck = errors.New("malformed write acknowledgement")

// Command is a decoded command byte.
type Command uint8

const (
	Unknown Command = iota
	Read
	Write
)

// String returns the command name used in logs, metric labels and spans.
func (c Command) String() string {
	switch c {
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return "unknown"
	}
}

// ParseCommand decodes a command byte. ok is false for unknown bytes.
func ParseCommand(b byte) (cmd Command, ok bool) {
	switch b {
	case CmdRead:
		return Read, true
	case CmdWrite:
		return Write, true
	default:
		return Unknown, false
	}
}

// FormatAck encodes the reply to a write that stored n bytes.
func FormatAck(n int) []byte {
	return strconv.AppendInt([]byte(ackPrefix), int64(n), 10)
}

// ParseAck decodes a write reply.
func ParseAck(b []byte) (int, error) {
	if !bytes.HasPrefix(b, []byte(ackPrefix)) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedAck, b)
	}
	n, err := strconv.Atoi(string(b[len(ackPrefix):]))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedAck, b)
	}
	return n, nil
}

// IsUnknownCommandReply reports whether b is the server's reply to an
// unrecognized command.
func IsUnknownCommandReply(b []byte) bool {
	return string(b) == UnknownCommandReply
}
