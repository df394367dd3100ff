package cs1000

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when a command is issued without an open transport.
	ErrNotConnected = errors.New("cs1000: not connected")
	// ErrShortReply indicates a data line carried fewer fields than the block requires.
	ErrShortReply = errors.New("cs1000: reply has too few fields")
)

// TransportError wraps a failure of the serial channel.
type TransportError struct {
	// Op is one of "connect", "write", "read" or "close".
	Op      string
	Command string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("cs1000: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("cs1000: %s %q: %v", e.Op, e.Command, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError reports a reply line that could not be decoded.
type ParseError struct {
	Command string
	Line    string
	// Field names the value being decoded, empty when the line as a whole is malformed.
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("cs1000: parse reply to %q (%q): %v", e.Command, e.Line, e.Err)
	}
	return fmt.Sprintf("cs1000: parse %s in reply to %q (%q): %v", e.Field, e.Command, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
