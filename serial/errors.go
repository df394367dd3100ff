package serial

import "errors"

var (
	ErrClosed          = errors.New("serial: port closed")
	ErrInvalidPortName = errors.New("serial: invalid port name")
	ErrZeroWrite       = errors.New("serial: write returned 0 bytes")
	ErrLineTooLong     = errors.New("serial: response line exceeds maximum length, dropped")
)
