package serial

import (
	"strings"
	"time"
)

const (
	// DefaultBaudRate is the rate the CS-1000 ships configured for.
	DefaultBaudRate = Baud19200

	// DefaultLineDelimiter frames both commands and replies.
	DefaultLineDelimiter byte = '\n'
)

// Config holds configuration for opening a serial port.
type Config struct {
	// PortName is the path to the serial device, e.g. /dev/ttyUSB0 or COM3.
	PortName string `yaml:"port" validate:"required"`

	BaudRate int     `yaml:"baud_rate" validate:"oneof=1200 2400 4800 9600 19200 38400 57600 115200 230400 460800 921600"`
	DataBits int     `yaml:"data_bits" validate:"min=5,max=8"`
	Parity   string  `yaml:"parity" validate:"omitempty,oneof=N E O M S"`
	StopBits float64 `yaml:"stop_bits" validate:"stopbits"`

	// ReadTimeout is the underlying port read timeout. Zero blocks until data arrives.
	ReadTimeout time.Duration `yaml:"read_timeout" validate:"min=0"`

	// LineDelimiter is the byte used to frame commands and responses.
	// If zero, '\n' is used.
	LineDelimiter byte `yaml:"-"`
}

// withDefaults fills zero-valued fields.
func (c Config) withDefaults() Config {
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate.Int()
	}
	if c.DataBits == 0 {
		c.DataBits = DataBits8.Int()
	}
	c.Parity = strings.ToUpper(c.Parity)
	if c.Parity == "" {
		c.Parity = "N"
	}
	if c.StopBits == 0 {
		c.StopBits = 1
	}
	if c.LineDelimiter == 0 {
		c.LineDelimiter = DefaultLineDelimiter
	}
	return c
}

// WithDefaults returns a copy of c with every unset field given its default.
func (c Config) WithDefaults() Config {
	return c.withDefaults()
}
