package cs1000

import (
	"context"
	"errors"

	"github.com/Station-Manager/cs1000/serial"
	"github.com/rs/zerolog"
)

// Opener opens the transport a Device talks through.
type Opener func(cfg serial.Config) (serial.Client, error)

// OpenSerial is the default Opener, backed by serial.Open.
func OpenSerial(cfg serial.Config) (serial.Client, error) {
	return serial.Open(cfg)
}

// Option configures a Device.
type Option func(*Device)

// WithLogger sets the logger for protocol traffic and lifecycle events.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Device) { d.log = log }
}

// WithOpener replaces the transport factory used by Connect.
func WithOpener(open Opener) Option {
	return func(d *Device) { d.open = open }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(d *Device) { d.metrics = m }
}

// Device is a CS-1000 reached through one serial transport.
type Device struct {
	log     zerolog.Logger
	open    Opener
	metrics *Metrics

	com    serial.Client
	remote bool
	last   *Measurement
}

// New returns an unconnected Device.
func New(opts ...Option) *Device {
	d := &Device{
		log:  zerolog.Nop(),
		open: OpenSerial,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Connected reports whether a transport is open.
func (d *Device) Connected() bool {
	return d.com != nil
}

// Remote reports whether remote control is on.
func (d *Device) Remote() bool {
	return d.remote
}

// Connect opens the serial port described by cfg. An existing connection
// has remote control turned off and is closed first.
//
// A failure to release the previous connection does not stop the new one
// from being opened, but it is returned, joined with any open error.
func (d *Device) Connect(ctx context.Context, cfg serial.Config) error {
	var prevErr error
	if d.remote {
		if err := d.SetRemote(ctx, false); err != nil {
			d.log.Warn().Err(err).Msg("turning off remote control on previous connection")
			prevErr = err
		}
	}
	if d.com != nil {
		if err := d.closeTransport(); err != nil {
			d.log.Warn().Err(err).Msg("closing previous connection")
			prevErr = errors.Join(prevErr, err)
		}
	}

	cfg = cfg.WithDefaults()
	com, err := d.open(cfg)
	if err != nil {
		return errors.Join(prevErr, &TransportError{Op: "connect", Err: err})
	}
	d.com = com
	d.log.Info().Str("port", cfg.PortName).Int("baud", cfg.BaudRate).Msg("connected")
	return prevErr
}

// Disconnect turns remote control off if needed and closes the transport.
// The Device is disconnected afterwards even when an error is returned.
func (d *Device) Disconnect(ctx context.Context) error {
	var errs []error
	if d.remote {
		if err := d.SetRemote(ctx, false); err != nil {
			errs = append(errs, err)
		}
	}
	if d.com != nil {
		if err := d.closeTransport(); err != nil {
			errs = append(errs, err)
		}
	}
	d.log.Info().Msg("disconnected")
	return errors.Join(errs...)
}

// SetRemote turns remote control on or off. It does nothing when the
// instrument is already in the requested state.
//
// Turning remote control off does not wait for a reply and invalidates the
// transport: Connect must be called again before the Device is reused.
func (d *Device) SetRemote(ctx context.Context, on bool) error {
	switch {
	case on && !d.remote:
		d.log.Info().Msg("turning on remote control")
		if _, err := d.exchange(ctx, CmdRemoteOn, 1); err != nil {
			return err
		}
		d.remote = true
		d.metrics.setRemote(true)
	case !on && d.remote:
		d.log.Info().Msg("turning off remote control")
		werr := d.send(ctx, CmdRemoteOff)
		d.remote = false
		d.metrics.setRemote(false)
		var cerr error
		if d.com != nil {
			cerr = d.closeTransport()
		}
		return errors.Join(werr, cerr)
	}
	return nil
}

// closeTransport closes and forgets the current transport.
func (d *Device) closeTransport() error {
	com := d.com
	d.com = nil
	if st, ok := com.(interface{ Stats() serial.Stats }); ok {
		s := st.Stats()
		d.log.Debug().
			Int64("bytes_written", s.BytesWritten).
			Int64("bytes_read", s.BytesRead).
			Int64("lines_read", s.LinesRead).
			Int64("dropped_lines", s.DroppedLines).
			Msg("closing transport")
	}
	if err := com.Close(); err != nil {
		return &TransportError{Op: "close", Err: err}
	}
	return nil
}

// send writes one command line.
func (d *Device) send(ctx context.Context, cmd string) error {
	if d.com == nil {
		return &TransportError{Op: "write", Command: cmd, Err: ErrNotConnected}
	}
	d.log.Debug().Str("cmd", cmd).Msg("sent")
	d.metrics.command(cmd)
	if err := d.com.WriteCommand(ctx, cmd); err != nil {
		return &TransportError{Op: "write", Command: cmd, Err: err}
	}
	return nil
}

// exchange writes cmd and reads exactly n reply lines.
func (d *Device) exchange(ctx context.Context, cmd string, n int) ([]string, error) {
	if err := d.send(ctx, cmd); err != nil {
		return nil, err
	}
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		line, err := d.com.ReadResponse(ctx)
		if err != nil {
			return nil, &TransportError{Op: "read", Command: cmd, Err: err}
		}
		d.log.Debug().Str("line", line).Msg("received")
		lines = append(lines, line)
	}
	return lines, nil
}
