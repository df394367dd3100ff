package serial

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"
)

// Client is the high-level interface for sending line commands and
// receiving line responses over a serial port.
type Client interface {
	// WriteCommand writes a single command string to the port.
	// Implementations will append the configured line delimiter if missing.
	WriteCommand(ctx context.Context, cmd string) error

	// ReadResponse reads a single response line terminated by the
	// configured delimiter.
	ReadResponse(ctx context.Context) (string, error)

	// Close closes the underlying port. It is safe to call multiple times.
	Close() error
}

// Port is the concrete implementation of Client backed by go.bug.st/serial.
type Port struct {
	port SerialPort

	cfg Config

	writeMu sync.Mutex

	responses chan []byte
	errs      chan error
	closeCh   chan struct{}
	doneCh    chan struct{}

	// readErr holds the error that stopped the reader loop, if any.
	readErr atomic.Error
	closed  atomic.Bool

	closeOnce sync.Once
	closeErr  error

	metrics metrics
}

var _ Client = (*Port)(nil)

// Open opens a serial port with the given configuration.
func Open(cfg Config) (*Port, error) {
	cfg, err := validateConfig(cfg)
	if err != nil {
		return nil, err
	}

	mode, err := cfg.mode()
	if err != nil {
		return nil, err
	}

	p, err := openPort(cfg.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", cfg.PortName, err)
	}

	if cfg.ReadTimeout > 0 {
		if err := p.SetReadTimeout(cfg.ReadTimeout); err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("setting read timeout: %w", err)
		}
	}

	return newPort(p, cfg), nil
}

// newPort constructs a Port around an existing SerialPort.
func newPort(sp SerialPort, cfg Config) *Port {
	if cfg.LineDelimiter == 0 {
		cfg.LineDelimiter = DefaultLineDelimiter
	}

	po := &Port{
		port:      sp,
		cfg:       cfg,
		responses: make(chan []byte, 64),
		errs:      make(chan error, 8),
		closeCh:   make(chan struct{}),
		doneCh:    make(chan struct{}),
	}

	go po.readerLoop()

	return po
}

// Stats returns a snapshot of the port's transfer counters.
func (p *Port) Stats() Stats {
	return p.metrics.snapshot()
}

// Errors streams non-fatal reader problems such as dropped oversize lines.
// The channel is closed when the reader loop exits.
func (p *Port) Errors() <-chan error {
	return p.errs
}

// WriteCommand implements Client.
func (p *Port) WriteCommand(ctx context.Context, cmd string) error {
	return p.WriteCommandBytes(ctx, []byte(cmd))
}

// WriteCommandBytes writes cmd followed by the delimiter (if not already present).
func (p *Port) WriteCommandBytes(ctx context.Context, cmd []byte) error {
	if p.closed.Load() {
		return ErrClosed
	}

	if len(cmd) == 0 {
		return nil
	}

	data := cmd
	if cmd[len(cmd)-1] != p.cfg.LineDelimiter {
		data = make([]byte, 0, len(cmd)+1)
		data = append(data, cmd...)
		data = append(data, p.cfg.LineDelimiter)
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	written := 0
	for written < len(data) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := p.port.Write(data[written:])
		written += n
		if err != nil {
			p.metrics.recordWrite(written, err)
			return err
		}
		if n == 0 {
			p.metrics.recordWrite(written, ErrZeroWrite)
			return ErrZeroWrite
		}
	}

	p.metrics.recordWrite(written, nil)
	return nil
}

// ReadResponse implements Client.
func (p *Port) ReadResponse(ctx context.Context) (string, error) {
	line, err := p.ReadResponseBytes(ctx)
	if err != nil {
		return "", err
	}
	return string(line), nil
}

// ReadResponseBytes returns the next framed line without its delimiter.
func (p *Port) ReadResponseBytes(ctx context.Context) ([]byte, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case line, ok := <-p.responses:
		if !ok {
			if err := p.readErr.Load(); err != nil {
				return nil, err
			}
			return nil, ErrClosed
		}
		return line, nil
	}
}

// Exec is a convenience that writes a command then reads one response.
func (p *Port) Exec(ctx context.Context, cmd string) (string, error) {
	if err := p.WriteCommand(ctx, cmd); err != nil {
		return "", err
	}
	return p.ReadResponse(ctx)
}

// ExecBytes is the byte-slice form of Exec.
func (p *Port) ExecBytes(ctx context.Context, cmd []byte) ([]byte, error) {
	if err := p.WriteCommandBytes(ctx, cmd); err != nil {
		return nil, err
	}
	return p.ReadResponseBytes(ctx)
}

// Close implements Client.
func (p *Port) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.closeCh)

		// Close the underlying port first to unblock any in-flight Read calls.
		if p.closeErr = p.port.Close(); p.closeErr != nil {
			return
		}

		// Wait for the reader loop to finish cleanup.
		<-p.doneCh
	})
	return p.closeErr
}

// readerLoop continuously reads from the serial port and emits
// complete lines onto the response channel.
func (p *Port) readerLoop() {
	defer close(p.doneCh)
	defer close(p.errs)
	defer close(p.responses)

	buf := getReadBuf()
	defer putReadBuf(buf)

	var lineBuf []byte
	overflow := false

	for {
		select {
		case <-p.closeCh:
			return
		default:
		}

		n, err := p.port.Read(buf)
		if err != nil {
			select {
			case <-p.closeCh:
			default:
				p.metrics.readErrors.Inc()
				p.readErr.Store(fmt.Errorf("serial read: %w", err))
			}
			return
		}
		if n == 0 {
			// read timeout with nothing received
			continue
		}
		p.metrics.bytesRead.Add(int64(n))

		chunk := buf[:n]
		for len(chunk) > 0 {
			idx := bytes.IndexByte(chunk, p.cfg.LineDelimiter)
			if idx == -1 {
				if !overflow {
					lineBuf = append(lineBuf, chunk...)
					if len(lineBuf) > maxLineSize {
						overflow = true
						lineBuf = lineBuf[:0]
						p.dropLine()
					}
				}
				break
			}

			if !overflow {
				lineBuf = append(lineBuf, chunk[:idx]...)
			}
			switch {
			case overflow:
				// tail of a dropped line
				overflow = false
			case len(lineBuf) > maxLineSize:
				p.dropLine()
			default:
				line := bytes.TrimSuffix(lineBuf, []byte{'\r'})
				out := make([]byte, len(line))
				copy(out, line)
				p.metrics.recordLine()
				select {
				case p.responses <- out:
				case <-p.closeCh:
					return
				}
			}
			lineBuf = lineBuf[:0]

			chunk = chunk[idx+1:]
		}
	}
}

func (p *Port) dropLine() {
	p.metrics.droppedLines.Inc()
	p.reportErr(ErrLineTooLong)
}

// reportErr is best-effort: a full channel drops the notification.
func (p *Port) reportErr(err error) {
	select {
	case p.errs <- err:
	default:
	}
}
