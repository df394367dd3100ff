package cs1000

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/Station-Manager/cs1000/serial"
	"github.com/stretchr/testify/require"
)

const (
	example2Deg  = "12.3,45.6,1.1,2.2,3.3,0.33,0.34,0.1,0.2,6500"
	example10Deg = "13.1,46.2,1.2,2.3,3.4,0.331,0.341,0.11,0.21,6450"
)

// fakeInstrument answers like a CS-1000: every command is acknowledged,
// & returns the data line of whichever block BDR selected last.
type fakeInstrument struct {
	sent    []string
	pending []string

	block    string
	specLine int

	line2    string
	line10   string
	spectral []string

	// failWrite fails the first write of the named command.
	failWrite map[string]error
	// failRead makes the first read after the named command fail.
	failRead map[string]error
	readErr  error

	closed   bool
	closeErr error
}

func newFakeInstrument() *fakeInstrument {
	spectral := make([]string, SpectrumLines)
	for i := range spectral {
		vals := make([]string, 10)
		for j := range vals {
			vals[j] = fmt.Sprintf("%d.%d", i, j)
		}
		spectral[i] = strings.Join(vals, ",")
	}
	return &fakeInstrument{
		line2:     example2Deg,
		line10:    example10Deg,
		spectral:  spectral,
		failWrite: map[string]error{},
		failRead:  map[string]error{},
	}
}

func (f *fakeInstrument) WriteCommand(_ context.Context, cmd string) error {
	if f.closed {
		return serial.ErrClosed
	}
	f.sent = append(f.sent, cmd)
	if err, ok := f.failWrite[cmd]; ok {
		delete(f.failWrite, cmd)
		return err
	}
	if err, ok := f.failRead[cmd]; ok {
		delete(f.failRead, cmd)
		f.readErr = err
		return nil
	}

	switch cmd {
	case CmdRemoteOn:
		f.pending = append(f.pending, "OK00")
	case CmdMeasure:
		f.pending = append(f.pending, "OK00", "OK00")
	case CmdSelect2Deg, CmdSelect10Deg, CmdSelectSpectra:
		f.block = cmd
		f.specLine = 0
		f.pending = append(f.pending, "OK00")
	case CmdReadData:
		switch f.block {
		case CmdSelect2Deg:
			f.pending = append(f.pending, f.line2)
		case CmdSelect10Deg:
			f.pending = append(f.pending, f.line10)
		case CmdSelectSpectra:
			f.pending = append(f.pending, f.spectral[f.specLine])
			f.specLine++
		}
	}
	return nil
}

func (f *fakeInstrument) ReadResponse(context.Context) (string, error) {
	if f.closed {
		return "", serial.ErrClosed
	}
	if f.readErr != nil {
		err := f.readErr
		f.readErr = nil
		return "", err
	}
	if len(f.pending) == 0 {
		return "", io.EOF
	}
	line := f.pending[0]
	f.pending = f.pending[1:]
	return line, nil
}

func (f *fakeInstrument) Close() error {
	f.closed = true
	return f.closeErr
}

func (f *fakeInstrument) reset() {
	f.sent = nil
}

func openerFor(clients ...serial.Client) Opener {
	return func(serial.Config) (serial.Client, error) {
		if len(clients) == 0 {
			return nil, fmt.Errorf("no more fake transports")
		}
		c := clients[0]
		clients = clients[1:]
		return c, nil
	}
}

func connectedDevice(t *testing.T, f *fakeInstrument, opts ...Option) *Device {
	t.Helper()
	d := New(append([]Option{WithOpener(openerFor(f))}, opts...)...)
	require.NoError(t, d.Connect(context.Background(), serial.Config{PortName: "/dev/ttyUSB0"}))
	return d
}

// measureSequence is the exact command order of one Measure call with
// remote control already on.
func measureSequence() []string {
	seq := []string{
		CmdMeasure,
		CmdSelect2Deg, CmdReadData,
		CmdSelect10Deg, CmdReadData,
		CmdSelectSpectra,
	}
	for i := 0; i < SpectrumLines; i++ {
		seq = append(seq, CmdReadData)
	}
	return seq
}
