package cs1000

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasureCommandOrder(t *testing.T) {
	f := newFakeInstrument()
	d := connectedDevice(t, f)
	ctx := context.Background()

	_, err := d.Measure(ctx)
	require.NoError(t, err)
	assert.Equal(t, append([]string{CmdRemoteOn}, measureSequence()...), f.sent)

	f.reset()
	_, err = d.Measure(ctx)
	require.NoError(t, err)
	assert.Equal(t, measureSequence(), f.sent)
}

func TestMeasureExampleReply(t *testing.T) {
	f := newFakeInstrument()
	d := connectedDevice(t, f)

	m, err := d.Measure(context.Background())
	require.NoError(t, err)

	r := d.Results()
	assert.Equal(t, 12.3, r["Le2"])
	assert.Equal(t, 45.6, r["Lv2"])
	assert.Equal(t, 2.2, r["Y2"])
	assert.Equal(t, 0.2, r["v2"])
	assert.Equal(t, "6500", r["T2"])
	assert.Equal(t, "0.2", r["Duv2"])
	assert.Equal(t, 13.1, r["Le10"])
	assert.Equal(t, "6450", r["T10"])
	assert.Equal(t, "0.21", r["Duv10"])

	assert.Equal(t, m.Observer2.CCT, "6500")
	assert.Equal(t, m.Observer(Observer10).Lv, 46.2)
}

func TestMeasureResultKeys(t *testing.T) {
	d := connectedDevice(t, newFakeInstrument())

	_, err := d.Measure(context.Background())
	require.NoError(t, err)

	want := []string{SpectrumKey}
	for _, suffix := range []string{"2", "10"} {
		for _, name := range []string{"Le", "Lv", "X", "Y", "Z", "x", "y", "u", "v", "T", "Duv"} {
			want = append(want, name+suffix)
		}
	}
	assert.ElementsMatch(t, want, d.Results().Keys())
}

func TestMeasureSpectrum(t *testing.T) {
	d := connectedDevice(t, newFakeInstrument())

	_, err := d.Measure(context.Background())
	require.NoError(t, err)

	spectrum := d.Results().Spectrum()
	require.Len(t, spectrum, 150)
	for i, p := range spectrum {
		assert.Equal(t, 380+i, p.Wavelength)
	}
	assert.Equal(t, 529, spectrum[149].Wavelength)
	// line 3, value 4 of the fake sweep
	assert.Equal(t, 3.4, spectrum[34].Intensity)
}

func TestMeasureSpectrumLengthFollowsReply(t *testing.T) {
	f := newFakeInstrument()
	f.spectral[SpectrumLines-1] = "0.5, 0.25\r\n"
	d := connectedDevice(t, f)

	m, err := d.Measure(context.Background())
	require.NoError(t, err)

	require.Len(t, m.Spectrum, 14*10+2)
	last := m.Spectrum[len(m.Spectrum)-1]
	assert.Equal(t, SpectrumStart+141, last.Wavelength)
	assert.Equal(t, 0.25, last.Intensity)
}

func TestResultsEmptyBeforeMeasure(t *testing.T) {
	d := New()

	r := d.Results()
	require.NotNil(t, r)
	assert.Empty(t, r)

	_, ok := d.Last()
	assert.False(t, ok)
}

func TestResultsAreReplacedNotMerged(t *testing.T) {
	f := newFakeInstrument()
	d := connectedDevice(t, f)
	ctx := context.Background()

	_, err := d.Measure(ctx)
	require.NoError(t, err)

	f.line2 = "1,2,3,4,5,0.1,0.2,0.3,0.4,3000"
	f.spectral[0] = "9"
	_, err = d.Measure(ctx)
	require.NoError(t, err)

	r := d.Results()
	assert.Equal(t, 1.0, r["Le2"])
	assert.Equal(t, "3000", r["T2"])
	assert.Len(t, r.Spectrum(), 14*10+1)
}

func TestResultsReturnsCopy(t *testing.T) {
	d := connectedDevice(t, newFakeInstrument())
	_, err := d.Measure(context.Background())
	require.NoError(t, err)

	r := d.Results()
	r["Le2"] = -1.0
	r.Spectrum()[0].Intensity = -1

	again := d.Results()
	assert.Equal(t, 12.3, again["Le2"])
	assert.Equal(t, 0.0, again.Spectrum()[0].Intensity)
}

func TestMeasureParseErrorKeepsPreviousResults(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fakeInstrument)
		field string
	}{
		{"short 2 degree block", func(f *fakeInstrument) { f.line2 = "1,2,3" }, ""},
		{"non-numeric 10 degree field", func(f *fakeInstrument) { f.line10 = "1,2,3,4,5,6,7,x,9,6500" }, "u"},
		{"non-numeric spectral value", func(f *fakeInstrument) { f.spectral[7] = "1.0,,2.0" }, "intensity[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeInstrument()
			d := connectedDevice(t, f)
			ctx := context.Background()

			_, err := d.Measure(ctx)
			require.NoError(t, err)
			before := d.Results()

			tt.setup(f)
			m, err := d.Measure(ctx)
			require.Nil(t, m)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.field, perr.Field)
			assert.Equal(t, before, d.Results())
		})
	}
}

func TestMeasureTransportFailureKeepsPreviousResults(t *testing.T) {
	boom := errors.New("serial: port closed")
	commands := []string{CmdMeasure, CmdSelect2Deg, CmdSelect10Deg, CmdSelectSpectra, CmdReadData}

	for _, cmd := range commands {
		for _, op := range []string{"write", "read"} {
			t.Run(op+" "+cmd, func(t *testing.T) {
				f := newFakeInstrument()
				d := connectedDevice(t, f)
				ctx := context.Background()

				_, err := d.Measure(ctx)
				require.NoError(t, err)
				before := d.Results()

				if op == "write" {
					f.failWrite[cmd] = boom
				} else {
					f.failRead[cmd] = boom
				}
				f.reset()

				_, err = d.Measure(ctx)
				require.ErrorIs(t, err, boom)

				var terr *TransportError
				require.ErrorAs(t, err, &terr)
				assert.Equal(t, op, terr.Op)
				assert.Equal(t, cmd, terr.Command)
				assert.Equal(t, cmd, f.sent[len(f.sent)-1], "exchange must stop at the failing command")
				assert.Equal(t, before, d.Results())
				assert.True(t, d.Remote())
			})
		}
	}
}

func TestMeasureFailsWhenRemoteCannotBeEnabled(t *testing.T) {
	f := newFakeInstrument()
	boom := errors.New("timeout")
	f.failWrite[CmdRemoteOn] = boom
	d := connectedDevice(t, f)

	_, err := d.Measure(context.Background())

	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{CmdRemoteOn}, f.sent)
	assert.False(t, d.Remote())
	assert.Empty(t, d.Results())
}

func TestMeasureWithoutConnection(t *testing.T) {
	d := New()

	_, err := d.Measure(context.Background())

	require.ErrorIs(t, err, ErrNotConnected)
	assert.Empty(t, d.Results())
}
