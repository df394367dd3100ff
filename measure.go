package cs1000

import (
	"context"
	"time"
)

// Measure triggers a single measurement and reads back the 2° block, the
// 10° block and the spectral sweep, in that order. Remote control is turned
// on first if needed.
//
// On success the returned Measurement replaces the stored one. On any error
// the stored Measurement is left as it was.
func (d *Device) Measure(ctx context.Context) (m *Measurement, err error) {
	d.log.Info().Msg("measuring")
	start := time.Now()
	defer func() {
		d.metrics.measurement(time.Since(start), err)
		if err != nil {
			d.log.Error().Err(err).Msg("measurement aborted")
		}
	}()

	if !d.remote {
		if err := d.SetRemote(ctx, true); err != nil {
			return nil, err
		}
	}

	// acknowledgement, then completion
	if _, err := d.exchange(ctx, CmdMeasure, 2); err != nil {
		return nil, err
	}

	obs2, err := d.readColorimetric(ctx, Observer2)
	if err != nil {
		return nil, err
	}
	obs10, err := d.readColorimetric(ctx, Observer10)
	if err != nil {
		return nil, err
	}
	spectrum, err := d.readSpectrum(ctx)
	if err != nil {
		return nil, err
	}

	m = &Measurement{
		Observer2:  obs2,
		Observer10: obs10,
		Spectrum:   spectrum,
		TakenAt:    start,
	}
	d.last = m
	d.log.Info().Int("points", len(spectrum)).Msg("measuring completed")
	return m, nil
}

func (d *Device) readColorimetric(ctx context.Context, o Observer) (Colorimetric, error) {
	if _, err := d.exchange(ctx, selectCommand(o), 1); err != nil {
		return Colorimetric{}, err
	}
	lines, err := d.exchange(ctx, CmdReadData, 1)
	if err != nil {
		return Colorimetric{}, err
	}
	c, err := parseColorimetric(lines[0])
	if err != nil {
		return Colorimetric{}, err
	}
	d.log.Debug().Int("observer", int(o)).Float64("Lv", c.Lv).Str("T", c.CCT).Msg("colorimetric block")
	return c, nil
}

func (d *Device) readSpectrum(ctx context.Context) ([]SpectralPoint, error) {
	if _, err := d.exchange(ctx, CmdSelectSpectra, 1); err != nil {
		return nil, err
	}
	var intensities []float64
	for i := 0; i < SpectrumLines; i++ {
		lines, err := d.exchange(ctx, CmdReadData, 1)
		if err != nil {
			return nil, err
		}
		values, err := parseSpectralLine(lines[0])
		if err != nil {
			return nil, err
		}
		intensities = append(intensities, values...)
	}
	return spectrumFrom(intensities), nil
}

// Results returns the keyed view of the last successful measurement, or an
// empty map if there has been none.
func (d *Device) Results() Results {
	if d.last == nil {
		return Results{}
	}
	return d.last.Results()
}

// Last returns the last successful measurement.
func (d *Device) Last() (*Measurement, bool) {
	return d.last, d.last != nil
}
