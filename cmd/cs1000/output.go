package main

import (
	"fmt"
	"io"

	"github.com/Station-Manager/cs1000"
	"github.com/Station-Manager/cs1000/config"
	"github.com/goccy/go-json"
)

type printer struct {
	format string
	w      io.Writer
}

func newPrinter(format string, w io.Writer) *printer {
	return &printer{format: format, w: w}
}

// print writes one measurement. JSON output is one object per line keyed the
// same way as Device.Results.
func (p *printer) print(n int, m *cs1000.Measurement) error {
	r := m.Results()
	if p.format == config.FormatText {
		return p.text(n, m, r)
	}
	line, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	_, err = fmt.Fprintf(p.w, "%s\n", line)
	return err
}

func (p *printer) text(n int, m *cs1000.Measurement, r cs1000.Results) error {
	if _, err := fmt.Fprintf(p.w, "measurement %d at %s\n", n, m.TakenAt.Format("2006-01-02 15:04:05")); err != nil {
		return err
	}
	for _, k := range r.Keys() {
		if k == cs1000.SpectrumKey {
			continue
		}
		if _, err := fmt.Fprintf(p.w, "  %-6s %v\n", k, r[k]); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(p.w, "  spectrum (%d points)\n", len(m.Spectrum)); err != nil {
		return err
	}
	for _, pt := range m.Spectrum {
		if _, err := fmt.Fprintf(p.w, "    %d %g\n", pt.Wavelength, pt.Intensity); err != nil {
			return err
		}
	}
	return nil
}
