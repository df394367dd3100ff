package cs1000

import (
	"fmt"
	"strconv"
	"strings"
)

// Commands understood by the instrument. Each is sent newline-terminated.
const (
	CmdRemoteOn      = "RMT,1"
	CmdRemoteOff     = "RMT,0"
	CmdMeasure       = "MES,1"
	CmdSelect2Deg    = "BDR,1,0,0"
	CmdSelect10Deg   = "BDR,1,1,0"
	CmdSelectSpectra = "BDR,0,0,0"
	CmdReadData      = "&"
)

const (
	// SpectrumStart is the wavelength of the first spectral sample, in nm.
	SpectrumStart = 380
	// SpectrumLines is the number of & reads that make up the spectral block.
	SpectrumLines = 15

	// colorimetricFields is how many leading tokens of a BDR,1 line are decoded.
	colorimetricFields = 10
)

// selectCommand returns the BDR command for the observer's colorimetric block.
func selectCommand(o Observer) string {
	if o == Observer10 {
		return CmdSelect10Deg
	}
	return CmdSelect2Deg
}

func splitFields(line string) []string {
	tokens := strings.Split(strings.TrimSpace(line), ",")
	for i, t := range tokens {
		tokens[i] = strings.TrimSpace(t)
	}
	return tokens
}

var colorimetricNames = [...]string{"Le", "Lv", "X", "Y", "Z", "x", "y", "u", "v"}

// parseColorimetric decodes a BDR,1 data line. Tokens 0-8 are numeric,
// token 9 is the color temperature kept verbatim, and Duv is read from
// token 8 (the same token as v').
func parseColorimetric(line string) (Colorimetric, error) {
	tokens := splitFields(line)
	if len(tokens) < colorimetricFields {
		return Colorimetric{}, &ParseError{
			Command: CmdReadData,
			Line:    line,
			Err:     fmt.Errorf("%w: want %d, got %d", ErrShortReply, colorimetricFields, len(tokens)),
		}
	}

	var v [len(colorimetricNames)]float64
	for i, name := range colorimetricNames {
		f, err := strconv.ParseFloat(tokens[i], 64)
		if err != nil {
			return Colorimetric{}, &ParseError{Command: CmdReadData, Line: line, Field: name, Err: err}
		}
		v[i] = f
	}

	return Colorimetric{
		Le:     v[0],
		Lv:     v[1],
		X:      v[2],
		Y:      v[3],
		Z:      v[4],
		SmallX: v[5],
		SmallY: v[6],
		UPrime: v[7],
		VPrime: v[8],
		CCT:    tokens[9],
		Duv:    tokens[8],
	}, nil
}

// parseSpectralLine decodes one & reply of the spectral block.
func parseSpectralLine(line string) ([]float64, error) {
	tokens := splitFields(line)
	out := make([]float64, 0, len(tokens))
	for i, t := range tokens {
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, &ParseError{
				Command: CmdReadData,
				Line:    line,
				Field:   fmt.Sprintf("intensity[%d]", i),
				Err:     err,
			}
		}
		out = append(out, f)
	}
	return out, nil
}

// spectrumFrom pairs each intensity with its wavelength, starting at SpectrumStart.
func spectrumFrom(intensities []float64) []SpectralPoint {
	points := make([]SpectralPoint, len(intensities))
	for i, v := range intensities {
		points[i] = SpectralPoint{Wavelength: SpectrumStart + i, Intensity: v}
	}
	return points
}
