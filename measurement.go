package cs1000

import (
	"sort"
	"strconv"
	"time"
)

// Observer selects the CIE standard observer of a colorimetric block.
type Observer int

const (
	Observer2  Observer = 2
	Observer10 Observer = 10
)

// Suffix is the key suffix used for this observer in Results.
func (o Observer) Suffix() string {
	return strconv.Itoa(int(o))
}

// Colorimetric is one decoded BDR,1 data block.
type Colorimetric struct {
	Le float64 `json:"Le"`
	Lv float64 `json:"Lv"`
	X  float64 `json:"X"`
	Y  float64 `json:"Y"`
	Z  float64 `json:"Z"`
	// Chromaticity x, y (CIE 1931).
	SmallX float64 `json:"x"`
	SmallY float64 `json:"y"`
	// Chromaticity u', v' (CIE 1976).
	UPrime float64 `json:"u"`
	VPrime float64 `json:"v"`

	// CCT is the correlated color temperature token exactly as received.
	CCT string `json:"T"`
	// Duv is the raw token at the same position as v'. The reply is
	// decoded only up to index 9, so Duv repeats v' rather than carrying
	// its own field.
	Duv string `json:"Duv"`
}

// SpectralPoint is one sample of the spectral sweep.
type SpectralPoint struct {
	Wavelength int     `json:"wavelength"` // nm
	Intensity  float64 `json:"intensity"`
}

// Measurement is the decoded result of one Measure call.
type Measurement struct {
	Observer2  Colorimetric    `json:"observer2"`
	Observer10 Colorimetric    `json:"observer10"`
	Spectrum   []SpectralPoint `json:"spectrum"`
	TakenAt    time.Time       `json:"taken_at"`
}

// Observer returns the block for o.
func (m *Measurement) Observer(o Observer) Colorimetric {
	if o == Observer10 {
		return m.Observer10
	}
	return m.Observer2
}

// SpectrumKey is the Results key of the spectral sweep.
const SpectrumKey = "spectrum"

// Results is the keyed view of a Measurement: Le2 … Duv2, Le10 … Duv10 and
// spectrum. T and Duv values are strings, spectrum is []SpectralPoint and
// every other value is a float64.
type Results map[string]any

// Results builds a fresh keyed view of m.
func (m *Measurement) Results() Results {
	r := make(Results, 2*11+1)
	m.Observer2.put(r, Observer2.Suffix())
	m.Observer10.put(r, Observer10.Suffix())
	spectrum := make([]SpectralPoint, len(m.Spectrum))
	copy(spectrum, m.Spectrum)
	r[SpectrumKey] = spectrum
	return r
}

func (c Colorimetric) put(r Results, suffix string) {
	r["Le"+suffix] = c.Le
	r["Lv"+suffix] = c.Lv
	r["X"+suffix] = c.X
	r["Y"+suffix] = c.Y
	r["Z"+suffix] = c.Z
	r["x"+suffix] = c.SmallX
	r["y"+suffix] = c.SmallY
	r["u"+suffix] = c.UPrime
	r["v"+suffix] = c.VPrime
	r["T"+suffix] = c.CCT
	r["Duv"+suffix] = c.Duv
}

// Keys returns the keys of r in sorted order.
func (r Results) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Float returns the float64 stored under key.
func (r Results) Float(key string) (float64, bool) {
	f, ok := r[key].(float64)
	return f, ok
}

// Raw returns the unparsed token stored under key (T* and Duv*).
func (r Results) Raw(key string) (string, bool) {
	s, ok := r[key].(string)
	return s, ok
}

// Spectrum returns the spectral sweep, or nil when absent.
func (r Results) Spectrum() []SpectralPoint {
	s, _ := r[SpectrumKey].([]SpectralPoint)
	return s
}
