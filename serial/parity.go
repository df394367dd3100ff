package serial

import (
	"fmt"
	"strings"

	gobug "go.bug.st/serial"
)

type Parity gobug.Parity

func (pa Parity) Get() gobug.Parity {
	return gobug.Parity(pa)
}

const (
	// ParityNone represents no parity bit
	ParityNone = Parity(gobug.NoParity)
	// ParityOdd represents odd parity bit
	ParityOdd = Parity(gobug.OddParity)
	// ParityEven represents even parity bit
	ParityEven = Parity(gobug.EvenParity)
	// ParityMark represents mark parity bit (always 1)
	ParityMark = Parity(gobug.MarkParity)
	// ParitySpace represents space parity bit (always 0)
	ParitySpace = Parity(gobug.SpaceParity)
)

// ParseParity maps the single-letter config form (N, E, O, M, S) to a Parity.
func ParseParity(s string) (Parity, error) {
	switch strings.ToUpper(s) {
	case "", "N":
		return ParityNone, nil
	case "E":
		return ParityEven, nil
	case "O":
		return ParityOdd, nil
	case "M":
		return ParityMark, nil
	case "S":
		return ParitySpace, nil
	}
	return ParityNone, fmt.Errorf("unsupported parity %q (use N, E, O, M or S)", s)
}
