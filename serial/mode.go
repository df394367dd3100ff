package serial

import (
	gobug "go.bug.st/serial"
)

type BaudRate int

func (b BaudRate) Int() int {
	return int(b)
}

const (
	Baud1200   BaudRate = 1200
	Baud2400   BaudRate = 2400
	Baud4800   BaudRate = 4800
	Baud9600   BaudRate = 9600
	Baud19200  BaudRate = 19200
	Baud38400  BaudRate = 38400
	Baud57600  BaudRate = 57600
	Baud115200 BaudRate = 115200
)

type DataBits int

func (d DataBits) Int() int {
	return int(d)
}

const (
	DataBits7 DataBits = 7
	DataBits8 DataBits = 8
)

// mode translates a validated Config into the go.bug.st/serial line settings.
func (c Config) mode() (*gobug.Mode, error) {
	parity, err := ParseParity(c.Parity)
	if err != nil {
		return nil, err
	}
	stop, err := ParseStopBits(c.StopBits)
	if err != nil {
		return nil, err
	}
	return &gobug.Mode{
		BaudRate: BaudRate(c.BaudRate).Int(),
		DataBits: DataBits(c.DataBits).Int(),
		Parity:   parity.Get(),
		StopBits: stop.Get(),
	}, nil
}
