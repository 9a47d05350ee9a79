package serialmux

import (
	"time"

	"go.bug.st/serial"
)

// The wrist unit streams text lines at 9600 8N1.
const readTimeout = time.Second

// NewReal creates a Mux backed by a real serial port at the given path.
func NewReal(path string) (*Mux, error) {
	mode := &serial.Mode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, err
	}

	return New(port), nil
}
