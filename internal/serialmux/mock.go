package serialmux

import (
	"io"
	"strings"
)

// mockPort wraps a plain reader as a Porter.
type mockPort struct {
	io.Reader
}

func (*mockPort) Close() error { return nil }

// NewMock creates a Mux fed from a fixed block of recorded lines. It is used
// by tests and by dev mode, where a recorded trial stands in for hardware.
func NewMock(lines string) *Mux {
	return New(&mockPort{Reader: strings.NewReader(lines)})
}
