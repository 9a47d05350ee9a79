// Package device decodes raw sensor lines into acceleration samples. Every
// supported wrist unit emits whitespace-separated integer lines of the form
//
//	dev ax ay az gx gy gz motion_flag
//
// and a driver turns one line into a 1×3 row of accelerations in m/s². The
// gyroscope triple and the flags are discarded.
package device

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Device converts one raw line from a sensor into a 1×3 acceleration row.
// Implementations own the device-specific scaling from coded counts to m/s².
type Device interface {
	Name() string
	ExtractActual(line string) (*mat.Dense, error)
}

// New returns the driver registered under the given name.
func New(name string) (Device, error) {
	switch strings.ToLower(name) {
	case "mpu6050":
		return NewMPU6050(), nil
	}
	return nil, fmt.Errorf("unknown device %q", name)
}

// parseLine splits a raw line and returns the three accelerometer counts.
func parseLine(line string) (ax, ay, az int, err error) {
	fields := strings.Fields(line)
	if len(fields) != 8 {
		return 0, 0, 0, fmt.Errorf("truncated sample: got %d fields, want 8", len(fields))
	}
	raw := make([]int, 3)
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("bad acceleration field %q: %w", fields[i+1], err)
		}
		raw[i] = v
	}
	return raw[0], raw[1], raw[2], nil
}
