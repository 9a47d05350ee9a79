package sigutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func newTestFilter(t *testing.T) *LowPass {
	t.Helper()
	f, err := NewLowPass(FilterOrder, SampleRateHz, CutoffHz, PassRippleDB)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestNewLowPassRejectsBadParams(t *testing.T) {
	cases := []struct {
		name                      string
		order                     int
		sample, cutoff, rippleDB  float64
	}{
		{"zero order", 0, 32, 0.25, 0.001},
		{"cutoff above nyquist", 2, 32, 20, 0.001},
		{"zero cutoff", 2, 32, 0, 0.001},
		{"zero ripple", 2, 32, 0.25, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewLowPass(tc.order, tc.sample, tc.cutoff, tc.rippleDB); err == nil {
				t.Error("expected design error")
			}
		})
	}
}

// A constant input settles to itself: each section has unity DC gain.
func TestLowPassDCGain(t *testing.T) {
	f := newTestFilter(t)
	samples := make([]float64, 4096)
	for i := range samples {
		samples[i] = 9.81
	}
	f.Apply(samples)
	if got := samples[len(samples)-1]; math.Abs(got-9.81) > 1e-3 {
		t.Errorf("DC response settled at %v, want 9.81", got)
	}
}

// The filter starts from zero state every Apply, so it is linear:
// F(a*x + b*y) == a*F(x) + b*F(y).
func TestLowPassLinearity(t *testing.T) {
	f := newTestFilter(t)
	const n = 256
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = math.Sin(2 * math.Pi * float64(i) / 37)
		y[i] = math.Cos(2 * math.Pi * float64(i) / 11)
	}
	const a, b = 2.5, -0.75

	combined := make([]float64, n)
	for i := 0; i < n; i++ {
		combined[i] = a*x[i] + b*y[i]
	}

	fx := append([]float64(nil), x...)
	fy := append([]float64(nil), y...)
	f.Apply(fx)
	f.Apply(fy)
	f.Apply(combined)

	for i := 0; i < n; i++ {
		want := a*fx[i] + b*fy[i]
		if math.Abs(combined[i]-want) > 1e-9 {
			t.Fatalf("linearity violated at %d: got %v, want %v", i, combined[i], want)
		}
	}
}

// A tone well above the corner frequency is attenuated. The 0.001 dB ripple
// makes this a shallow Chebyshev, so the order-2 stop-band is gentle; the
// 8 Hz tone should still lose most of its amplitude.
func TestLowPassAttenuatesHighFrequency(t *testing.T) {
	f := newTestFilter(t)
	const n = 2048
	samples := make([]float64, n)
	for i := range samples {
		// 8 Hz tone at 32 Hz sampling, 5 octaves above the 0.25 Hz corner
		samples[i] = math.Sin(2 * math.Pi * 8 * float64(i) / SampleRateHz)
	}
	f.Apply(samples)

	var peak float64
	for _, v := range samples[n/2:] {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak > 0.25 {
		t.Errorf("8 Hz tone passed with amplitude %v, want < 0.25", peak)
	}
}

func TestChebyshevMatrixChannels(t *testing.T) {
	f := newTestFilter(t)
	// rows = axes, cols = time; constant per-axis input
	m := mat.NewDense(3, 512, nil)
	for c := 0; c < 512; c++ {
		m.Set(0, c, 1)
		m.Set(1, c, 2)
		m.Set(2, c, -3)
	}
	out := Chebyshev(f, m)
	for r, want := range []float64{1, 2, -3} {
		if got := out.At(r, 511); math.Abs(got-want) > 1e-3 {
			t.Errorf("channel %d settled at %v, want %v", r, got, want)
		}
	}
	// input untouched
	if got := m.At(2, 0); got != -3 {
		t.Errorf("input mutated: m[2,0] = %v", got)
	}
}
