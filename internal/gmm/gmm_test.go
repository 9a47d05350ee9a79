package gmm

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/wearable-data/hmpdetector/internal/monitoring"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

// twoPhaseData builds a (time, x) dataset with a clean step: x ≈ 0 for the
// first half of the time axis, x ≈ 10 for the second half.
func twoPhaseData(n int) *mat.Dense {
	data := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		t := float64(i + 1)
		x := 0.0
		if i >= n/2 {
			x = 10
		}
		// small deterministic wobble so covariances are non-degenerate
		x += 0.1 * math.Sin(float64(i))
		data.Set(i, 0, t)
		data.Set(i, 1, x)
	}
	return data
}

func TestInitTimeSplit(t *testing.T) {
	data := twoPhaseData(100)
	m, err := New(2)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.InitTimeSplit(data); err != nil {
		t.Fatal(err)
	}

	var total float64
	for _, p := range m.priors {
		total += p
	}
	if math.Abs(total-1) > 1e-12 {
		t.Errorf("priors sum to %v, want 1", total)
	}
	// equal-occupancy bins: state 0 covers early times, state 1 late times
	if !(m.means[0][0] < m.means[1][0]) {
		t.Errorf("time means not ordered: %v vs %v", m.means[0][0], m.means[1][0])
	}
	if math.Abs(m.means[0][1]) > 1 {
		t.Errorf("early-phase x mean = %v, want ~0", m.means[0][1])
	}
	if math.Abs(m.means[1][1]-10) > 1 {
		t.Errorf("late-phase x mean = %v, want ~10", m.means[1][1])
	}
}

func TestInitTimeSplitTooFewSamples(t *testing.T) {
	m, err := New(5)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.InitTimeSplit(mat.NewDense(3, 2, nil)); err == nil {
		t.Error("expected error for 3 samples into 5 states")
	}
}

func TestEMAndRegress(t *testing.T) {
	data := twoPhaseData(100)
	m, err := New(2)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.InitTimeSplit(data); err != nil {
		t.Fatal(err)
	}
	if err := m.EM(data); err != nil {
		t.Fatal(err)
	}

	grid := mat.NewDense(100, 1, nil)
	for i := 0; i < 100; i++ {
		grid.Set(i, 0, float64(i+1))
	}
	mu, covs, err := m.Regress(grid)
	if err != nil {
		t.Fatal(err)
	}

	r, c := mu.Dims()
	if r != 2 || c != 100 {
		t.Fatalf("regressed curve dims %dx%d, want 2x100", r, c)
	}
	if len(covs) != 100 {
		t.Fatalf("got %d covariance slices, want 100", len(covs))
	}
	// row 0 repeats the grid
	if mu.At(0, 0) != 1 || mu.At(0, 99) != 100 {
		t.Errorf("time row = %v..%v, want 1..100", mu.At(0, 0), mu.At(0, 99))
	}
	// deep in each phase the regression recovers the phase level
	if got := mu.At(1, 19); math.Abs(got) > 0.5 {
		t.Errorf("regression at t=20 is %v, want ~0", got)
	}
	if got := mu.At(1, 79); math.Abs(got-10) > 0.5 {
		t.Errorf("regression at t=80 is %v, want ~10", got)
	}
	for i, cov := range covs {
		cr, cc := cov.Dims()
		if cr != 1 || cc != 1 {
			t.Fatalf("cov slice %d dims %dx%d, want 1x1", i, cr, cc)
		}
		if cov.At(0, 0) < 0 {
			t.Errorf("cov slice %d negative: %v", i, cov.At(0, 0))
		}
	}
}

func TestEMRequiresInit(t *testing.T) {
	m, err := New(2)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.EM(twoPhaseData(10)); err == nil {
		t.Error("expected error for EM before init")
	}
}

func TestRegressGridShape(t *testing.T) {
	data := twoPhaseData(40)
	m, _ := New(2)
	if err := m.InitTimeSplit(data); err != nil {
		t.Fatal(err)
	}
	if _, _, err := m.Regress(mat.NewDense(4, 2, nil)); err == nil {
		t.Error("expected error for non-column grid")
	}
}

func TestSaveParams(t *testing.T) {
	data := twoPhaseData(40)
	m, _ := New(2)
	if err := m.InitTimeSplit(data); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "drinkGMMgravity.txt")
	if err := m.SaveParams(path); err != nil {
		t.Fatal(err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	// header + priors + per state: 1 mean line + dim cov lines
	want := 2 + 2*(1+2)
	if len(lines) != want {
		t.Errorf("snapshot has %d lines, want %d", len(lines), want)
	}
	if lines[0] != "2,2" {
		t.Errorf("header = %q, want \"2,2\"", lines[0])
	}
}
