package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"
)

func TestMuRoundTrip(t *testing.T) {
	// 4×3 in-memory curve: time row plus three axes
	mu := mat.NewDense(4, 3, []float64{
		1, 2, 3,
		0.5, -1.25, 9.81,
		0, 0.001, -0.001,
		100, 200, 300,
	})
	path := filepath.Join(t.TempDir(), "testMuGravity.txt")
	if err := SaveMu(path, mu); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadMu(path)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(mu, loaded) {
		t.Errorf("round trip mismatch:\nwant\n%v\ngot\n%v", mat.Formatted(mu), mat.Formatted(loaded))
	}

	// re-serializing a loaded file reproduces it byte for byte
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	path2 := filepath.Join(t.TempDir(), "again.txt")
	if err := SaveMu(path2, loaded); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(path2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(string(first), string(second)); diff != "" {
		t.Errorf("re-serialized file differs (-first +second):\n%s", diff)
	}
}

func TestMuFileLayout(t *testing.T) {
	// The file is time-major: header cols,rows then one line per time index.
	path := filepath.Join(t.TempDir(), "mu.txt")
	content := "4,2\n1,10,20,30\n2,11,21,31\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	mu, err := LoadMu(path)
	if err != nil {
		t.Fatal(err)
	}
	r, c := mu.Dims()
	if r != 4 || c != 2 {
		t.Fatalf("loaded dims %dx%d, want 4x2", r, c)
	}
	// row 0 is the time index
	if mu.At(0, 0) != 1 || mu.At(0, 1) != 2 {
		t.Errorf("time row = %v %v, want 1 2", mu.At(0, 0), mu.At(0, 1))
	}
	if mu.At(3, 1) != 31 {
		t.Errorf("axis 3 at t=2 is %v, want 31", mu.At(3, 1))
	}
}

func TestSigmaRoundTrip(t *testing.T) {
	slices := []*mat.Dense{
		mat.NewDense(3, 3, []float64{1, 0.1, 0, 0.1, 2, 0, 0, 0, 3}),
		mat.NewDense(3, 3, []float64{4, 0, 0.5, 0, 5, 0, 0.5, 0, 6}),
	}
	path := filepath.Join(t.TempDir(), "testSigmaBody.txt")
	if err := SaveSigma(path, slices); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadSigma(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != len(slices) {
		t.Fatalf("loaded %d slices, want %d", len(loaded), len(slices))
	}
	for i := range slices {
		if !mat.Equal(slices[i], loaded[i]) {
			t.Errorf("slice %d mismatch:\nwant\n%v\ngot\n%v", i, mat.Formatted(slices[i]), mat.Formatted(loaded[i]))
		}
	}
}

func TestLoadMuErrors(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"short.txt":  "4,3\n1,2,3,4\n",
		"header.txt": "4\n",
		"value.txt":  "2,1\n1,x\n",
		"shape.txt":  "0,3\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadMu(path); err == nil {
				t.Error("expected load error")
			}
		})
	}
	if _, err := LoadMu(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
