package model

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Mean-curve files carry a "cols,rows" header followed by rows CSV lines of
// cols floats each; the stored layout is time-major (one line per time index)
// and the loaded matrix is the transpose, so in memory row 0 is the time
// index and rows 1..3 the axes. Covariance files carry a "rows,cols,slices"
// header followed by slices CSV blocks, one covariance matrix per time index.

// LoadMu reads a mean-curve file and returns the transposed in-memory layout.
func LoadMu(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	header, err := headerInts(sc, 2)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cols, rows := header[0], header[1]
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%s: bad shape %dx%d", path, cols, rows)
	}

	m := mat.NewDense(cols, rows, nil)
	for r := 0; r < rows; r++ {
		values, err := csvFloats(sc, cols)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, r+2, err)
		}
		for c, v := range values {
			m.Set(c, r, v)
		}
	}
	return m, nil
}

// SaveMu writes a mean curve (in-memory layout, rows = time+axes, cols = time
// indices) in the documented time-major file format.
func SaveMu(path string, mu *mat.Dense) error {
	rows, cols := mu.Dims()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%d,%d\n", rows, cols)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			if r > 0 {
				w.WriteByte(',')
			}
			w.WriteString(formatFloat(mu.At(r, c)))
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// LoadSigma reads a covariance-sequence file into one matrix per time index.
func LoadSigma(path string) ([]*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	header, err := headerInts(sc, 3)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rows, cols, slices := header[0], header[1], header[2]
	if rows <= 0 || cols <= 0 || slices <= 0 {
		return nil, fmt.Errorf("%s: bad shape %dx%dx%d", path, rows, cols, slices)
	}

	out := make([]*mat.Dense, slices)
	for s := 0; s < slices; s++ {
		m := mat.NewDense(rows, cols, nil)
		for r := 0; r < rows; r++ {
			values, err := csvFloats(sc, cols)
			if err != nil {
				return nil, fmt.Errorf("%s slice %d line %d: %w", path, s, r, err)
			}
			m.SetRow(r, values)
		}
		out[s] = m
	}
	return out, nil
}

// SaveSigma writes a covariance sequence in the documented block format.
func SaveSigma(path string, slices []*mat.Dense) error {
	if len(slices) == 0 {
		return fmt.Errorf("empty covariance sequence")
	}
	rows, cols := slices[0].Dims()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%d,%d,%d\n", rows, cols, len(slices))
	for _, s := range slices {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				if c > 0 {
					w.WriteByte(',')
				}
				w.WriteString(formatFloat(s.At(r, c)))
			}
			w.WriteByte('\n')
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func headerInts(sc *bufio.Scanner, n int) ([]int, error) {
	if !sc.Scan() {
		return nil, fmt.Errorf("missing shape header: %w", sc.Err())
	}
	fields := strings.Split(strings.TrimSpace(sc.Text()), ",")
	if len(fields) != n {
		return nil, fmt.Errorf("shape header has %d fields, want %d", len(fields), n)
	}
	out := make([]int, n)
	for i, s := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("bad shape field %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}

func csvFloats(sc *bufio.Scanner, n int) ([]float64, error) {
	if !sc.Scan() {
		return nil, fmt.Errorf("unexpected end of file: %w", sc.Err())
	}
	fields := strings.Split(strings.TrimSpace(sc.Text()), ",")
	if len(fields) != n {
		return nil, fmt.Errorf("got %d values, want %d", len(fields), n)
	}
	out := make([]float64, n)
	for i, s := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}
