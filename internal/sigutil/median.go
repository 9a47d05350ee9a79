// Package sigutil holds the signal helpers shared by the model creator and the
// streaming classifier: a row-wise median filter, a Chebyshev Type I low-pass
// cascade used to split gravity from body acceleration, and small matrix
// helpers.
package sigutil

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// MedianFilter smooths each row of m in place with a symmetric window of the
// given size. At the row edges the window is truncated on the short side and
// the missing positions stay at zero, so edge medians are computed against a
// zero-padded window.
func MedianFilter(m *mat.Dense, size int) error {
	if size <= 0 {
		return fmt.Errorf("median filter size must be positive, got %d", size)
	}
	rows, cols := m.Dims()
	step := size / 2

	out := mat.NewDense(rows, cols, nil)
	window := make([]float64, size)
	for r := 0; r < rows; r++ {
		for i := 0; i < cols; i++ {
			for k := range window {
				window[k] = 0
			}
			switch {
			case i >= step && i <= cols-1-step:
				for k := 0; k < size; k++ {
					window[k] = m.At(r, i-step+k)
				}
			case i < step:
				// leading edge: keep the samples up to i+step, zeros elsewhere
				for k := 0; k <= i+step && k < cols; k++ {
					window[step-i+k] = m.At(r, k)
				}
			default:
				// trailing edge: keep the last samples from i-step on, zeros elsewhere
				for k := 0; i-step+k < cols; k++ {
					window[k] = m.At(r, i-step+k)
				}
			}
			out.Set(r, i, median(window))
		}
	}
	m.Copy(out)
	return nil
}

func median(window []float64) float64 {
	tmp := make([]float64, len(window))
	copy(tmp, window)
	sort.Float64s(tmp)
	return tmp[len(tmp)/2]
}

// Interval returns a column vector [start, start+1, ..., stop]. It is used to
// prepend a time column to training data and to form the regression grid.
func Interval(start, stop int) *mat.Dense {
	n := stop - start + 1
	v := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		v.Set(i, 0, float64(start+i))
	}
	return v
}
