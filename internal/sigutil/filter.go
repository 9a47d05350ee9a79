package sigutil

import "gonum.org/v1/gonum/mat"

// Chebyshev applies the gravity low-pass to a matrix organized as rows =
// axes, cols = time, returning the filtered copy. The input is left intact;
// the result is the gravity component, body = input − result.
func Chebyshev(f *LowPass, m *mat.Dense) *mat.Dense {
	rows, cols := m.Dims()
	out := mat.NewDense(rows, cols, nil)
	row := make([]float64, cols)
	for r := 0; r < rows; r++ {
		mat.Row(row, r, m)
		f.Apply(row)
		out.SetRow(r, row)
	}
	return out
}
