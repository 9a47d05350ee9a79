package gmm

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
)

// SaveParams writes the raw mixture parameters (priors, means, covariances)
// to a text snapshot. The snapshot is a training-time artifact kept next to
// the regression output for offline inspection; the classifier never reads it.
func (m *Mixture) SaveParams(path string) error {
	if m.priors == nil {
		return fmt.Errorf("mixture not initialized")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%d,%d\n", m.states, m.dim)
	for k := 0; k < m.states; k++ {
		w.WriteString(formatFloat(m.priors[k]))
		if k < m.states-1 {
			w.WriteByte(',')
		}
	}
	w.WriteByte('\n')
	for k := 0; k < m.states; k++ {
		for d := 0; d < m.dim; d++ {
			if d > 0 {
				w.WriteByte(',')
			}
			w.WriteString(formatFloat(m.means[k][d]))
		}
		w.WriteByte('\n')
		for r := 0; r < m.dim; r++ {
			for c := 0; c < m.dim; c++ {
				if c > 0 {
					w.WriteByte(',')
				}
				w.WriteString(formatFloat(m.covs[k].At(r, c)))
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
