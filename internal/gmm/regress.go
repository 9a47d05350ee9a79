package gmm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Regress conditions the mixture on the time axis over the given grid (an L×1
// column of time values). It returns the expected curve as a (dim)×L matrix
// whose row 0 repeats the grid and whose remaining rows are the conditional
// means, plus one (dim−1)×(dim−1) conditional covariance per grid point.
func (m *Mixture) Regress(grid *mat.Dense) (*mat.Dense, []*mat.Dense, error) {
	if m.priors == nil {
		return nil, nil, fmt.Errorf("mixture not initialized")
	}
	length, gc := grid.Dims()
	if gc != 1 {
		return nil, nil, fmt.Errorf("regression grid must be a column vector, got %d columns", gc)
	}
	out := m.dim - 1
	if out < 1 {
		return nil, nil, fmt.Errorf("mixture dimension %d has no output variables", m.dim)
	}

	// per-state conditional pieces, independent of t
	type statePieces struct {
		muT     float64
		sigmaTT float64
		muY     *mat.VecDense
		gain    *mat.VecDense // Σ_yt / Σ_tt
		condCov *mat.Dense    // Σ_yy − Σ_yt Σ_ty / Σ_tt
	}
	pieces := make([]statePieces, m.states)
	for k := 0; k < m.states; k++ {
		sigmaTT := m.covs[k].At(0, 0)
		if sigmaTT <= 0 {
			return nil, nil, fmt.Errorf("state %d has non-positive time variance", k)
		}
		muY := mat.NewVecDense(out, nil)
		gain := mat.NewVecDense(out, nil)
		for d := 0; d < out; d++ {
			muY.SetVec(d, m.means[k][d+1])
			gain.SetVec(d, m.covs[k].At(d+1, 0)/sigmaTT)
		}
		condCov := mat.NewDense(out, out, nil)
		for r := 0; r < out; r++ {
			for c := 0; c < out; c++ {
				condCov.Set(r, c, m.covs[k].At(r+1, c+1)-m.covs[k].At(r+1, 0)*m.covs[k].At(0, c+1)/sigmaTT)
			}
		}
		pieces[k] = statePieces{
			muT:     m.means[k][0],
			sigmaTT: sigmaTT,
			muY:     muY,
			gain:    gain,
			condCov: condCov,
		}
	}

	mu := mat.NewDense(m.dim, length, nil)
	covs := make([]*mat.Dense, length)
	h := make([]float64, m.states)
	for i := 0; i < length; i++ {
		t := grid.At(i, 0)

		var total float64
		for k := 0; k < m.states; k++ {
			h[k] = m.priors[k] * gaussian1D(t, pieces[k].muT, pieces[k].sigmaTT)
			total += h[k]
		}
		if total <= 0 {
			// grid point far outside every state: weight by priors alone
			copy(h, m.priors)
			total = 1
		}

		mu.Set(0, i, t)
		cov := mat.NewDense(out, out, nil)
		for k := 0; k < m.states; k++ {
			w := h[k] / total
			for d := 0; d < out; d++ {
				y := pieces[k].muY.AtVec(d) + pieces[k].gain.AtVec(d)*(t-pieces[k].muT)
				mu.Set(d+1, i, mu.At(d+1, i)+w*y)
			}
			// conditional covariance blends with squared weights
			var scaled mat.Dense
			scaled.Scale(w*w, pieces[k].condCov)
			cov.Add(cov, &scaled)
		}
		covs[i] = cov
	}
	return mu, covs, nil
}

func gaussian1D(x, mean, variance float64) float64 {
	d := x - mean
	return math.Exp(-d*d/(2*variance)) / math.Sqrt(2*math.Pi*variance)
}
