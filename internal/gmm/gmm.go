// Package gmm fits Gaussian Mixture Models over time-stamped samples and
// regresses them against the time axis (GMR). The creator feeds it datasets
// whose first column is a time index and whose remaining columns are the
// tri-axial acceleration of one motion component; the regression output is the
// time-indexed mean curve and covariance sequence persisted as a dynamic
// model.
package gmm

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/wearable-data/hmpdetector/internal/monitoring"
)

const (
	// EM stops when the average log-likelihood improves by less than this.
	emTolerance = 1e-6
	// EM iteration cap; hitting it keeps the best-so-far parameters.
	emMaxIter = 100
	// varianceFloor is added to covariance diagonals to keep them invertible.
	varianceFloor = 1e-6
)

// Mixture is a Gaussian mixture over column-vector samples. The zero value is
// not usable; call New and initialize with InitTimeSplit before EM.
type Mixture struct {
	states int
	dim    int
	priors []float64
	means  [][]float64
	covs   []*mat.SymDense
}

// New returns an untrained mixture with the given number of states.
func New(states int) (*Mixture, error) {
	if states <= 0 {
		return nil, fmt.Errorf("mixture needs at least one state, got %d", states)
	}
	return &Mixture{states: states}, nil
}

// States returns the number of mixture components.
func (m *Mixture) States() int { return m.states }

// InitTimeSplit seeds the mixture by slicing the dataset into equal-occupancy
// bins along the time axis (column 0) and computing one Gaussian per bin.
// Samples are rows of data.
func (m *Mixture) InitTimeSplit(data *mat.Dense) error {
	n, dim := data.Dims()
	if n < m.states {
		return fmt.Errorf("%d samples cannot seed %d states", n, m.states)
	}
	m.dim = dim

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return data.At(order[a], 0) < data.At(order[b], 0)
	})

	m.priors = make([]float64, m.states)
	m.means = make([][]float64, m.states)
	m.covs = make([]*mat.SymDense, m.states)
	for k := 0; k < m.states; k++ {
		lo := k * n / m.states
		hi := (k + 1) * n / m.states
		bin := mat.NewDense(hi-lo, dim, nil)
		for i := lo; i < hi; i++ {
			bin.SetRow(i-lo, data.RawRowView(order[i]))
		}

		mean := make([]float64, dim)
		for d := 0; d < dim; d++ {
			mean[d] = stat.Mean(mat.Col(nil, d, bin), nil)
		}
		cov := mat.NewSymDense(dim, nil)
		stat.CovarianceMatrix(cov, bin, nil)
		applyFloor(cov)

		m.priors[k] = float64(hi-lo) / float64(n)
		m.means[k] = mean
		m.covs[k] = cov
	}
	return nil
}

// EM refines the mixture by expectation-maximization until the average
// log-likelihood converges or the iteration cap is reached. Hitting the cap is
// not an error: the best parameters seen so far are kept.
func (m *Mixture) EM(data *mat.Dense) error {
	if m.priors == nil {
		return fmt.Errorf("mixture not initialized")
	}
	n, dim := data.Dims()
	if dim != m.dim {
		return fmt.Errorf("data dimension %d != mixture dimension %d", dim, m.dim)
	}

	resp := mat.NewDense(n, m.states, nil)
	logw := make([]float64, m.states)
	prev := math.Inf(-1)
	for iter := 0; iter < emMaxIter; iter++ {
		dists, err := m.normals()
		if err != nil {
			return err
		}

		// E step: responsibilities in log space
		var loglik float64
		for i := 0; i < n; i++ {
			x := data.RawRowView(i)
			for k := 0; k < m.states; k++ {
				logw[k] = math.Log(m.priors[k]) + dists[k].LogProb(x)
			}
			total := floats.LogSumExp(logw)
			loglik += total
			for k := 0; k < m.states; k++ {
				resp.Set(i, k, math.Exp(logw[k]-total))
			}
		}

		// M step
		for k := 0; k < m.states; k++ {
			var nk float64
			mean := make([]float64, dim)
			for i := 0; i < n; i++ {
				r := resp.At(i, k)
				nk += r
				floats.AddScaled(mean, r, data.RawRowView(i))
			}
			if nk < 1e-12 {
				// starved state: keep its previous parameters
				continue
			}
			floats.Scale(1/nk, mean)

			cov := mat.NewSymDense(dim, nil)
			diff := make([]float64, dim)
			for i := 0; i < n; i++ {
				floats.SubTo(diff, data.RawRowView(i), mean)
				cov.SymRankOne(cov, resp.At(i, k)/nk, mat.NewVecDense(dim, diff))
			}
			applyFloor(cov)

			m.priors[k] = nk / float64(n)
			m.means[k] = mean
			m.covs[k] = cov
		}

		avg := loglik / float64(n)
		if avg-prev < emTolerance && iter > 0 {
			return nil
		}
		prev = avg
	}
	monitoring.Logf("gmm: EM hit the %d-iteration cap, keeping best-so-far parameters", emMaxIter)
	return nil
}

// normals materializes the per-state densities, retrying with a heavier
// diagonal if a covariance is numerically unusable.
func (m *Mixture) normals() ([]*distmv.Normal, error) {
	out := make([]*distmv.Normal, m.states)
	for k := 0; k < m.states; k++ {
		d, ok := distmv.NewNormal(m.means[k], m.covs[k], nil)
		if !ok {
			jitter := 1e-3 * traceOf(m.covs[k]) / float64(m.dim)
			if jitter <= 0 {
				jitter = varianceFloor
			}
			for i := 0; i < m.dim; i++ {
				m.covs[k].SetSym(i, i, m.covs[k].At(i, i)+jitter)
			}
			if d, ok = distmv.NewNormal(m.means[k], m.covs[k], nil); !ok {
				return nil, fmt.Errorf("state %d covariance is not positive definite", k)
			}
		}
		out[k] = d
	}
	return out, nil
}

func applyFloor(cov *mat.SymDense) {
	n := cov.SymmetricDim()
	for i := 0; i < n; i++ {
		cov.SetSym(i, i, cov.At(i, i)+varianceFloor)
	}
}

func traceOf(s *mat.SymDense) float64 {
	var t float64
	for i := 0; i < s.SymmetricDim(); i++ {
		t += s.At(i, i)
	}
	return t
}
