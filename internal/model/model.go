// Package model holds the motion-primitive model types and their on-disk
// formats. A static model describes how a primitive is trained; a dynamic
// model is the trained artifact the classifier scores against: a time-indexed
// mean curve and covariance sequence for the gravity and body-acceleration
// components.
package model

import (
	"fmt"
	"math"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
)

// Axes scored per component. The time row of the mean curve is excluded from
// distance computation.
const NumAxes = 3

// Static describes one motion primitive at training time.
type Static struct {
	Name             string
	Trials           int
	GravityGaussians int
	BodyGaussians    int
}

// Dynamic is a trained motion-primitive model. Mean curves are 4×L matrices
// (row 0 is the time index, rows 1..3 the axes); covariance sequences hold L
// 3×3 slices. Dynamic values are immutable after load.
type Dynamic struct {
	Name          string
	GravityMean   *mat.Dense
	GravityCov    []*mat.Dense
	BodyMean      *mat.Dense
	BodyCov       []*mat.Dense
	GravityWeight float64
	BodyWeight    float64
	Threshold     float64
	Length        int
}

// LoadDynamic reads the four persisted component files for the named primitive
// from dir and validates them as a unit.
func LoadDynamic(dir, name string, gravityWeight, bodyWeight, threshold float64) (*Dynamic, error) {
	d := &Dynamic{
		Name:          name,
		GravityWeight: gravityWeight,
		BodyWeight:    bodyWeight,
		Threshold:     threshold,
	}
	var err error
	if d.GravityMean, err = LoadMu(filepath.Join(dir, name+"MuGravity.txt")); err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}
	if d.GravityCov, err = LoadSigma(filepath.Join(dir, name+"SigmaGravity.txt")); err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}
	if d.BodyMean, err = LoadMu(filepath.Join(dir, name+"MuBody.txt")); err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}
	if d.BodyCov, err = LoadSigma(filepath.Join(dir, name+"SigmaBody.txt")); err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}
	_, d.Length = d.GravityMean.Dims()
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}
	return d, nil
}

// Validate checks the structural invariants required by the scoring hot path:
// matching lengths between mean curves and covariance sequences, 3×3 symmetric
// covariance slices, and a positive distance threshold.
func (d *Dynamic) Validate() error {
	if d.Threshold <= 0 {
		return fmt.Errorf("threshold must be positive, got %g", d.Threshold)
	}
	if d.GravityWeight < 0 || d.BodyWeight < 0 {
		return fmt.Errorf("component weights must be non-negative, got %g/%g", d.GravityWeight, d.BodyWeight)
	}
	for _, c := range []struct {
		component string
		mean      *mat.Dense
		cov       []*mat.Dense
	}{
		{"gravity", d.GravityMean, d.GravityCov},
		{"body", d.BodyMean, d.BodyCov},
	} {
		rows, cols := c.mean.Dims()
		if rows != NumAxes+1 {
			return fmt.Errorf("%s mean has %d rows, want %d (time + axes)", c.component, rows, NumAxes+1)
		}
		if cols != d.Length {
			return fmt.Errorf("%s mean length %d != model length %d", c.component, cols, d.Length)
		}
		if len(c.cov) != d.Length {
			return fmt.Errorf("%s covariance has %d slices, mean has %d points", c.component, len(c.cov), d.Length)
		}
		for i, s := range c.cov {
			r, co := s.Dims()
			if r != NumAxes || co != NumAxes {
				return fmt.Errorf("%s covariance slice %d is %dx%d, want %dx%d", c.component, i, r, co, NumAxes, NumAxes)
			}
			if err := checkSymmetric(s); err != nil {
				return fmt.Errorf("%s covariance slice %d: %w", c.component, i, err)
			}
		}
	}
	return nil
}

func checkSymmetric(m *mat.Dense) error {
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		for j := i + 1; j < r; j++ {
			a, b := m.At(i, j), m.At(j, i)
			if math.Abs(a-b) > 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b))) {
				return fmt.Errorf("not symmetric at (%d,%d): %g vs %g", i, j, a, b)
			}
		}
	}
	return nil
}
