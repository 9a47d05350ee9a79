package classifier

import (
	"fmt"
	"io"
	"os"
)

// ModelSpec is one row of Classifierconfig.txt: the model to load and its
// scoring parameters.
type ModelSpec struct {
	Name          string
	GravityWeight float64
	BodyWeight    float64
	Threshold     float64
}

// ParseConfig reads a classifier config: the model count followed by one
// "name gravityWeight bodyWeight threshold" row per model.
func ParseConfig(r io.Reader) ([]ModelSpec, error) {
	var n int
	if _, err := fmt.Fscan(r, &n); err != nil {
		return nil, fmt.Errorf("read model count: %w", err)
	}
	if n <= 0 {
		return nil, fmt.Errorf("model count must be positive, got %d", n)
	}
	specs := make([]ModelSpec, n)
	for i := range specs {
		s := &specs[i]
		if _, err := fmt.Fscan(r, &s.Name, &s.GravityWeight, &s.BodyWeight, &s.Threshold); err != nil {
			return nil, fmt.Errorf("read model row %d: %w", i+1, err)
		}
	}
	return specs, nil
}

// ParseConfigFile reads the classifier config at path.
func ParseConfigFile(path string) ([]ModelSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	specs, err := ParseConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return specs, nil
}
