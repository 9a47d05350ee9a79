// Package config loads the optional runtime tuning file. Dataset configs
// (HMPconfig.txt, Classifierconfig.txt) are fixed formats owned by the
// dataset folders; this file covers the knobs that belong to the detector
// itself.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Tuning represents the root configuration for detector parameters. Fields
// omitted from the JSON file retain their defaults, so partial configs are
// safe.
type Tuning struct {
	// Filtering params
	SampleRateHz   *float64 `json:"sample_rate_hz,omitempty"`
	CutoffHz       *float64 `json:"cutoff_hz,omitempty"`
	PassRippleDB   *float64 `json:"pass_ripple_db,omitempty"`
	FilterOrder    *int     `json:"filter_order,omitempty"`
	MedianWinWidth *int     `json:"median_window_width,omitempty"`

	// Interval tracker params
	SimpleOpenThreshold *float64 `json:"simple_open_threshold,omitempty"`
}

// Empty returns a Tuning with all fields unset.
func Empty() *Tuning {
	return &Tuning{}
}

// Load reads a Tuning from a JSON file.
func Load(path string) (*Tuning, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("tuning file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tuning JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configured values are usable.
func (c *Tuning) Validate() error {
	if c.SampleRateHz != nil && *c.SampleRateHz <= 0 {
		return fmt.Errorf("sample_rate_hz must be positive, got %g", *c.SampleRateHz)
	}
	if c.CutoffHz != nil {
		rate := c.GetSampleRateHz()
		if *c.CutoffHz <= 0 || *c.CutoffHz >= rate/2 {
			return fmt.Errorf("cutoff_hz %g outside (0, %g)", *c.CutoffHz, rate/2)
		}
	}
	if c.PassRippleDB != nil && *c.PassRippleDB <= 0 {
		return fmt.Errorf("pass_ripple_db must be positive, got %g", *c.PassRippleDB)
	}
	if c.FilterOrder != nil && *c.FilterOrder <= 0 {
		return fmt.Errorf("filter_order must be positive, got %d", *c.FilterOrder)
	}
	if c.MedianWinWidth != nil && (*c.MedianWinWidth <= 0 || *c.MedianWinWidth%2 == 0) {
		return fmt.Errorf("median_window_width must be positive and odd, got %d", *c.MedianWinWidth)
	}
	if c.SimpleOpenThreshold != nil && (*c.SimpleOpenThreshold <= 0 || *c.SimpleOpenThreshold >= 1) {
		return fmt.Errorf("simple_open_threshold must be in (0,1), got %g", *c.SimpleOpenThreshold)
	}
	return nil
}

// GetSampleRateHz returns the sample_rate_hz value or the default.
func (c *Tuning) GetSampleRateHz() float64 {
	if c.SampleRateHz == nil {
		return 32
	}
	return *c.SampleRateHz
}

// GetCutoffHz returns the cutoff_hz value or the default.
func (c *Tuning) GetCutoffHz() float64 {
	if c.CutoffHz == nil {
		return 0.25
	}
	return *c.CutoffHz
}

// GetPassRippleDB returns the pass_ripple_db value or the default.
func (c *Tuning) GetPassRippleDB() float64 {
	if c.PassRippleDB == nil {
		return 0.001
	}
	return *c.PassRippleDB
}

// GetFilterOrder returns the filter_order value or the default.
func (c *Tuning) GetFilterOrder() int {
	if c.FilterOrder == nil {
		return 2
	}
	return *c.FilterOrder
}

// GetMedianWinWidth returns the median_window_width value or the default.
func (c *Tuning) GetMedianWinWidth() int {
	if c.MedianWinWidth == nil {
		return 3
	}
	return *c.MedianWinWidth
}

// GetSimpleOpenThreshold returns the simple_open_threshold value or the default.
func (c *Tuning) GetSimpleOpenThreshold() float64 {
	if c.SimpleOpenThreshold == nil {
		return 0.8
	}
	return *c.SimpleOpenThreshold
}
