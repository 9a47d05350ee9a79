// Package classifier scores a sliding window of wrist acceleration samples
// against a library of motion-primitive models and publishes, per sample, how
// possible each motion currently is.
package classifier

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/wearable-data/hmpdetector/internal/config"
	"github.com/wearable-data/hmpdetector/internal/device"
	"github.com/wearable-data/hmpdetector/internal/model"
	"github.com/wearable-data/hmpdetector/internal/monitoring"
	"github.com/wearable-data/hmpdetector/internal/publish"
	"github.com/wearable-data/hmpdetector/internal/sigutil"
)

// Classifier owns the loaded model library and the scoring pipeline. Models
// are immutable after New; every scoring path only reads them.
type Classifier struct {
	DatasetDir    string
	ValidationDir string
	ResultsDir    string

	dev    device.Device
	pub    publish.Publisher
	models []*model.Dynamic

	windowSize  int
	medianWidth int
	lowpass     *sigutil.LowPass
}

// New parses Classifierconfig.txt in datasetDir, loads every dynamic model it
// names and publishes the static library information. Any config or model
// problem is fatal: the classifier refuses to build rather than score with a
// partial library.
func New(datasetDir string, dev device.Device, pub publish.Publisher, tun *config.Tuning) (*Classifier, error) {
	if tun == nil {
		tun = config.Empty()
	}
	specs, err := ParseConfigFile(filepath.Join(datasetDir, "Classifierconfig.txt"))
	if err != nil {
		return nil, err
	}

	c := &Classifier{
		DatasetDir:    datasetDir,
		ValidationDir: "Validation",
		ResultsDir:    "Results",
		dev:           dev,
		pub:           pub,
		medianWidth:   tun.GetMedianWinWidth(),
	}
	c.lowpass, err = sigutil.NewLowPass(tun.GetFilterOrder(), tun.GetSampleRateHz(), tun.GetCutoffHz(), tun.GetPassRippleDB())
	if err != nil {
		return nil, err
	}

	for _, s := range specs {
		monitoring.Logf("loading model %s", s.Name)
		m, err := model.LoadDynamic(datasetDir, s.Name, s.GravityWeight, s.BodyWeight, s.Threshold)
		if err != nil {
			return nil, err
		}
		c.models = append(c.models, m)
		if m.Length > c.windowSize {
			c.windowSize = m.Length
		}
	}
	monitoring.Logf("%d models loaded, window size %d", len(c.models), c.windowSize)

	if err := c.publishStatic(); err != nil {
		return nil, err
	}
	return c, nil
}

// WindowSize returns the sliding-window length, the maximum model length in
// the library.
func (c *Classifier) WindowSize() int { return c.windowSize }

// ModelNames returns the library names in config order.
func (c *Classifier) ModelNames() []string {
	names := make([]string, len(c.models))
	for i, m := range c.models {
		names[i] = m.Name
	}
	return names
}

// AnalyzeWindow median-filters the window and splits it into its gravity and
// body-acceleration components. Both results have the window's layout (rows =
// time, cols = axes) and sum to the cleaned window at every index.
func (c *Classifier) AnalyzeWindow(w *Window) (gravity, body *mat.Dense, err error) {
	// filter along time, so work on the transpose (rows = axes)
	var clean mat.Dense
	clean.CloneFrom(w.Data().T())
	if err := sigutil.MedianFilter(&clean, c.medianWidth); err != nil {
		return nil, nil, err
	}

	gravityT := sigutil.Chebyshev(c.lowpass, &clean)

	var bodyT mat.Dense
	bodyT.Sub(&clean, gravityT)

	gravity = mat.DenseCopyOf(gravityT.T())
	body = mat.DenseCopyOf(bodyT.T())
	return gravity, body, nil
}

// CompareOne computes the weighted Mahalanobis distance between the window
// components and one model. Time indices whose covariance cannot be used
// (singular or yielding NaN) contribute zero to the mean; a warning lands on
// the diagnostics key and the stream continues.
func (c *Classifier) CompareOne(gravity, body *mat.Dense, m *model.Dynamic) float64 {
	badSlices := 0
	distG := c.componentDistance(gravity, m.GravityMean, m.GravityCov, &badSlices)
	distB := c.componentDistance(body, m.BodyMean, m.BodyCov, &badSlices)
	if badSlices > 0 {
		monitoring.Logf("model %s: %d unusable covariance slices", m.Name, badSlices)
		if err := c.pub.Publish("diagnostics", fmt.Sprintf("%s: %d unusable covariance slices", m.Name, badSlices)); err != nil {
			monitoring.Logf("publish diagnostics: %v", err)
		}
	}
	return m.GravityWeight*distG + m.BodyWeight*distB
}

// componentDistance averages the per-index Mahalanobis distance between the
// first L window rows and the model's mean curve for one component.
func (c *Classifier) componentDistance(component, mean *mat.Dense, cov []*mat.Dense, badSlices *int) float64 {
	length := len(cov)
	var total float64
	var diff [model.NumAxes]float64
	for i := 0; i < length; i++ {
		for a := 0; a < model.NumAxes; a++ {
			// mean row 0 is the time index; axes start at row 1
			diff[a] = component.At(i, a) - mean.At(a+1, i)
		}
		var inv mat.Dense
		if err := inv.Inverse(cov[i]); err != nil {
			*badSlices++
			continue
		}
		var d float64
		for r := 0; r < model.NumAxes; r++ {
			for col := 0; col < model.NumAxes; col++ {
				d += diff[r] * inv.At(r, col) * diff[col]
			}
		}
		if math.IsNaN(d) {
			*badSlices++
			continue
		}
		total += d
	}
	return total / float64(length)
}

// CompareAll scores the window against every model and maps distances to
// possibilities: 1 at distance zero, 0 at or beyond the model threshold.
func (c *Classifier) CompareAll(gravity, body *mat.Dense) []float64 {
	poss := make([]float64, len(c.models))
	for i, m := range c.models {
		d := c.CompareOne(gravity, body, m)
		p := 1 - d/m.Threshold
		if p < 0 {
			p = 0
		}
		poss[i] = p
	}
	return poss
}

// publishStatic emits the library size and names once at startup.
func (c *Classifier) publishStatic() error {
	if err := c.pub.Publish("numModels", strconv.Itoa(len(c.models))); err != nil {
		return err
	}
	return c.pub.Publish("nameModels", strings.Join(c.ModelNames(), " "))
}

// PublishDynamic emits the per-sample recognition tuples: the possibility
// vector, the best-matching model (or NONE), the complement of the best
// possibility, and the margin between the two best models. Ties resolve to
// the earliest index.
func (c *Classifier) PublishDynamic(poss []float64) error {
	parts := make([]string, len(poss))
	for i, p := range poss {
		parts[i] = formatFloat(p)
	}
	if err := c.pub.Publish("possibilities", strings.Join(parts, " ")); err != nil {
		return err
	}

	best := 0
	for i := 1; i < len(poss); i++ {
		if poss[i] > poss[best] {
			best = i
		}
	}
	second := -1
	for i := range poss {
		if i == best {
			continue
		}
		if second == -1 || poss[i] > poss[second] {
			second = i
		}
	}
	if poss[best] == 0 {
		best = -1
	}
	if second != -1 && poss[second] == 0 {
		second = -1
	}

	highest := "NONE"
	if best != -1 {
		highest = c.models[best].Name
	}
	if err := c.pub.Publish("highest", highest); err != nil {
		return err
	}

	other := 1.0
	if best != -1 {
		other = 1 - poss[best]
	}
	if err := c.pub.Publish("other", formatFloat(other)); err != nil {
		return err
	}

	entropy := -1.0
	switch {
	case best == -1:
	case second == -1:
		entropy = poss[best]
	default:
		entropy = poss[best] - poss[second]
	}
	return c.pub.Publish("entropy", formatFloat(entropy))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
