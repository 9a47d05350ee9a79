// Package creator builds dynamic motion-primitive models from labeled
// training trials. For each motion it concatenates the recorded trials,
// splits them into gravity and body-acceleration components, fits one
// Gaussian mixture per component over (time, acceleration) samples and
// regresses each mixture against the time axis into the mean curve and
// covariance sequence the classifier scores with.
package creator

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/wearable-data/hmpdetector/internal/config"
	"github.com/wearable-data/hmpdetector/internal/device"
	"github.com/wearable-data/hmpdetector/internal/gmm"
	"github.com/wearable-data/hmpdetector/internal/model"
	"github.com/wearable-data/hmpdetector/internal/monitoring"
	"github.com/wearable-data/hmpdetector/internal/sigutil"
)

// Creator owns the training pipeline for one dataset folder.
type Creator struct {
	DatasetDir string

	dev         device.Device
	medianWidth int
	lowpass     *sigutil.LowPass
}

// New returns a Creator over the dataset folder.
func New(datasetDir string, dev device.Device, tun *config.Tuning) (*Creator, error) {
	if tun == nil {
		tun = config.Empty()
	}
	lowpass, err := sigutil.NewLowPass(tun.GetFilterOrder(), tun.GetSampleRateHz(), tun.GetCutoffHz(), tun.GetPassRippleDB())
	if err != nil {
		return nil, err
	}
	return &Creator{
		DatasetDir:  datasetDir,
		dev:         dev,
		medianWidth: tun.GetMedianWinWidth(),
		lowpass:     lowpass,
	}, nil
}

// readTrial decodes every line of one trial file into an n×3 sample matrix.
func (c *Creator) readTrial(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []float64
	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		sample, err := c.dev.ExtractActual(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, n+1, err)
		}
		rows = append(rows, sample.RawRowView(0)...)
		n++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%s: empty trial", path)
	}
	return mat.NewDense(n, 3, rows), nil
}

// splitComponents median-filters a trial and separates it into gravity and
// body acceleration, both in the trial's n×3 layout.
func (c *Creator) splitComponents(trial *mat.Dense) (gravity, body *mat.Dense, err error) {
	var clean mat.Dense
	clean.CloneFrom(trial.T())
	if err := sigutil.MedianFilter(&clean, c.medianWidth); err != nil {
		return nil, nil, err
	}

	gravityT := sigutil.Chebyshev(c.lowpass, &clean)
	var bodyT mat.Dense
	bodyT.Sub(&clean, gravityT)

	return mat.DenseCopyOf(gravityT.T()), mat.DenseCopyOf(bodyT.T()), nil
}

// GetFeatures reads all trials of one motion and returns the stacked gravity
// and body datasets, each row (time, ax, ay, az) with the time column
// restarting at 1 for every trial.
func (c *Creator) GetFeatures(name string, trials int) (totGravity, totBody *mat.Dense, err error) {
	for i := 1; i <= trials; i++ {
		path := filepath.Join(c.DatasetDir, name, fmt.Sprintf("mod (%d).txt", i))
		monitoring.Logf("reading modelling trial %s", path)
		trial, err := c.readTrial(path)
		if err != nil {
			return nil, nil, err
		}
		gravity, body, err := c.splitComponents(trial)
		if err != nil {
			return nil, nil, err
		}

		n, _ := trial.Dims()
		time := sigutil.Interval(1, n)
		var gravityRows, bodyRows mat.Dense
		gravityRows.Augment(time, gravity)
		bodyRows.Augment(time, body)

		if totGravity == nil {
			totGravity = mat.DenseCopyOf(&gravityRows)
			totBody = mat.DenseCopyOf(&bodyRows)
		} else {
			var sg, sb mat.Dense
			sg.Stack(totGravity, &gravityRows)
			sb.Stack(totBody, &bodyRows)
			totGravity = &sg
			totBody = &sb
		}
	}
	return totGravity, totBody, nil
}

// GenerateModel trains and persists both components of one motion primitive.
func (c *Creator) GenerateModel(motion model.Static) error {
	monitoring.Logf("creating the gravity and body acceleration datasets for %s", motion.Name)
	totGravity, totBody, err := c.GetFeatures(motion.Name, motion.Trials)
	if err != nil {
		return err
	}

	if err := c.fitComponent(motion.Name, "Gravity", "gravity", totGravity, motion.GravityGaussians, motion.Trials); err != nil {
		return err
	}
	return c.fitComponent(motion.Name, "Body", "body", totBody, motion.BodyGaussians, motion.Trials)
}

// fitComponent runs GMM+GMR over one component dataset and persists the
// mixture snapshot, the mean curve and the covariance sequence.
func (c *Creator) fitComponent(name, component, snapshot string, data *mat.Dense, gaussians, trials int) error {
	rows, _ := data.Dims()
	perTrial := rows / trials
	monitoring.Logf("%s %s: %d samples per modelling trial", name, snapshot, perTrial)

	mix, err := gmm.New(gaussians)
	if err != nil {
		return err
	}
	if err := mix.InitTimeSplit(data); err != nil {
		return fmt.Errorf("%s %s: %w", name, snapshot, err)
	}
	if err := mix.EM(data); err != nil {
		return fmt.Errorf("%s %s: %w", name, snapshot, err)
	}
	if err := mix.SaveParams(filepath.Join(c.DatasetDir, name+"GMM"+snapshot+".txt")); err != nil {
		return err
	}

	grid := sigutil.Interval(1, perTrial)
	mu, covs, err := mix.Regress(grid)
	if err != nil {
		return fmt.Errorf("%s %s: %w", name, snapshot, err)
	}
	if err := model.SaveMu(filepath.Join(c.DatasetDir, name+"Mu"+component+".txt"), mu); err != nil {
		return err
	}
	return model.SaveSigma(filepath.Join(c.DatasetDir, name+"Sigma"+component+".txt"), covs)
}

// GenerateAll trains every motion listed in HMPconfig.txt. A motion whose
// trials cannot be read or modeled is fatal for that motion only; the run
// continues with the next row.
func (c *Creator) GenerateAll() error {
	f, err := os.Open(filepath.Join(c.DatasetDir, "HMPconfig.txt"))
	if err != nil {
		return err
	}
	defer f.Close()

	var failed int
	for {
		var m model.Static
		_, err := fmt.Fscan(f, &m.Name, &m.Trials, &m.GravityGaussians, &m.BodyGaussians)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("HMPconfig.txt: %w", err)
		}
		if err := c.GenerateModel(m); err != nil {
			monitoring.Logf("model %s failed: %v", m.Name, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d models failed", failed)
	}
	return nil
}
