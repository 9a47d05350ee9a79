package classifier

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wearable-data/hmpdetector/internal/monitoring"
)

// SingleTest streams one recorded trial through the scoring pipeline and
// writes one line of space-separated possibilities per warm window. Samples
// that fail to decode are dropped without advancing the window.
func (c *Classifier) SingleTest(testFile, resultFile string) error {
	in, err := os.Open(testFile)
	if err != nil {
		return fmt.Errorf("open trial: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(resultFile), 0o755); err != nil {
		return err
	}
	out, err := os.Create(resultFile)
	if err != nil {
		return fmt.Errorf("create result file: %w", err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	monitoring.Logf("reading trial %s", testFile)
	window := NewWindow(c.windowSize)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		sample, err := c.dev.ExtractActual(sc.Text())
		if err != nil {
			monitoring.Logf("dropping sample: %v", err)
			continue
		}
		window.Push(sample)
		if !window.Warm() {
			continue
		}
		gravity, body, err := c.AnalyzeWindow(window)
		if err != nil {
			return err
		}
		poss := c.CompareAll(gravity, body)
		parts := make([]string, len(poss))
		for i, p := range poss {
			parts[i] = formatFloat(p)
		}
		fmt.Fprintln(w, strings.Join(parts, " "))
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read trial: %w", err)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return out.Close()
}

// ValidateModel runs SingleTest over n enumerated validation trials of one
// model, writing results next to the dataset's other result files.
func (c *Classifier) ValidateModel(modelName, dataset string, numTrials int) error {
	for i := 1; i <= numTrials; i++ {
		trial := fmt.Sprintf("%s_test (%d).txt", modelName, i)
		testFile := filepath.Join(c.ValidationDir, dataset, trial)
		resultFile := filepath.Join(c.ResultsDir, dataset, "res_"+trial)
		if err := c.SingleTest(testFile, resultFile); err != nil {
			return fmt.Errorf("trial %d: %w", i, err)
		}
	}
	return nil
}

// LongTest classifies one long recorded trial from the longTest validation
// folder.
func (c *Classifier) LongTest(testFile string) error {
	in := filepath.Join(c.ValidationDir, "longTest", testFile)
	out := filepath.Join(c.ResultsDir, "longTest", "res_"+testFile)
	return c.SingleTest(in, out)
}
