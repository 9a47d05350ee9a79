package bracelet

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wearable-data/hmpdetector/internal/monitoring"
)

// OfflineReason replays a recorded possibility file through the accurate
// policy and writes one line per accepted interval to "Rres_<possFile>" in
// the same directory. The stream holds one possibility per model per line, in
// config order; intervals still open at end-of-stream are flushed.
func OfflineReason(dir, possFile string, names []string) error {
	in, err := os.Open(filepath.Join(dir, possFile))
	if err != nil {
		return fmt.Errorf("open possibilities: %w", err)
	}
	defer in.Close()

	out, err := os.Create(filepath.Join(dir, "Rres_"+possFile))
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	tracker := NewTracker(names, 0, ReportWriter(w))
	monitoring.Logf("reasoning over %s", possFile)

	r := bufio.NewReader(in)
	poss := make([]float64, len(names))
	past := make([]float64, len(names))
	sample := 0
	for {
		copy(past, poss)
		if err := readVector(r, poss); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("sample %d: %w", sample, err)
		}
		tracker.AdvanceAccurate(sample, poss, past)
		sample++
	}
	tracker.Flush()

	if err := w.Flush(); err != nil {
		return err
	}
	return out.Close()
}

// readVector fills dst with the next len(dst) possibilities. A clean EOF
// before the first value ends the stream; EOF mid-vector is an error.
func readVector(r io.Reader, dst []float64) error {
	for i := range dst {
		if _, err := fmt.Fscan(r, &dst[i]); err != nil {
			if err == io.EOF && i == 0 {
				return io.EOF
			}
			return err
		}
	}
	return nil
}
