package classifier

import (
	"context"

	"github.com/wearable-data/hmpdetector/internal/bracelet"
	"github.com/wearable-data/hmpdetector/internal/monitoring"
	"github.com/wearable-data/hmpdetector/internal/serialmux"
)

// Online consumes raw lines from the serial mux until the context is
// cancelled, publishing the recognition tuples for every warm window. When a
// tracker is given, it observes each possibility vector after publication, so
// interval events for a sample always follow that sample's possibilities.
func (c *Classifier) Online(ctx context.Context, mux serialmux.MuxInterface, tracker *bracelet.Tracker) error {
	id, ch := mux.Subscribe()
	defer mux.Unsubscribe(id)

	window := NewWindow(c.windowSize)
	poss := make([]float64, len(c.models))
	past := make([]float64, len(c.models))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-ch:
			if !ok {
				return nil
			}
			sample, err := c.dev.ExtractActual(line)
			if err != nil {
				// transport errors drop the sample; counters stay put
				monitoring.Logf("dropping sample: %v", err)
				continue
			}
			window.Push(sample)
			if !window.Warm() {
				continue
			}

			copy(past, poss)
			gravity, body, err := c.AnalyzeWindow(window)
			if err != nil {
				return err
			}
			copy(poss, c.CompareAll(gravity, body))
			if err := c.PublishDynamic(poss); err != nil {
				monitoring.Logf("publish: %v", err)
			}

			if tracker != nil {
				tracker.AdvanceSimple(window.Written(), poss, past)
			}
		}
	}
}
