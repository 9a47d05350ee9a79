// Package bracelet turns the per-sample possibility stream into intervals of
// motion activation. Each model gets its own state machine; two policies are
// offered. The simple policy opens on a high-possibility edge and closes as
// soon as the possibility drops back, trading precision for latency. The
// accurate policy accepts only bell-shaped, symmetric possibility curves and
// is used for offline reasoning.
//
// The tracker performs no I/O: it emits typed events to a callback, and the
// forwarders in this package adapt those events to a publisher or a report
// file.
package bracelet

import "math"

// EventKind enumerates the interval life-cycle notifications.
type EventKind int

const (
	// Opened fires when a possibility edge starts a new interval.
	Opened EventKind = iota
	// Updated fires while an open interval keeps tracking the stream.
	Updated
	// Closed fires when an interval ends; the event carries its final bounds.
	Closed
	// Discarded fires when the accurate policy rejects an interval.
	Discarded
)

// Event is one interval life-cycle notification.
type Event struct {
	Kind        EventKind
	Model       string
	Sample      int
	Possibility float64
	Start       [2]int
	End         [2]int
	Reason      string
}

// interval is the per-model tracker state.
type interval struct {
	open           bool
	falling        bool
	start          [2]int
	end            [2]int
	possibility    float64
	refPossibility float64
	risingTime     int
}

// unbounded marks the high end of an interval that has not closed yet.
const unbounded = math.MaxInt

func newInterval() interval {
	return interval{
		start: [2]int{-1, -1},
		end:   [2]int{-1, unbounded},
	}
}

// begin opens the interval at the current sample. The possibility at the
// preceding sample becomes the reference the accurate policy will demand the
// curve return to.
func (iv *interval) begin(p float64, sample int, past float64) {
	iv.open = true
	iv.falling = false
	iv.start = [2]int{sample, sample}
	iv.end = [2]int{sample, unbounded}
	iv.possibility = p
	iv.refPossibility = past
	iv.risingTime = 1
}

func (iv *interval) setEnd(sample int) {
	iv.end = [2]int{sample, sample}
}

// Tracker advances one state machine per model. It is not safe for concurrent
// use; the sample loop owns it.
type Tracker struct {
	names   []string
	states  []interval
	onEvent func(Event)

	// simple-policy opening threshold
	openThreshold float64
}

// NewTracker builds a tracker for the given model names. Events go to
// onEvent, which must not be nil.
func NewTracker(names []string, openThreshold float64, onEvent func(Event)) *Tracker {
	states := make([]interval, len(names))
	for i := range states {
		states[i] = newInterval()
	}
	return &Tracker{
		names:         names,
		states:        states,
		onEvent:       onEvent,
		openThreshold: openThreshold,
	}
}

func (t *Tracker) event(kind EventKind, i int, sample int, p float64, reason string) {
	st := &t.states[i]
	t.onEvent(Event{
		Kind:        kind,
		Model:       t.names[i],
		Sample:      sample,
		Possibility: p,
		Start:       st.start,
		End:         st.end,
		Reason:      reason,
	})
}

// AdvanceSimple runs the simple policy for every model at one sample.
func (t *Tracker) AdvanceSimple(sample int, poss, past []float64) {
	for i := range t.states {
		t.Simple(i, sample, poss[i], past[i])
	}
}

// Simple advances model i under the simple policy: open above the threshold,
// track the peak while it stays there, close on the first sample at or below
// it.
func (t *Tracker) Simple(i, sample int, p, past float64) {
	st := &t.states[i]
	switch {
	case p > t.openThreshold:
		if !st.open {
			st.begin(p, sample, past)
			t.event(Opened, i, sample, p, "")
		} else {
			st.end[0] = sample
			if p >= st.possibility {
				st.possibility = p
			}
			t.event(Updated, i, sample, p, "")
		}
	case st.open:
		st.setEnd(st.end[0])
		t.event(Closed, i, sample, st.possibility, "")
		st.open = false
	}
}

// AdvanceAccurate runs the accurate policy for every model at one sample.
func (t *Tracker) AdvanceAccurate(sample int, poss, past []float64) {
	for i := range t.states {
		t.Accurate(i, sample, poss[i], past[i])
	}
}

// Accurate advances model i under the bell-shape policy. While the
// possibility rises the interval tracks it; once it starts to fall the curve
// must keep falling smoothly back to the reference possibility, or the
// interval is rejected. The rising counter keeps decrementing through a long
// descent and may go negative while the interval stays open.
func (t *Tracker) Accurate(i, sample int, p, past float64) {
	st := &t.states[i]
	if p > 0 {
		switch {
		case !st.open:
			st.begin(p, sample, past)
			t.event(Opened, i, sample, p, "")
		case !st.falling && p >= st.possibility:
			st.end[0] = sample
			st.possibility = p
			st.risingTime++
		default:
			st.falling = true
			st.risingTime--
			st.end[0] = sample
			// a rebound during descent means the curve is not a bell
			if p > past {
				st.open = false
				t.event(Discarded, i, sample, p, "no bell shape")
			}
			// descending below the reference before the rise is paid back
			if st.risingTime == 0 && p < st.refPossibility {
				st.open = false
				t.event(Discarded, i, sample, p, "no symmetry")
			}
			if st.open && st.risingTime >= 0 && p == st.refPossibility {
				st.setEnd(st.end[0])
				t.event(Closed, i, sample, st.possibility, "")
				st.open = false
			}
		}
	} else if st.open && st.refPossibility == 0 {
		st.setEnd(st.end[0])
		t.event(Closed, i, sample, st.possibility, "")
		st.open = false
	}
}

// Flush closes any interval still open at end-of-stream whose reference
// possibility is zero, emitting its Closed event.
func (t *Tracker) Flush() {
	for i := range t.states {
		st := &t.states[i]
		if st.open && st.refPossibility == 0 {
			st.setEnd(st.end[0])
			t.event(Closed, i, -1, st.possibility, "")
			st.open = false
		}
	}
}
