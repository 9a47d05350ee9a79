package classifier

import "gonum.org/v1/gonum/mat"

// Window is the FIFO of the most recent samples scored against the model
// library. During warm-up it fills from the top; afterwards each push shifts
// the rows up and writes the new sample at the bottom, so row order is
// acquisition order.
type Window struct {
	data    *mat.Dense // size×3
	size    int
	written int
}

// NewWindow allocates an empty window of the given size.
func NewWindow(size int) *Window {
	return &Window{
		data: mat.NewDense(size, 3, nil),
		size: size,
	}
}

// Push appends a 1×3 sample, evicting the oldest row once the window is full.
func (w *Window) Push(sample *mat.Dense) {
	if w.written < w.size {
		w.data.SetRow(w.written, sample.RawRowView(0))
	} else {
		for i := 0; i < w.size-1; i++ {
			w.data.SetRow(i, w.data.RawRowView(i+1))
		}
		w.data.SetRow(w.size-1, sample.RawRowView(0))
	}
	w.written++
}

// Warm reports whether the window holds size samples.
func (w *Window) Warm() bool { return w.written >= w.size }

// Written returns the total number of samples pushed so far.
func (w *Window) Written() int { return w.written }

// Data exposes the backing size×3 matrix.
func (w *Window) Data() *mat.Dense { return w.data }
