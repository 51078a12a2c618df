package telemetry

import "time"

// DefaultWindowSize is the number of samples kept per device.
const DefaultWindowSize = 50

// Point is one accepted reading, stamped with the time simdash received it.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Stats summarises the points currently in a window.
// All fields are zero when Count is zero.
type Stats struct {
	Last  float64 `json:"last"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	Count int     `json:"count"`
}

// Window is a fixed-capacity FIFO of points. When full, pushing evicts the
// oldest point. Not safe for concurrent use; Aggregator guards it.
type Window struct {
	buf   []Point
	start int
	n     int
}

// NewWindow creates an empty window. A capacity below 1 uses DefaultWindowSize.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = DefaultWindowSize
	}
	return &Window{buf: make([]Point, capacity)}
}

// Push appends a point, evicting the oldest one when the window is full.
// Reports whether a point was evicted.
func (w *Window) Push(p Point) bool {
	capacity := len(w.buf)
	if w.n < capacity {
		w.buf[(w.start+w.n)%capacity] = p
		w.n++
		return false
	}
	w.buf[w.start] = p
	w.start = (w.start + 1) % capacity
	return true
}

// Len returns the number of points held.
func (w *Window) Len() int { return w.n }

// Cap returns the window capacity.
func (w *Window) Cap() int { return len(w.buf) }

// Points returns a copy of the held points, oldest first.
func (w *Window) Points() []Point {
	out := make([]Point, w.n)
	for i := 0; i < w.n; i++ {
		out[i] = w.buf[(w.start+i)%len(w.buf)]
	}
	return out
}

// Stats rescans the window. The window is small and bounded, so a full
// pass per sample is fine.
func (w *Window) Stats() Stats {
	if w.n == 0 {
		return Stats{}
	}

	first := w.buf[w.start].Value
	st := Stats{
		Last:  w.buf[(w.start+w.n-1)%len(w.buf)].Value,
		Min:   first,
		Max:   first,
		Count: w.n,
	}

	sum := 0.0
	for i := 0; i < w.n; i++ {
		v := w.buf[(w.start+i)%len(w.buf)].Value
		sum += v
		if v < st.Min {
			st.Min = v
		}
		if v > st.Max {
			st.Max = v
		}
	}
	st.Avg = sum / float64(w.n)

	// Guard float rounding so min <= avg <= max always holds.
	if st.Avg < st.Min {
		st.Avg = st.Min
	}
	if st.Avg > st.Max {
		st.Avg = st.Max
	}
	return st
}
