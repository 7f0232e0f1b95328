package detector

// RingFloat is a fixed-capacity ring buffer for float64 values.
type RingFloat struct {
	data []float64
	pos  int
	full bool
}

// NewRingFloat creates a RingFloat with the given capacity (minimum 1).
func NewRingFloat(capacity int) *RingFloat {
	return &RingFloat{data: make([]float64, max(1, capacity))}
}

// Push appends v, overwriting the oldest value once full.
func (r *RingFloat) Push(v float64) {
	r.data[r.pos] = v
	r.pos++
	if r.pos == len(r.data) {
		r.pos = 0
		r.full = true
	}
}

// Len returns the number of stored values.
func (r *RingFloat) Len() int {
	if r.full {
		return len(r.data)
	}
	return r.pos
}

// Cap returns the buffer capacity.
func (r *RingFloat) Cap() int {
	return len(r.data)
}

// Latest returns the most recently pushed value, or 0 when empty.
func (r *RingFloat) Latest() float64 {
	if r.Len() == 0 {
		return 0
	}
	i := r.pos - 1
	if i < 0 {
		i = len(r.data) - 1
	}
	return r.data[i]
}

// Max returns the largest stored value, or 0 when empty.
func (r *RingFloat) Max() float64 {
	var m float64
	for i, v := range r.data[:r.Len()] {
		if i == 0 || v > m {
			m = v
		}
	}
	return m
}

// Slice returns the contents oldest first.
func (r *RingFloat) Slice() []float64 {
	out := make([]float64, r.Len())
	if r.full {
		n := copy(out, r.data[r.pos:])
		copy(out[n:], r.data[:r.pos])
	} else {
		copy(out, r.data[:r.pos])
	}
	return out
}
