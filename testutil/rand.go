package testutil

import "sync"

// SeqRand replays scripted values. Once a script runs out it keeps returning
// the zero value, which picks the first candidate and always "hits" odds checks.
type SeqRand struct {
	mu     sync.Mutex
	Floats []float64
	Ints   []int
}

func (r *SeqRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Floats) == 0 {
		return 0
	}
	f := r.Floats[0]
	r.Floats = r.Floats[1:]
	return f
}

// Intn returns the next scripted int modulo n.
func (r *SeqRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n <= 0 || len(r.Ints) == 0 {
		return 0
	}
	i := r.Ints[0]
	r.Ints = r.Ints[1:]
	if i < 0 {
		i = -i
	}
	return i % n
}
