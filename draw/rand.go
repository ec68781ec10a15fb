package draw

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the randomness the economy depends on. Tests inject scripted sources.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a goroutine safe source seeded with seed.
func NewRand(seed int64) Rand {
	//nolint:gosec // G404: game randomness, not security sensitive
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

var (
	defaultOnce sync.Once
	defaultRand Rand
)

// Default returns a process wide source seeded from the clock.
func Default() Rand {
	defaultOnce.Do(func() {
		defaultRand = NewRand(time.Now().UnixNano())
	})
	return defaultRand
}
